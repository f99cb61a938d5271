package request

// ListRequest binds paging query parameters.
type ListRequest struct {
	Limit  int `form:"limit" binding:"omitempty,gte=0"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

type PopularRequest struct {
	Days  int `form:"days" binding:"omitempty,gte=0"`
	Limit int `form:"limit" binding:"omitempty,gte=0"`
}

type RankingRequest struct {
	Date  string `form:"date"`
	Limit int    `form:"limit" binding:"omitempty,gte=0"`
}
