package response

import (
	"time"

	"commerce-server/internal/usecase/readmodel"
)

type ProductResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

type PopularProductResponse struct {
	Rank         int             `json:"rank"`
	Product      ProductResponse `json:"product"`
	SoldQuantity int             `json:"soldQuantity"`
}

type RankingResponse struct {
	Period   string                   `json:"period"`
	Bucket   string                   `json:"bucket"`
	Products []PopularProductResponse `json:"products"`
}

func FromProductRM(rm *readmodel.ProductRM) *ProductResponse {
	res := mustCopy[ProductResponse](rm)
	return &res
}

func FromProductRMs(rms []readmodel.ProductRM) []ProductResponse {
	return mustCopySlice[ProductResponse](rms)
}

func FromPopularProductRMs(rms []readmodel.PopularProductRM) []PopularProductResponse {
	return mustCopySlice[PopularProductResponse](rms)
}

func FromRankingRM(rm *readmodel.RankingRM) *RankingResponse {
	res := RankingResponse{
		Period:   rm.Period,
		Bucket:   rm.Bucket,
		Products: FromPopularProductRMs(rm.Products),
	}
	return &res
}
