package queries

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a normalized limit/offset window. Normalizing before building cache
// keys keeps equivalent requests on the same key.
type Page struct {
	Limit  int
	Offset int
}

func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
