package readmodel

import (
	"time"

	"commerce-server/internal/domain/product"

	"github.com/shopspring/decimal"
)

type ProductRM struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

type PopularProductRM struct {
	Rank         int       `json:"rank"`
	Product      ProductRM `json:"product"`
	SoldQuantity int       `json:"sold_quantity"`
}

type RankingRM struct {
	Period   string             `json:"period"`
	Bucket   string             `json:"bucket"`
	Products []PopularProductRM `json:"products"`
}

func FromProduct(p *product.Product) ProductRM {
	return ProductRM{
		ID:        p.ID(),
		Name:      p.Name(),
		Price:     p.Price(),
		Stock:     p.Stock(),
		CreatedAt: p.CreatedAt(),
	}
}

func FromSales(sales []product.Sales) []PopularProductRM {
	out := make([]PopularProductRM, len(sales))
	for i, s := range sales {
		out[i] = PopularProductRM{Rank: i + 1, Product: FromProduct(s.Product), SoldQuantity: s.SoldQuantity}
	}
	return out
}
