package response

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// Money is rendered as a fixed two-decimal string.
var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: decimal.Decimal{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				d, ok := src.(decimal.Decimal)
				if !ok {
					return nil, fmt.Errorf("expected decimal.Decimal, got %T", src)
				}
				return d.StringFixed(2), nil
			},
		},
	},
}

// mustCopy panics only when a DTO and its read model disagree on field kinds.
func mustCopy[T any](src any) T {
	var dst T
	if err := copier.CopyWithOption(&dst, src, copyOption); err != nil {
		panic(fmt.Sprintf("response: copy %T: %v", src, err))
	}
	return dst
}

func mustCopySlice[T any, S any](src []S) []T {
	out := make([]T, len(src))
	for i := range src {
		out[i] = mustCopy[T](&src[i])
	}
	return out
}
