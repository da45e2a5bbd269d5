package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrBadDocument = errors.New("catalog document is neither an object with products nor an array")

type Product struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	Images          []string        `json:"images"`
	Thumbnail       string          `json:"thumbnailImage,omitempty"`
	Colors          []string        `json:"colors,omitempty"`
	Sizes           []string        `json:"sizes,omitempty"`
	Rating          float64         `json:"rating,omitempty"`
	RatingCount     int             `json:"ratingCount,omitempty"`
}

// Image is the picture a cart line keeps for this product.
func (p Product) Image() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// DiscountPercent is the whole-number markdown from Price to DiscountedPrice.
func (p Product) DiscountPercent() int64 {
	if p.Price.IsZero() {
		return 0
	}
	return p.Price.Sub(p.DiscountedPrice).
		Div(p.Price).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

func marshalProducts(products []Product) ([]byte, error) {
	return json.Marshal(struct {
		Products []Product `json:"products"`
	}{Products: products})
}

// decodeProducts accepts {"products": [...]} or a bare array.
func decodeProducts(data []byte) ([]Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrBadDocument
	}

	switch data[0] {
	case '[':
		var out []Product
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode product array: %w", err)
		}
		return out, nil

	case '{':
		var doc struct {
			Products []Product `json:"products"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode product document: %w", err)
		}
		return doc.Products, nil

	default:
		return nil, ErrBadDocument
	}
}
