package storage

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/scanline/pos-terminal/internal/domain/product"
)

// Prices are serialized as strings so decimal values survive the round trip
// without float conversion.

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("barcode")
	e.Str(p.Barcode)
	e.FieldStart("price")
	e.Str(p.Price.String())
	e.FieldStart("quantity")
	e.Int(p.Quantity)
	e.FieldStart("reorderPoint")
	e.Int(p.ReorderPoint)
	e.FieldStart("categoryId")
	e.Str(p.CategoryID)
	e.FieldStart("favorite")
	e.Bool(p.Favorite)
	e.FieldStart("imageUrl")
	e.Str(p.ImageURL)
	e.ObjEnd()
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "barcode":
			p.Barcode, err = d.Str()
		case "price":
			var raw string
			if raw, err = d.Str(); err == nil {
				p.Price, err = decimal.NewFromString(raw)
			}
		case "quantity":
			p.Quantity, err = d.Int()
		case "reorderPoint":
			p.ReorderPoint, err = d.Int()
		case "categoryId":
			p.CategoryID, err = d.Str()
		case "favorite":
			p.Favorite, err = d.Bool()
		case "imageUrl":
			p.ImageURL, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return product.Product{}, errors.Wrap(err, "decode product")
	}
	return p, nil
}
