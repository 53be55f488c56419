package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/scanline/pos-terminal/internal/domain/business"
)

// GetBusiness fetches the merchant profile used to brand receipts.
func (c *Client) GetBusiness(ctx context.Context) (*business.Profile, error) {
	data, err := c.do(ctx, http.MethodGet, "/business", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeBusiness(data)
}

// UpdateBusiness patches the merchant profile. Only the fields the operator
// edited need to be set; the backend merges.
func (c *Client) UpdateBusiness(ctx context.Context, profile business.Profile) (*business.Profile, error) {
	data, err := c.do(ctx, http.MethodPatch, "/business", nil, encodeBusiness(profile))
	if err != nil {
		return nil, err
	}
	return decodeBusiness(data)
}

func encodeBusiness(p business.Profile) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("address")
	e.Str(p.Address)
	e.FieldStart("phone")
	e.Str(p.Phone)
	e.FieldStart("email")
	e.Str(p.Email)
	e.FieldStart("taxId")
	e.Str(p.TaxID)
	e.FieldStart("currency")
	e.Str(p.Currency)
	e.FieldStart("logoUrl")
	e.Str(p.LogoURL)
	e.ObjEnd()
	return e.Bytes()
}

func decodeBusiness(data []byte) (*business.Profile, error) {
	var p business.Profile
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "address":
			p.Address, err = d.Str()
		case "phone":
			p.Phone, err = d.Str()
		case "email":
			p.Email, err = d.Str()
		case "taxId":
			p.TaxID, err = d.Str()
		case "currency":
			p.Currency, err = d.Str()
		case "logoUrl":
			p.LogoURL, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode business profile")
	}
	return &p, nil
}
