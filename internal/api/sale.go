package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/scanline/pos-terminal/internal/domain/sale"
)

// CreateSale submits the checkout payload. The idempotency key travels as a
// header so a resubmitted request after an ambiguous failure cannot create
// a second sale.
func (c *Client) CreateSale(ctx context.Context, req *sale.Request) (*sale.Record, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range req.Items {
		encodeLineItem(&e, item)
	}
	e.ArrEnd()
	e.FieldStart("total")
	e.Num(jx.Num(req.Total.String()))
	e.FieldStart("customerInfo")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(req.Customer.Name)
	e.FieldStart("email")
	e.Str(req.Customer.Email)
	e.FieldStart("phone")
	e.Str(req.Customer.Phone)
	e.ObjEnd()
	e.ObjEnd()

	data, err := c.doWithHeaders(ctx, http.MethodPost, "/sales", e.Bytes(), map[string]string{
		"Idempotency-Key": req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	rec, err := decodeSaleRecord(jx.DecodeBytes(data))
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListSales fetches the sales history, newest first as returned by the
// backend.
func (c *Client) ListSales(ctx context.Context) ([]sale.Record, error) {
	data, err := c.do(ctx, http.MethodGet, "/sales", nil, nil)
	if err != nil {
		return nil, err
	}

	var records []sale.Record
	d := jx.DecodeBytes(data)
	err = d.Arr(func(d *jx.Decoder) error {
		rec, err := decodeSaleRecord(d)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode sales")
	}
	return records, nil
}

func encodeLineItem(e *jx.Encoder, item sale.LineItem) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Str(item.ProductID)
	e.FieldStart("quantity")
	e.Int(item.Quantity)
	e.FieldStart("price")
	e.Num(jx.Num(item.Price.String()))
	e.ObjEnd()
}

func decodeSaleRecord(d *jx.Decoder) (sale.Record, error) {
	var rec sale.Record
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			rec.ID, err = d.Str()
		case "receiptNumber":
			rec.ReceiptNumber, err = d.Str()
		case "status":
			rec.Status, err = d.Str()
		case "total":
			rec.Total, err = decodeDecimal(d)
		case "createdAt":
			var raw string
			if raw, err = d.Str(); err == nil {
				rec.CreatedAt, err = time.Parse(time.RFC3339, raw)
			}
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				item, err := decodeLineItem(d)
				if err != nil {
					return err
				}
				rec.Items = append(rec.Items, item)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return sale.Record{}, errors.Wrap(err, "decode sale")
	}
	return rec, nil
}

func decodeLineItem(d *jx.Decoder) (sale.LineItem, error) {
	var item sale.LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			item.ProductID, err = d.Str()
		case "quantity":
			item.Quantity, err = d.Int()
		case "price":
			item.Price, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}
