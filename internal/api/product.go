package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/scanline/pos-terminal/internal/domain/product"
)

var _ product.Catalog = (*Client)(nil)

// List fetches the full product catalog.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	data, err := c.do(ctx, http.MethodGet, "/products", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeProducts(data)
}

// ListPage fetches one page of the catalog. The catalog-sync tool uses it
// to walk a large catalog without holding the whole response in one body.
func (c *Client) ListPage(ctx context.Context, limit, offset int) ([]product.Product, error) {
	q := url.Values{
		"limit":  []string{strconv.Itoa(limit)},
		"offset": []string{strconv.Itoa(offset)},
	}
	data, err := c.do(ctx, http.MethodGet, "/products", q, nil)
	if err != nil {
		return nil, err
	}
	return decodeProducts(data)
}

// GetByBarcode fetches a single product by its barcode. A 404 maps to
// product.ErrNotFound: negative lookup is an expected outcome of the scan
// flow, not a failure.
func (c *Client) GetByBarcode(ctx context.Context, code string) (*product.Product, error) {
	if code == "" {
		return nil, product.ErrNotFound
	}

	data, err := c.do(ctx, http.MethodGet, "/products/barcode/"+url.PathEscape(code), nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, product.ErrNotFound
		}
		return nil, err
	}

	p, err := decodeProductBytes(data)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Search fetches products matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]product.Product, error) {
	q := url.Values{"q": []string{query}}
	data, err := c.do(ctx, http.MethodGet, "/products/search", q, nil)
	if err != nil {
		return nil, err
	}
	return decodeProducts(data)
}

func decodeProducts(data []byte) ([]product.Product, error) {
	var products []product.Product
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func decodeProductBytes(data []byte) (product.Product, error) {
	return decodeProduct(jx.DecodeBytes(data))
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
			p.Price, err = decodeDecimal(d)
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

// decodeDecimal accepts both JSON numbers and string-wrapped numbers, since
// the backend is not under this repository's control.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.Null {
		if err := d.Null(); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, nil
	}
	num, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	raw := strings.Trim(num.String(), `"`)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
