package storage

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/scanline/pos-terminal/internal/domain/cart"
)

// cartKey is the fixed storage key the serialized cart lives under.
const cartKey = "cart"

var _ cart.Persister = (*CartPersister)(nil)

// CartPersister implements cart.Persister on top of a FileStore, mirroring
// the cart to disk after every mutation so it survives restarts.
type CartPersister struct {
	store *FileStore
}

// NewCartPersister returns a persister writing to the given store.
func NewCartPersister(store *FileStore) *CartPersister {
	return &CartPersister{store: store}
}

// Save serializes the full cart list and replaces the stored copy.
func (c *CartPersister) Save(ctx context.Context, items []cart.Item) error {
	var e jx.Encoder
	e.ArrStart()
	for _, item := range items {
		e.ObjStart()
		e.FieldStart("product")
		encodeProduct(&e, item.Product)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()

	if err := c.store.Set(ctx, cartKey, e.Bytes()); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// Load restores the stored cart. A missing key yields an empty cart.
func (c *CartPersister) Load(ctx context.Context) ([]cart.Item, error) {
	data, err := c.store.Get(ctx, cartKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load cart")
	}

	var items []cart.Item
	d := jx.DecodeBytes(data)
	err = d.Arr(func(d *jx.Decoder) error {
		var item cart.Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "product":
				item.Product, err = decodeProduct(d)
			case "quantity":
				item.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return items, nil
}

// Delete removes the stored cart.
func (c *CartPersister) Delete(ctx context.Context) error {
	return c.store.Delete(ctx, cartKey)
}
