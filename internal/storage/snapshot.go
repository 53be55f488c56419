package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/scanline/pos-terminal/internal/domain/product"
)

// snapshotFPR is the false positive rate for the barcode bloom filter. A
// false positive only costs one wasted cache scan, so it can stay loose.
const snapshotFPR = 0.001

// minFilterCapacity keeps the filter usable for catalogs smaller than the
// estimate math likes.
const minFilterCapacity = 1024

// Snapshot is the offline copy of the catalog written by catalog-sync: the
// full product list plus a bloom filter over every known barcode. The filter
// lets the local cache answer "this barcode did not exist at last sync"
// without scanning the product list.
type Snapshot struct {
	Products []product.Product
	Filter   *bloom.BloomFilter
	SyncedAt time.Time
}

// NewBarcodeFilter returns a bloom filter sized for n barcodes and fills it
// from the given products.
func NewBarcodeFilter(products []product.Product) *bloom.BloomFilter {
	capacity := uint(len(products))
	if capacity < minFilterCapacity {
		capacity = minFilterCapacity
	}
	filter := bloom.NewWithEstimates(capacity, snapshotFPR)
	for _, p := range products {
		if p.Barcode != "" {
			filter.AddString(p.Barcode)
		}
	}
	return filter
}

// WriteSnapshot writes a pgzip-compressed snapshot file. The write is
// atomic: temp file plus rename, same as the key-value store.
func WriteSnapshot(path string, snap Snapshot) error {
	var filterBuf bytes.Buffer
	if snap.Filter != nil {
		if _, err := snap.Filter.WriteTo(&filterBuf); err != nil {
			return errors.Wrap(err, "marshal filter")
		}
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("syncedAt")
	e.Str(snap.SyncedAt.UTC().Format(time.RFC3339))
	e.FieldStart("filter")
	e.Base64(filterBuf.Bytes())
	e.FieldStart("products")
	e.ArrStart()
	for _, p := range snap.Products {
		encodeProduct(&e, p)
	}
	e.ArrEnd()
	e.ObjEnd()

	// Same directory as the destination: rename must not cross filesystems.
	tmp, err := os.CreateTemp(filepath.Dir(path), "snapshot-*.gz")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	zw := pgzip.NewWriter(tmp)
	if _, err := zw.Write(e.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "compress snapshot")
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "flush snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "commit snapshot")
	}
	return nil
}

// ReadSnapshot loads a snapshot file written by WriteSnapshot. A missing
// file returns os.ErrNotExist so callers can start with a cold cache.
func ReadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	zr, err := pgzip.NewReader(f)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "read snapshot header")
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "decompress snapshot")
	}

	var snap Snapshot
	d := jx.DecodeBytes(raw)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "syncedAt":
			raw, err := d.Str()
			if err != nil {
				return err
			}
			snap.SyncedAt, err = time.Parse(time.RFC3339, raw)
			return err
		case "filter":
			data, err := d.Base64()
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return nil
			}
			filter := &bloom.BloomFilter{}
			if _, err := filter.ReadFrom(bytes.NewReader(data)); err != nil {
				return errors.Wrap(err, "unmarshal filter")
			}
			snap.Filter = filter
			return nil
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return err
				}
				snap.Products = append(snap.Products, p)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "decode snapshot")
	}
	return snap, nil
}
