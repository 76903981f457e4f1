// Package catalog holds the per-product variant lookup. The blob is embedded
// alongside the product widget at render time and read exactly once; a missing
// or malformed blob degrades to an empty catalog so the selector can fall back
// to "no variant switching" instead of failing hard.
package catalog

import (
	"context"
	"encoding/json"

	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

// Variant is one purchasable configuration of the product. Up to three option
// slots; price is in minor currency units.
type Variant struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Option1       *string         `json:"option1"`
	Option2       *string         `json:"option2"`
	Option3       *string         `json:"option3"`
	Price         int64           `json:"price"`
	Available     bool            `json:"available"`
	FeaturedImage *platform.Image `json:"featured_image"`
}

// Catalog is a read-only variant lookup keyed by variant id.
type Catalog struct {
	byID    map[int64]Variant
	ordered []Variant
}

// New parses the embedded variant blob. Construction never fails: a nil or
// malformed blob is logged and yields an empty catalog.
func New(ctx context.Context, blob []byte, logg *logger.Logger) *Catalog {
	c := &Catalog{byID: map[int64]Variant{}}
	if len(blob) == 0 {
		if logg != nil {
			logg.Warn(ctx, "variant blob absent, variant switching disabled")
		}
		return c
	}

	var variants []Variant
	if err := json.Unmarshal(blob, &variants); err != nil {
		if logg != nil {
			logg.Error(ctx, "variant blob malformed, variant switching disabled", err)
		}
		return c
	}

	c.ordered = variants
	for _, v := range variants {
		c.byID[v.ID] = v
	}
	return c
}

// Lookup resolves a variant id.
func (c *Catalog) Lookup(id int64) (Variant, bool) {
	v, ok := c.byID[id]
	return v, ok
}

// Variants returns the variants in blob order.
func (c *Catalog) Variants() []Variant {
	return c.ordered
}

// Len reports the number of variants loaded.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
