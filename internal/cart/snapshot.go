package cart

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

// LineItem is one row of the mirrored cart. Key is server-assigned except for
// optimistically added items, which carry a locally generated key until the
// next reconciling response replaces the snapshot.
type LineItem struct {
	Key          string
	ID           int64
	VariantID    int64
	ProductTitle string
	VariantTitle string
	Quantity     int
	UnitPrice    int64
	LineTotal    int64
	ImageURL     string
}

// UpdateKey is the identifier the platform's update endpoint keys this row's
// quantity targets by: the variant id when present, otherwise the line id.
func (li LineItem) UpdateKey() string {
	if li.VariantID != 0 {
		return strconv.FormatInt(li.VariantID, 10)
	}
	return strconv.FormatInt(li.ID, 10)
}

// Snapshot is the client-held cart state. It is replaced wholesale on every
// successful sync; item order is the server's and is never re-sorted.
type Snapshot struct {
	Items      []LineItem
	ItemCount  int
	TotalPrice int64
}

// PendingUpdate maps variant-or-line identifiers to absolute target
// quantities. A target of 0 removes the item.
type PendingUpdate map[string]int

// recomputeTotals derives item count and total price from the items. These
// fields are never mutated independently.
func (s *Snapshot) recomputeTotals() {
	count := 0
	var total int64
	for _, it := range s.Items {
		count += it.Quantity
		total += it.LineTotal
	}
	s.ItemCount = count
	s.TotalPrice = total
}

// Clone returns a deep copy so callers can read without holding the mirror's
// lock.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}

// Empty reports whether the snapshot holds no items.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

func snapshotFromCart(cart *platform.Cart, rowImageWidth int) Snapshot {
	snap := Snapshot{Items: make([]LineItem, 0, len(cart.Items))}
	for _, item := range cart.Items {
		snap.Items = append(snap.Items, LineItem{
			Key:          item.Key,
			ID:           item.ID,
			VariantID:    item.VariantID,
			ProductTitle: item.ProductTitle,
			VariantTitle: item.VariantTitle,
			Quantity:     item.Quantity,
			UnitPrice:    item.Price,
			LineTotal:    item.LinePrice(),
			ImageURL:     item.DisplayImageURL(rowImageWidth),
		})
	}
	snap.recomputeTotals()
	return snap
}

func newLocalKey() string {
	return "cart-item-" + uuid.NewString()
}
