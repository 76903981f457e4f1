// Package cartview renders a cart snapshot into the drawer's line-item list.
// Rendering is total: the whole fragment is rebuilt from the snapshot on every
// call, never patched incrementally. Cart sizes are small enough that
// correctness wins over DOM-diffing cleverness.
package cartview

import (
	"bytes"
	"html/template"

	"github.com/FarhanRj389/storefront-widgets/internal/cart"
	pkgerrors "github.com/FarhanRj389/storefront-widgets/pkg/errors"
	"github.com/FarhanRj389/storefront-widgets/pkg/money"
)

const drawerTemplate = `<side-cart class="side-cart{{if not .Loading}} loaded{{end}}">
{{- if .Notice}}
  <div class="cart-notification">{{.Notice}}</div>
{{- end}}
  <div id="cart-items">
{{- if .Empty}}
    <p class="empty-cart-message">Your cart is empty</p>
{{- else}}
{{- range .Items}}
    <side-cart-item variant-id="{{.UpdateKey}}" item-count="{{.Quantity}}" item-key="{{.Key}}">
      <img class="cart-item-image" src="{{.ImageURL}}" alt="{{.ProductTitle}}">
      <div class="cart-item-info">
        <p class="cart-item-title">{{.ProductTitle}}</p>
        <p class="cart-item-variant">{{.VariantTitle}}</p>
        <span class="cart-item-price">{{.PriceText}}</span>
      </div>
      <div class="cart-item-quantity">
        <a href="#" data-action="decrease">-</a>
        <span>{{.Quantity}}</span>
        <a href="#" data-action="increase">+</a>
      </div>
      <a href="#" class="cart-item-delete">Remove</a>
    </side-cart-item>
{{- end}}
{{- end}}
  </div>
  <div id="cart-total">
    <span>Total:</span>
    <span>{{.TotalText}}</span>
  </div>
{{- if not .Empty}}
  <div class="cart-footer">
    <a href="/checkout" class="checkout-button">Checkout</a>
  </div>
{{- end}}
</side-cart>
`

// Row is one rendered line item.
type Row struct {
	Key          string
	UpdateKey    string
	Quantity     int
	ProductTitle string
	VariantTitle string
	ImageURL     string
	PriceText    string
}

type drawerData struct {
	Items     []Row
	Empty     bool
	Loading   bool
	Notice    string
	TotalText string
}

// Options tweaks one render without touching the snapshot.
type Options struct {
	// Notice is a transient message shown above the items, e.g. after an
	// optimistic add.
	Notice string
}

// View renders snapshots into drawer fragments.
type View struct {
	tmpl   *template.Template
	format money.Formatter
}

// NewView builds a view around the given currency formatter. A nil formatter
// falls back to raw minor units.
func NewView(format money.Formatter) *View {
	return &View{
		tmpl:   template.Must(template.New("side-cart").Parse(drawerTemplate)),
		format: format,
	}
}

// Render produces the full drawer fragment for a snapshot. It is idempotent:
// the same snapshot and options always yield byte-identical output, with no
// leftover rows from previous renders.
func (v *View) Render(snap cart.Snapshot, state cart.State, opts Options) ([]byte, error) {
	data := drawerData{
		Items:     make([]Row, 0, len(snap.Items)),
		Empty:     snap.Empty(),
		Loading:   state.Loading,
		Notice:    opts.Notice,
		TotalText: money.Format(v.format, snap.TotalPrice),
	}
	for _, item := range snap.Items {
		data.Items = append(data.Items, Row{
			Key:          item.Key,
			UpdateKey:    item.UpdateKey(),
			Quantity:     item.Quantity,
			ProductTitle: item.ProductTitle,
			VariantTitle: item.VariantTitle,
			ImageURL:     item.ImageURL,
			PriceText:    money.Format(v.format, item.LineTotal),
		})
	}

	var buf bytes.Buffer
	if err := v.tmpl.Execute(&buf, data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render cart drawer")
	}
	return buf.Bytes(), nil
}

// RenderError produces the fragment shown when the first fetch fails and no
// snapshot exists yet: an error notice rather than a false "empty cart".
func (v *View) RenderError() []byte {
	return []byte(`<side-cart class="side-cart loaded">
  <div id="cart-items">
    <p class="cart-error-message">Unable to load your cart. Please try again.</p>
  </div>
</side-cart>
`)
}
