// Package selector translates product option selections into a variant and
// drives the add-to-cart flow. It never reaches into sibling widgets: the cart
// controller and drawer are injected explicitly.
package selector

import (
	"context"
	"fmt"
	"sync"

	"github.com/FarhanRj389/storefront-widgets/internal/cart"
	"github.com/FarhanRj389/storefront-widgets/internal/catalog"
	"github.com/FarhanRj389/storefront-widgets/internal/drawer"
	pkgerrors "github.com/FarhanRj389/storefront-widgets/pkg/errors"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
	"github.com/FarhanRj389/storefront-widgets/pkg/money"
	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

const (
	labelAddToCart = "Add to cart"
	labelSoldOut   = "SOLD OUT"
	labelAdding    = "Adding..."

	addedNotice = "Item added to cart!"
)

type addAPI interface {
	AddItem(ctx context.Context, req platform.AddRequest) (*platform.LineItem, error)
}

// Params wires a selector's collaborators.
type Params struct {
	Catalog          *catalog.Catalog
	Client           addAPI
	Cart             cart.Controller
	Drawer           *drawer.Shell
	Formatter        money.Formatter
	Logger           *logger.Logger
	ProductHandle    string
	InitialVariantID int64
	ImageWidth       int
}

// Selector holds the currently selected variant for one product widget.
type Selector struct {
	catalog *catalog.Catalog
	client  addAPI
	cart    cart.Controller
	drawer  *drawer.Shell
	format  money.Formatter
	logg    *logger.Logger

	handle string
	imageW int

	mu         sync.Mutex
	current    *catalog.Variant
	submitting bool
}

// NewSelector builds a selector. The initial variant is resolved from the
// widget's starting attribute and stays unset when it does not resolve.
func NewSelector(p Params) (*Selector, error) {
	if p.Catalog == nil {
		return nil, fmt.Errorf("variant catalog required")
	}
	if p.Client == nil {
		return nil, fmt.Errorf("platform client required")
	}
	if p.Cart == nil {
		return nil, fmt.Errorf("cart controller required")
	}
	if p.Drawer == nil {
		return nil, fmt.Errorf("drawer required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.ImageWidth <= 0 {
		p.ImageWidth = 400
	}

	s := &Selector{
		catalog: p.Catalog,
		client:  p.Client,
		cart:    p.Cart,
		drawer:  p.Drawer,
		format:  p.Formatter,
		logg:    p.Logger,
		handle:  p.ProductHandle,
		imageW:  p.ImageWidth,
	}
	if v, ok := p.Catalog.Lookup(p.InitialVariantID); ok {
		s.current = &v
	}
	return s, nil
}

// ViewState is what one selection renders back to the page: the navigable
// address, the formatted price, the sized image, and the submit button state.
type ViewState struct {
	VariantID      int64  `json:"variant_id,omitempty"`
	HistoryURL     string `json:"history_url,omitempty"`
	PriceText      string `json:"price_text,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	Available      bool   `json:"available"`
	ButtonLabel    string `json:"button_label"`
	ButtonDisabled bool   `json:"button_disabled"`
}

// SelectVariant resolves a variant id from a checked option input. A miss is
// the known inconsistent-option-combination edge case: the previous state is
// left unchanged and reported back, not silently replaced with a default.
func (s *Selector) SelectVariant(ctx context.Context, variantID int64) (ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.catalog.Lookup(variantID)
	if !ok {
		s.logg.Warn(s.logg.WithField(ctx, "variant_id", variantID), "no variant for selected options, keeping previous state")
		return s.viewStateLocked(), false
	}

	s.current = &v
	return s.viewStateLocked(), true
}

// ViewState reports the current selection's rendered state.
func (s *Selector) ViewState() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewStateLocked()
}

func (s *Selector) viewStateLocked() ViewState {
	state := ViewState{
		Available:   true,
		ButtonLabel: labelAddToCart,
	}
	if s.current != nil {
		v := s.current
		state.VariantID = v.ID
		state.HistoryURL = fmt.Sprintf("/products/%s?variant=%d", s.handle, v.ID)
		state.PriceText = money.Format(s.format, v.Price)
		if v.FeaturedImage != nil && v.FeaturedImage.Src != "" {
			state.ImageURL = fmt.Sprintf("%s&width=%d", v.FeaturedImage.Src, s.imageW)
		}
		state.Available = v.Available
		if !v.Available {
			state.ButtonLabel = labelSoldOut
			state.ButtonDisabled = true
		}
	}
	if s.submitting {
		state.ButtonLabel = labelAdding
		state.ButtonDisabled = true
	}
	return state
}

// SubmitInput is the serialized add-to-cart form.
type SubmitInput struct {
	VariantID  int64
	Quantity   int
	Properties map[string]string
}

// SubmitResult carries the success notice and the restored button state.
type SubmitResult struct {
	Notice    string
	ViewState ViewState
}

// Submit performs the add-to-cart round trip. On success the response item is
// folded into the cart optimistically and the drawer opens. On failure the
// cart is untouched and the error surfaces as a blocking notice. The submit
// button state is restored unconditionally on every path.
func (s *Selector) Submit(ctx context.Context, input SubmitInput) (result SubmitResult, err error) {
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return SubmitResult{ViewState: s.ViewState()}, pkgerrors.New(pkgerrors.CodeStateConflict, "add to cart already in progress")
	}
	s.submitting = true
	s.mu.Unlock()

	// Restores the button state on every path out of this method, errors and
	// panics included.
	defer func() {
		s.mu.Lock()
		s.submitting = false
		result.ViewState = s.viewStateLocked()
		s.mu.Unlock()
	}()

	ctx = s.logg.WithFields(ctx, map[string]any{"op": "add_to_cart", "variant_id": input.VariantID})

	item, err := s.client.AddItem(ctx, platform.AddRequest{
		VariantID:  input.VariantID,
		Quantity:   input.Quantity,
		Properties: input.Properties,
	})
	if err != nil {
		s.logg.Error(ctx, "add to cart failed", err)
		return SubmitResult{}, err
	}

	s.cart.OptimisticAdd(ctx, *item)
	s.drawer.Open()
	s.logg.Info(ctx, "item added to cart")

	return SubmitResult{Notice: addedNotice}, nil
}
