// Package platform is the HTTP client for the hosted commerce platform's cart
// endpoints. It owns auth-free JSON plumbing and error mapping; cart state
// policy lives with the caller.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/FarhanRj389/storefront-widgets/pkg/config"
	pkgerrors "github.com/FarhanRj389/storefront-widgets/pkg/errors"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
)

const (
	cartPath   = "/cart.js"
	updatePath = "/cart/update.js"
	addPath    = "/cart/add.js"
)

var (
	errBaseURLRequired = errors.New("platform base url is required")
	errLoggerRequired  = errors.New("platform logger is required")
)

// CartAPI is the capability surface the widget engine consumes. The concrete
// Client satisfies it; tests substitute stubs.
type CartAPI interface {
	FetchCart(ctx context.Context) (*Cart, error)
	UpdateCart(ctx context.Context, updates map[string]int) (*Cart, error)
	AddItem(ctx context.Context, req AddRequest) (*LineItem, error)
}

// AddRequest is the form-encoded payload for the add endpoint.
type AddRequest struct {
	VariantID  int64
	Quantity   int
	Properties map[string]string
}

// Client talks to the platform cart resource with centralized logging and
// error mapping. No retries: every failure is terminal for that request.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient validates the platform config and builds the cart client.
func NewClient(ctx context.Context, cfg config.PlatformConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logg,
	}

	logg.Info(logg.WithField(ctx, "base_url", base), "platform client initialized")
	return c, nil
}

// FetchCart reads the full cart resource.
func (c *Client) FetchCart(ctx context.Context) (*Cart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+cartPath, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart request")
	}

	var cart Cart
	if err := c.do(req, "fetch_cart", &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCart posts a batch of absolute quantity targets keyed by variant or
// line id and returns the resulting cart. A target of 0 removes the item.
func (c *Client) UpdateCart(ctx context.Context, updates map[string]int) (*Cart, error) {
	body, err := json.Marshal(map[string]map[string]int{"updates": updates})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart updates")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+updatePath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build update request")
	}
	req.Header.Set("Content-Type", "application/json")

	var cart Cart
	if err := c.do(req, "update_cart", &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem posts one variant to the add endpoint. The response is a single
// line-item shape, not a full cart.
func (c *Client) AddItem(ctx context.Context, addReq AddRequest) (*LineItem, error) {
	form := url.Values{}
	form.Set("id", strconv.FormatInt(addReq.VariantID, 10))
	form.Set("quantity", strconv.Itoa(addReq.Quantity))
	for name, value := range addReq.Properties {
		form.Set(fmt.Sprintf("properties[%s]", name), value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+addPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build add request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var item LineItem
	if err := c.do(req, "add_item", &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) do(req *http.Request, op string, dest any) error {
	ctx := c.logger.WithFields(req.Context(), map[string]any{
		"op":   op,
		"path": req.URL.Path,
	})
	c.logger.Debug(ctx, "platform request")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error(ctx, "platform request failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, op)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
		c.logger.Error(c.logger.WithField(ctx, "status", resp.StatusCode), "platform request rejected", err)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, op).
			WithDetails(map[string]any{"status": resp.StatusCode, "body": string(snippet)})
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.logger.Error(ctx, "platform response decode failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, op+": decode response")
	}

	c.logger.Debug(ctx, "platform response")
	return nil
}
