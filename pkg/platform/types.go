package platform

import "fmt"

// PlaceholderImageURL is used for line items the platform returns without any
// image reference.
const PlaceholderImageURL = "https://via.placeholder.com/150"

// Cart is the cart resource as returned by the platform's cart read and update
// endpoints. Item order is meaningful and must be preserved.
type Cart struct {
	Items      []LineItem `json:"items"`
	ItemCount  int        `json:"item_count"`
	TotalPrice int64      `json:"total_price"`
}

// LineItem is one cart entry. Key is stable across updates and distinct from
// the variant id; the add endpoint returns this same shape for a single item.
type LineItem struct {
	Key            string            `json:"key"`
	ID             int64             `json:"id"`
	VariantID      int64             `json:"variant_id"`
	ProductTitle   string            `json:"product_title"`
	VariantTitle   string            `json:"variant_title"`
	Quantity       int               `json:"quantity"`
	Price          int64             `json:"price"`
	FinalLinePrice int64             `json:"final_line_price"`
	Image          *Image            `json:"image,omitempty"`
	FeaturedImage  *Image            `json:"featured_image,omitempty"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// Image carries the two URL spellings the platform uses across endpoints.
type Image struct {
	Src string `json:"src,omitempty"`
	URL string `json:"url,omitempty"`
}

// UpdateKey returns the identifier the update endpoint keys quantity targets
// by: the variant id when present, otherwise the line id.
func (li LineItem) UpdateKey() string {
	if li.VariantID != 0 {
		return fmt.Sprintf("%d", li.VariantID)
	}
	return fmt.Sprintf("%d", li.ID)
}

// DisplayImageURL resolves the row image: a direct image src wins, a featured
// image gets the width parameter appended, and items without either fall back
// to the placeholder.
func (li LineItem) DisplayImageURL(width int) string {
	if li.Image != nil && li.Image.Src != "" {
		return li.Image.Src
	}
	if li.FeaturedImage != nil && li.FeaturedImage.URL != "" {
		return fmt.Sprintf("%s&width=%d", li.FeaturedImage.URL, width)
	}
	return PlaceholderImageURL
}

// LinePrice returns the platform-computed line total when provided, otherwise
// unit price times quantity.
func (li LineItem) LinePrice() int64 {
	if li.FinalLinePrice != 0 {
		return li.FinalLinePrice
	}
	return li.Price * int64(li.Quantity)
}
