package domain

// PlaceholderImage is used when a product carries no images of its own.
const PlaceholderImage = "/assets/img/products/placeholder.png"

// Product is the catalog's read model of a sellable item. The cart only
// consumes it at add-time; prices and stock are snapshots, not live links.
type Product struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	DiscountPrice float64  `json:"discount_price,omitempty"`
	Stock         int      `json:"stock"`
	Images        []string `json:"images,omitempty"`
	SKU           string   `json:"sku,omitempty"`
}

// EffectivePrice is the price actually charged per unit: the discount price
// when present and lower than the list price, else the list price.
func (p Product) EffectivePrice() float64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

// PrimaryImage returns the first product image, falling back to the
// placeholder when the catalog supplies none.
func (p Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img != "" {
			return img
		}
	}
	return PlaceholderImage
}

// Pharmacy is the catalog's read model of a seller.
type Pharmacy struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}
