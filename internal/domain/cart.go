package domain

import "errors"

var (
	ErrMissingProductID = errors.New("product id is required")
	ErrInvalidPrice     = errors.New("product price must be positive")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
)

// CartLine is one product selection held in the cart, keyed by ProductID.
// Display fields and prices are copied at add-time; they do not track later
// catalog changes. StockHint is the stock level seen at the last sync with
// the catalog, 0 when unknown.
type CartLine struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	SKU       string  `json:"sku,omitempty" bson:"sku,omitempty"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	ListPrice float64 `json:"list_price" bson:"list_price"`
	ImageURL  string  `json:"image_url" bson:"image_url"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	StockHint int     `json:"stock_hint,omitempty" bson:"stock_hint,omitempty"`
}

// Subtotal is the line's contribution to the cart total.
func (l CartLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// NewLineFromProduct maps a catalog product onto a cart line, enforcing the
// required fields at the boundary so malformed products never reach price
// arithmetic.
func NewLineFromProduct(p Product, quantity int) (CartLine, error) {
	if p.ID == "" {
		return CartLine{}, ErrMissingProductID
	}
	if p.Price <= 0 {
		return CartLine{}, ErrInvalidPrice
	}
	if quantity < 1 {
		return CartLine{}, ErrInvalidQuantity
	}

	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		UnitPrice: p.EffectivePrice(),
		ListPrice: p.Price,
		ImageURL:  p.PrimaryImage(),
		Quantity:  quantity,
		StockHint: p.Stock,
	}, nil
}

// Cart is an ordered collection of cart lines. Order is insertion order and
// carries no meaning beyond stable display.
type Cart struct {
	Items []CartLine `json:"items" bson:"items"`
}

// NewCart builds a cart from previously persisted lines.
func NewCart(lines []CartLine) *Cart {
	return &Cart{Items: lines}
}

// AddLine merges the given line into the cart. When a line for the same
// product already exists its quantity is incremented and its stock hint
// refreshed; the existing price snapshot is kept as-is.
func (c *Cart) AddLine(line CartLine) {
	for i := range c.Items {
		if c.Items[i].ProductID == line.ProductID {
			c.Items[i].Quantity += line.Quantity
			if line.StockHint > 0 {
				c.Items[i].StockHint = line.StockHint
			}
			return
		}
	}
	c.Items = append(c.Items, line)
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op, not an error.
func (c *Cart) Remove(productID string) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites the quantity of an existing line. A quantity of
// zero or less removes the line entirely; a non-positive quantity is never
// stored. No-op when the line does not exist.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the collection.
func (c *Cart) Clear() {
	c.Items = nil
}

// Total sums unit price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount sums line quantities, not line count. Used for cart badges.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Contains reports whether a line for productID exists.
func (c *Cart) Contains(productID string) bool {
	return c.Quantity(productID) > 0
}

// Quantity returns the quantity held for productID, 0 when absent.
func (c *Cart) Quantity(productID string) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Lines returns a defensive copy of the cart's lines.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.Items))
	copy(out, c.Items)
	return out
}
