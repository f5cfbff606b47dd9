package pos

import "sync"

// ProductSnapshot is the product data captured at the moment an item is added
// to the cart. The cart never re-fetches product attributes; a later price
// change on the catalog does not affect lines already in the cart.
type ProductSnapshot struct {
	ID           string
	Name         string
	SellingPrice float64
}

// LineItem is one product-and-quantity entry within a cart.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Cart holds the line items of the in-progress sale, keyed by product ID.
// No two lines ever share a product ID; adding a product that is already in
// the cart increments its quantity instead of duplicating the line.
type Cart struct {
	mu    sync.Mutex
	items map[string]*LineItem
	order []string // product IDs in insertion order, for stable display
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{
		items: make(map[string]*LineItem),
	}
}

// AddItem adds one unit of the given product. If a line for the product
// already exists its quantity is incremented by 1, otherwise a new line with
// quantity 1 is inserted. AddItem always succeeds.
func (c *Cart) AddItem(p ProductSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[p.ID]; ok {
		item.Quantity++
		return
	}
	c.items[p.ID] = &LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.SellingPrice,
		Quantity:  1,
	}
	c.order = append(c.order, p.ID)
}

// SetQuantity replaces the quantity of the line for productID. A quantity of
// zero or less removes the line entirely. Unknown product IDs are a no-op.
func (c *Cart) SetQuantity(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[productID]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.removeLocked(productID)
		return
	}
	item.Quantity = quantity
}

// RemoveItem removes the line for productID if present; no-op otherwise.
func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID string) {
	if _, ok := c.items[productID]; !ok {
		return
	}
	delete(c.items, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Deduct subtracts the given snapshotted quantities from the cart, removing
// lines whose quantity drops to zero or less. Lines added or grown after the
// snapshot was taken keep their surplus; unknown product IDs are a no-op.
func (c *Cart) Deduct(items []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, snap := range items {
		item, ok := c.items[snap.ProductID]
		if !ok {
			continue
		}
		item.Quantity -= snap.Quantity
		if item.Quantity <= 0 {
			c.removeLocked(snap.ProductID)
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*LineItem)
	c.order = nil
}

// Items returns the current line items in insertion order. The returned slice
// is a copy; mutating it does not affect the cart.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]LineItem, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, *c.items[id])
	}
	return items
}

// Len returns the number of distinct lines in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
