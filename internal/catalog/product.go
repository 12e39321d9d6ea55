// Package catalog implements the product catalog state core: the product
// model, command-based state transitions, derived filtering, form validation
// and the pagination helpers behind the dashboard.
package catalog

import (
	"strconv"
	"sync"
	"time"
)

// Category is the fixed set of product categories.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a single catalog entry. Identity is ID: unique across the whole
// list and immutable once assigned.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Stock       int      `json:"stock"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewProductID returns a fresh time-based id token: the millisecond
// timestamp at creation, forced strictly monotonic so rapid successive
// creates never collide.
func NewProductID() string {
	idMu.Lock()
	defer idMu.Unlock()
	now := time.Now().UnixMilli()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return strconv.FormatInt(now, 10)
}
