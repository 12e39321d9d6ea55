package catalog

import "strings"

// StockStatus narrows the visible list by stock level.
type StockStatus string

const (
	StockAny StockStatus = ""
	StockIn  StockStatus = "In Stock"
	StockOut StockStatus = "Out of Stock"
	StockLow StockStatus = "Low Stock"
)

// lowStockThreshold is exclusive: low stock means 0 < stock < 5.
const lowStockThreshold = 5

// ValidStockStatus reports whether s is one of the recognized statuses,
// including the unconstrained empty value.
func ValidStockStatus(s string) bool {
	switch StockStatus(s) {
	case StockAny, StockIn, StockOut, StockLow:
		return true
	}
	return false
}

// FilterSpec is the set of active search constraints. Zero-valued fields
// mean "no constraint". Price bounds are pointers so an absent bound and a
// zero bound stay distinct.
type FilterSpec struct {
	SearchTerm  string      `json:"searchTerm,omitempty"`
	Category    string      `json:"category,omitempty"`
	MinPrice    *float64    `json:"minPrice,omitempty"`
	MaxPrice    *float64    `json:"maxPrice,omitempty"`
	StockStatus StockStatus `json:"stockStatus,omitempty"`
}

// Visible derives the filtered subset of products. All constraints are
// conjunctive and the relative order of the input is preserved. The text
// match is a case-insensitive substring test against name or description.
func Visible(products []Product, f FilterSpec) []Product {
	result := products
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		result = keep(result, func(p Product) bool {
			return strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term)
		})
	}
	if f.Category != "" {
		result = keep(result, func(p Product) bool {
			return string(p.Category) == f.Category
		})
	}
	if f.MinPrice != nil {
		result = keep(result, func(p Product) bool { return p.Price >= *f.MinPrice })
	}
	if f.MaxPrice != nil {
		result = keep(result, func(p Product) bool { return p.Price <= *f.MaxPrice })
	}
	switch f.StockStatus {
	case StockIn:
		result = keep(result, func(p Product) bool { return p.Stock > 0 })
	case StockOut:
		result = keep(result, func(p Product) bool { return p.Stock == 0 })
	case StockLow:
		result = keep(result, func(p Product) bool {
			return p.Stock > 0 && p.Stock < lowStockThreshold
		})
	}
	return result
}

func keep(products []Product, pred func(Product) bool) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
