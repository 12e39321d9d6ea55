package catalog

import (
	"net/url"
	"strconv"
)

// Flat query keys for the URL-shareable filter encoding.
const (
	querySearch      = "search"
	queryCategory    = "category"
	queryMinPrice    = "minPrice"
	queryMaxPrice    = "maxPrice"
	queryStockStatus = "stockStatus"
)

// CategoryAll is the UI placeholder for "no category constraint"; it is
// collapsed to the empty value on both encode and decode.
const CategoryAll = "All"

// EncodeFilters flattens f into URL query values. Unconstrained dimensions
// are omitted entirely, so the absence of a key means "no constraint".
func EncodeFilters(f FilterSpec) url.Values {
	v := url.Values{}
	if f.SearchTerm != "" {
		v.Set(querySearch, f.SearchTerm)
	}
	if f.Category != "" && f.Category != CategoryAll {
		v.Set(queryCategory, f.Category)
	}
	if f.MinPrice != nil {
		v.Set(queryMinPrice, formatPrice(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		v.Set(queryMaxPrice, formatPrice(*f.MaxPrice))
	}
	if f.StockStatus != StockAny {
		v.Set(queryStockStatus, string(f.StockStatus))
	}
	return v
}

// DecodeFilters rebuilds a FilterSpec from query values. An unparseable
// price bound or unrecognized stock status collapses to "no constraint",
// so decoding never fails.
func DecodeFilters(v url.Values) FilterSpec {
	f := FilterSpec{SearchTerm: v.Get(querySearch)}
	if c := v.Get(queryCategory); c != CategoryAll {
		f.Category = c
	}
	if raw := v.Get(queryMinPrice); raw != "" {
		if p, err := strconv.ParseFloat(raw, 64); err == nil {
			f.MinPrice = &p
		}
	}
	if raw := v.Get(queryMaxPrice); raw != "" {
		if p, err := strconv.ParseFloat(raw, 64); err == nil {
			f.MaxPrice = &p
		}
	}
	if s := v.Get(queryStockStatus); ValidStockStatus(s) {
		f.StockStatus = StockStatus(s)
	}
	return f
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
