package catalog

import "sort"

// State is the authoritative dashboard state. Products keep insertion order,
// except immediately after an undo, which re-sorts the list by ascending id.
// LastDeleted is non-nil only between a single-item delete and the next
// undo, delete or bulk delete.
type State struct {
	Products    []Product
	Filters     FilterSpec
	Loading     bool
	LastDeleted *Product
}

// command is the tagged union of state transitions.
type command interface{ isCommand() }

type setAllCmd struct{ products []Product }
type addCmd struct{ product Product }
type updateCmd struct{ product Product }
type deleteCmd struct{ id string }
type undoDeleteCmd struct{ product Product }
type bulkDeleteCmd struct{ ids map[string]struct{} }
type setFiltersCmd struct{ filters FilterSpec }
type setLoadingCmd struct{ loading bool }

func (setAllCmd) isCommand()     {}
func (addCmd) isCommand()        {}
func (updateCmd) isCommand()     {}
func (deleteCmd) isCommand()     {}
func (undoDeleteCmd) isCommand() {}
func (bulkDeleteCmd) isCommand() {}
func (setFiltersCmd) isCommand() {}
func (setLoadingCmd) isCommand() {}

// transition applies cmd to st and returns the next state. It is pure: the
// input state and its product slice are never mutated. An update or delete
// referencing a missing id leaves the product list unchanged; that silent
// no-op is part of the contract, not an accident of implementation.
func transition(st State, cmd command) State {
	switch c := cmd.(type) {
	case setAllCmd:
		st.Products = c.products
		st.Loading = false

	case addCmd:
		// The caller guarantees the id is not already present.
		st.Products = append(cloneProducts(st.Products), c.product)

	case updateCmd:
		next := cloneProducts(st.Products)
		for i := range next {
			if next[i].ID == c.product.ID {
				next[i] = c.product
			}
		}
		st.Products = next

	case deleteCmd:
		next := make([]Product, 0, len(st.Products))
		// A miss clears the undo slot rather than keeping a stale one.
		st.LastDeleted = nil
		for _, p := range st.Products {
			if p.ID == c.id {
				deleted := p
				st.LastDeleted = &deleted
				continue
			}
			next = append(next, p)
		}
		st.Products = next

	case undoDeleteCmd:
		for _, p := range st.Products {
			if p.ID == c.product.ID {
				// Double undo or a racing re-add: nothing to restore.
				return st
			}
		}
		next := append(cloneProducts(st.Products), c.product)
		sort.Slice(next, func(i, j int) bool { return next[i].ID < next[j].ID })
		st.Products = next
		st.LastDeleted = nil

	case bulkDeleteCmd:
		next := make([]Product, 0, len(st.Products))
		for _, p := range st.Products {
			if _, gone := c.ids[p.ID]; !gone {
				next = append(next, p)
			}
		}
		st.Products = next
		// Bulk deletions are not undoable.
		st.LastDeleted = nil

	case setFiltersCmd:
		st.Filters = c.filters

	case setLoadingCmd:
		st.Loading = c.loading
	}
	return st
}

func cloneProducts(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
