package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// SnapshotStore persists the full product list under a single logical key.
// Load treats an absent snapshot as an empty catalog, never as an error.
// The interface lives here, with its consumer; implementations are in
// internal/store.
type SnapshotStore interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
}

// Repository is the explicitly constructed, owned state handle behind the
// dashboard. It is created once at startup, hydrated via Load, and passed by
// reference to whatever needs it. All mutation funnels through the command
// transition under one mutex, and every product-mutating operation snapshots
// the resulting list before returning. A failed snapshot is logged and the
// in-memory change kept: durability is best effort, the session state is the
// source of truth.
type Repository struct {
	store  SnapshotStore
	logger *slog.Logger

	mu    sync.Mutex
	state State

	// Version counters back the memoized visible list: the derivation is
	// recomputed only when the (products, filters) pair has moved on.
	productsVer uint64
	filtersVer  uint64
	visible     []Product
	visibleOf   [2]uint64
}

// NewRepository returns a repository in the loading state, backed by store.
func NewRepository(store SnapshotStore, logger *slog.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger.With("component", "catalog"),
		state: State{
			Products: []Product{},
			Loading:  true,
		},
	}
}

// Load hydrates the repository from the snapshot store and clears the
// loading flag. An absent snapshot is an empty catalog.
func (r *Repository) Load(ctx context.Context) error {
	products, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog snapshot: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apply(setAllCmd{products: products})
	return nil
}

// SetAll replaces the whole product list and persists it. The loading flag
// is cleared.
func (r *Repository) SetAll(ctx context.Context, products []Product) {
	r.dispatch(ctx, setAllCmd{products: products})
}

// Add appends product to the end of the list and persists. The caller
// guarantees the id is not already present.
func (r *Repository) Add(ctx context.Context, p Product) {
	r.dispatch(ctx, addCmd{product: p})
}

// Update replaces the entry with a matching id in place, preserving its
// position, and persists. A missing id leaves the state untouched.
func (r *Repository) Update(ctx context.Context, p Product) {
	r.dispatch(ctx, updateCmd{product: p})
}

// Delete removes the product with the given id, remembers it for a one-step
// undo and persists. It returns the removed product, or nil when the id was
// not found — in which case the undo slot is left empty.
func (r *Repository) Delete(ctx context.Context, id string) *Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apply(deleteCmd{id: id})
	r.save(ctx)
	if r.state.LastDeleted == nil {
		return nil
	}
	p := *r.state.LastDeleted
	return &p
}

// UndoDelete re-inserts p unless its id is already back in the list (double
// undo, racing re-add), re-sorts the list by ascending id, clears the undo
// slot and persists. It reports whether the product was restored.
func (r *Repository) UndoDelete(ctx context.Context, p Product) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.state.Products)
	r.apply(undoDeleteCmd{product: p})
	restored := len(r.state.Products) > before
	r.save(ctx)
	return restored
}

// BulkDelete removes every product whose id is in ids and persists. Bulk
// deletions are not undoable, so the undo slot is cleared unconditionally.
func (r *Repository) BulkDelete(ctx context.Context, ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	r.dispatch(ctx, bulkDeleteCmd{ids: set})
}

// SetFilters replaces the active filter spec wholesale: a partial spec
// clears whatever it leaves out. Filters are session state and are not
// persisted.
func (r *Repository) SetFilters(filters FilterSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apply(setFiltersCmd{filters: filters})
}

// SetLoading flips the loading flag without touching products.
func (r *Repository) SetLoading(loading bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apply(setLoadingCmd{loading: loading})
}

// Products returns a copy of the full list in its current order.
func (r *Repository) Products() []Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneProducts(r.state.Products)
}

// Visible returns a copy of the filtered list. The derivation is memoized on
// the (products, filters) pair, so repeated reads between changes are cheap.
func (r *Repository) Visible() []Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := [2]uint64{r.productsVer, r.filtersVer}
	if r.visible == nil || r.visibleOf != current {
		r.visible = Visible(r.state.Products, r.state.Filters)
		r.visibleOf = current
	}
	return cloneProducts(r.visible)
}

// Filters returns the active filter spec.
func (r *Repository) Filters() FilterSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Filters
}

// LastDeleted returns a copy of the undo slot, nil when no single-item
// delete is pending undo.
func (r *Repository) LastDeleted() *Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.LastDeleted == nil {
		return nil
	}
	p := *r.state.LastDeleted
	return &p
}

// Loading reports whether the initial snapshot has not been applied yet.
func (r *Repository) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Loading
}

// dispatch applies cmd and snapshots the resulting product list, atomically
// with respect to other operations.
func (r *Repository) dispatch(ctx context.Context, cmd command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apply(cmd)
	r.save(ctx)
}

// apply runs the pure transition and bumps the version counters. Callers
// hold r.mu.
func (r *Repository) apply(cmd command) {
	r.state = transition(r.state, cmd)
	switch cmd.(type) {
	case setFiltersCmd:
		r.filtersVer++
	case setLoadingCmd:
		// no derived data depends on the loading flag
	default:
		r.productsVer++
	}
}

// save writes the current product list to the snapshot store. Failures are
// logged, not propagated: the in-memory state is not rolled back. Callers
// hold r.mu.
func (r *Repository) save(ctx context.Context) {
	if err := r.store.Save(ctx, cloneProducts(r.state.Products)); err != nil {
		r.logger.WarnContext(ctx, "catalog snapshot write failed", "error", err)
	}
}
