// Package rest exposes the catalog dashboard operations over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/prodboard/internal/catalog"
	"github.com/abgdnv/prodboard/internal/notify"
	"github.com/abgdnv/prodboard/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	repo     *catalog.Repository
	forms    *catalog.FormValidator
	notifier notify.Notifier
	search   *catalog.Debouncer
	pageSize int
	logger   *slog.Logger
}

// NewHandler wires the dashboard handlers. pageSize is the default page size
// for product listings; searchWindow is the debounce window for search-term
// propagation (zero applies search terms synchronously).
func NewHandler(repo *catalog.Repository, notifier notify.Notifier, pageSize int, searchWindow time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		forms:    catalog.NewFormValidator(),
		notifier: notifier,
		search:   catalog.NewDebouncer(searchWindow),
		pageSize: pageSize,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the dashboard.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListVisible)
			r.Post("/", h.Create)
			r.Get("/all", h.ListAll)
			r.Get("/export", h.Export)
			r.Post("/undo", h.UndoDelete)
			r.Post("/bulk-delete", h.BulkDelete)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", h.Update)
				r.Delete("/", h.Delete)
			})
		})
		r.Route("/filters", func(r chi.Router) {
			r.Get("/", h.GetFilters)
			r.Put("/", h.SetFilters)
			r.Put("/search", h.Search)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// pageResponse is a single page of the visible list plus paging metadata.
type pageResponse struct {
	Items      []catalog.Product `json:"items"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

// ListVisible returns one page of the filtered product list. Page inputs are
// clamped here: the pagination engine itself expects in-range pages.
func (h *Handler) ListVisible(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	visible := h.repo.Visible()

	perPage := web.QueryIntDefault(r, "per_page", h.pageSize, 1)
	totalPages := catalog.TotalPages(len(visible), perPage)
	page := web.QueryIntDefault(r, "page", 1, 1)
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	web.RespondJSON(w, mLogger, http.StatusOK, pageResponse{
		Items:      catalog.Paginate(visible, perPage, page),
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      len(visible),
	})
}

// ListAll returns the full, unfiltered product list.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.repo.Products())
}

// Create validates the submitted form, assigns a fresh id and appends the
// product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	form, ok := h.decodeForm(w, r, mLogger)
	if !ok {
		return
	}

	product := catalog.ProductFromForm(form, catalog.NewProductID())
	h.repo.Add(r.Context(), product)
	h.notifier.Notify(r.Context(), notify.KindSuccess, "Product added successfully!", nil)
	mLogger.InfoContext(r.Context(), "Product created", "ID", product.ID, "Name", product.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, product)
}

// Update validates the submitted form and replaces the product with the
// path id. A missing id is a silent no-op in the state core; the response
// mirrors that and stays 200.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Missing product id")
		return
	}
	form, ok := h.decodeForm(w, r, mLogger)
	if !ok {
		return
	}

	product := catalog.ProductFromForm(form, id)
	h.repo.Update(r.Context(), product)
	h.notifier.Notify(r.Context(), notify.KindSuccess, "Product updated successfully!", nil)
	mLogger.InfoContext(r.Context(), "Product updated", "ID", product.ID, "Name", product.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, product)
}

// Delete removes the product with the path id and offers a one-step undo
// through the notification affordance. The deleted snapshot is echoed back
// (null when the id was unknown) so clients can drive the undo themselves.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Missing product id")
		return
	}

	deleted := h.repo.Delete(r.Context(), id)
	if deleted != nil {
		restore := *deleted
		h.notifier.Notify(r.Context(), notify.KindInfo, "Product deleted! Click to undo.", func() {
			// Activation happens after the request is gone; detach from it.
			h.repo.UndoDelete(context.Background(), restore)
		})
		mLogger.InfoContext(r.Context(), "Product deleted", "ID", id)
	} else {
		mLogger.DebugContext(r.Context(), "Delete of unknown product ignored", "ID", id)
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"deleted": deleted})
}

// UndoDelete re-inserts the product carried in the request body, unless its
// id is already back in the list.
func (h *Handler) UndoDelete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var product catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	restored := h.repo.UndoDelete(r.Context(), product)
	if restored {
		mLogger.InfoContext(r.Context(), "Product restored", "ID", product.ID)
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]bool{"restored": restored})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDelete removes every product whose id is in the request. The selection
// is consumed whole and cleared afterwards; bulk deletions have no undo.
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	selection := catalog.NewSelection()
	for _, id := range req.IDs {
		if !selection.Has(id) {
			selection.Toggle(id)
		}
	}
	count := selection.Len()
	h.repo.BulkDelete(r.Context(), selection.IDs())
	selection.Clear()

	h.notifier.Notify(r.Context(), notify.KindSuccess, fmt.Sprintf("%d product(s) deleted successfully!", count), nil)
	mLogger.InfoContext(r.Context(), "Bulk delete completed", "count", count)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]int{"remaining": len(h.repo.Products())})
}

// GetFilters returns the active filter spec in its flat query encoding.
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, flatten(catalog.EncodeFilters(h.repo.Filters())))
}

// SetFilters replaces the filter spec wholesale from the query string.
// Unspecified dimensions are cleared, never merged.
func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	spec := catalog.DecodeFilters(r.URL.Query())
	h.repo.SetFilters(spec)
	web.RespondJSON(w, mLogger, http.StatusOK, flatten(catalog.EncodeFilters(spec)))
}

// Search propagates a search term through the debouncer, coalescing rapid
// keystroke events into a single filter update. Other filter dimensions are
// kept as they are at fire time.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	term := r.URL.Query().Get("q")
	h.search.Trigger(func() {
		spec := h.repo.Filters()
		spec.SearchTerm = term
		h.repo.SetFilters(spec)
	})
	web.RespondJSON(w, mLogger, http.StatusAccepted, map[string]string{"search": term})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeForm parses and validates a product form body, writing the error
// response itself when validation fails.
func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (catalog.ProductForm, bool) {
	var form catalog.ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return form, false
	}
	if errs := h.forms.Validate(form); len(errs) > 0 {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errs)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errs})
		return form, false
	}
	return form, true
}

func flatten(values map[string][]string) map[string]string {
	flat := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			flat[key] = vals[0]
		}
	}
	return flat
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, found := web.GetRequestID(r.Context())
	if !found {
		reqID = middleware.GetReqID(r.Context())
	}
	return h.logger.With("request_id", reqID)
}
