package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/prodboard/internal/catalog"
	"github.com/abgdnv/prodboard/internal/notify"
	"github.com/abgdnv/prodboard/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotifier records every notification so tests can assert on messages and
// drive the undo affordance.
type mockNotifier struct {
	kinds      []notify.Kind
	messages   []string
	onActivate func()
}

func (m *mockNotifier) Notify(_ context.Context, kind notify.Kind, message string, onActivate func()) {
	m.kinds = append(m.kinds, kind)
	m.messages = append(m.messages, message)
	m.onActivate = onActivate
}

func seedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "1", Name: "Laptop", Price: 999.99, Category: catalog.CategoryElectronics, Stock: 0, Description: "Workstation"},
		{ID: "2", Name: "T-Shirt", Price: 19.99, Category: catalog.CategoryClothing, Stock: 3, Description: "Cotton"},
		{ID: "3", Name: "Novel", Price: 12.50, Category: catalog.CategoryBooks, Stock: 10, Description: "Paperback"},
	}
}

// newTestRouter stands up the handler on an in-memory snapshot store with a
// synchronous (zero-window) search debouncer.
func newTestRouter(t *testing.T, seed []catalog.Product) (*chi.Mux, *catalog.Repository, *mockNotifier) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	snapshots := store.NewMemory()
	require.NoError(t, snapshots.Save(context.Background(), seed))

	repo := catalog.NewRepository(snapshots, logger)
	require.NoError(t, repo.Load(context.Background()))

	notifier := &mockNotifier{}
	handler := NewHandler(repo, notifier, 2, 0, logger)
	mux := chi.NewRouter()
	handler.RegisterRoutes(mux)
	return mux, repo, notifier
}

func doRequest(mux *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func Test_ListVisible(t *testing.T) {
	testCases := []struct {
		name          string
		target        string
		expectedIDs   []string
		expectedPage  int
		expectedTotal int
		expectedPages int
	}{
		{
			name:          "First page with default size",
			target:        "/api/v1/products",
			expectedIDs:   []string{"1", "2"},
			expectedPage:  1,
			expectedTotal: 3,
			expectedPages: 2,
		},
		{
			name:          "Second page is short",
			target:        "/api/v1/products?page=2",
			expectedIDs:   []string{"3"},
			expectedPage:  2,
			expectedTotal: 3,
			expectedPages: 2,
		},
		{
			name:          "Out-of-range page is clamped to the last page",
			target:        "/api/v1/products?page=99",
			expectedIDs:   []string{"3"},
			expectedPage:  2,
			expectedTotal: 3,
			expectedPages: 2,
		},
		{
			name:          "Explicit page size",
			target:        "/api/v1/products?per_page=10",
			expectedIDs:   []string{"1", "2", "3"},
			expectedPage:  1,
			expectedTotal: 3,
			expectedPages: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux, _, _ := newTestRouter(t, seedProducts())
			// when
			rr := doRequest(mux, http.MethodGet, tc.target, "")
			// then
			require.Equal(t, http.StatusOK, rr.Code)
			var page pageResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
			got := make([]string, 0, len(page.Items))
			for _, p := range page.Items {
				got = append(got, p.ID)
			}
			assert.Equal(t, tc.expectedIDs, got)
			assert.Equal(t, tc.expectedPage, page.Page)
			assert.Equal(t, tc.expectedTotal, page.Total)
			assert.Equal(t, tc.expectedPages, page.TotalPages)
		})
	}
}

func Test_ListAll(t *testing.T) {
	// given
	mux, _, _ := newTestRouter(t, seedProducts())
	// when
	rr := doRequest(mux, http.MethodGet, "/api/v1/products/all", "")
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &products))
	assert.Len(t, products, 3)
}

func Test_Create(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectedCode int
		expectedErrs map[string]string
	}{
		{
			name:         "Success - product created",
			body:         `{"name":"Dumbbell","price":"25.50","category":"Sports","stock":"7","description":"Cast iron"}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - malformed body",
			body:         `{not json`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - validation failures are reported per field",
			body:         `{"name":"ab","price":"0","stock":"-1","description":"ok"}`,
			expectedCode: http.StatusBadRequest,
			expectedErrs: map[string]string{
				"name":  catalog.MsgInvalidName,
				"price": catalog.MsgInvalidPrice,
				"stock": catalog.MsgInvalidStock,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux, repo, notifier := newTestRouter(t, seedProducts())
			// when
			rr := doRequest(mux, http.MethodPost, "/api/v1/products", tc.body)
			// then
			require.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusCreated {
				var created catalog.Product
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
				assert.NotEmpty(t, created.ID)
				assert.Equal(t, "Dumbbell", created.Name)
				assert.Equal(t, 25.50, created.Price)
				assert.Len(t, repo.Products(), 4)
				assert.Equal(t, []string{"Product added successfully!"}, notifier.messages)
				return
			}
			assert.Len(t, repo.Products(), 3, "a rejected create must not touch the list")
			if tc.expectedErrs != nil {
				var resp struct {
					ValidationErrors map[string]string `json:"validation_errors"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tc.expectedErrs, resp.ValidationErrors)
			}
		})
	}
}

func Test_Update(t *testing.T) {
	testCases := []struct {
		name        string
		id          string
		expectedIDs []string
	}{
		{name: "Success - product replaced in place", id: "2", expectedIDs: []string{"1", "2", "3"}},
		{name: "Silent no-op on unknown id", id: "99", expectedIDs: []string{"1", "2", "3"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux, repo, _ := newTestRouter(t, seedProducts())
			body := `{"name":"Hoodie","price":"39.99","category":"Clothing","stock":"5","description":"Warm"}`
			// when
			rr := doRequest(mux, http.MethodPut, "/api/v1/products/"+tc.id, body)
			// then the response is 200 either way, mirroring the state core
			require.Equal(t, http.StatusOK, rr.Code)
			products := repo.Products()
			got := make([]string, 0, len(products))
			for _, p := range products {
				got = append(got, p.ID)
			}
			assert.Equal(t, tc.expectedIDs, got)
		})
	}
}

func Test_Delete_ThenUndoViaNotification(t *testing.T) {
	// given
	mux, repo, notifier := newTestRouter(t, seedProducts())
	// when
	rr := doRequest(mux, http.MethodDelete, "/api/v1/products/2", "")
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Deleted *catalog.Product `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Deleted)
	assert.Equal(t, "2", resp.Deleted.ID)
	assert.Len(t, repo.Products(), 2)
	assert.Equal(t, []notify.Kind{notify.KindInfo}, notifier.kinds)
	assert.Equal(t, []string{"Product deleted! Click to undo."}, notifier.messages)

	// when the notification is activated
	require.NotNil(t, notifier.onActivate)
	notifier.onActivate()
	// then the product is restored in id order
	products := repo.Products()
	require.Len(t, products, 3)
	assert.Equal(t, "2", products[1].ID)

	// when activated again
	notifier.onActivate()
	// then nothing is duplicated
	assert.Len(t, repo.Products(), 3)
}

func Test_Delete_UnknownID(t *testing.T) {
	// given
	mux, repo, notifier := newTestRouter(t, seedProducts())
	// when
	rr := doRequest(mux, http.MethodDelete, "/api/v1/products/99", "")
	// then deleted is null and no undo is offered
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":null}`, rr.Body.String())
	assert.Len(t, repo.Products(), 3)
	assert.Empty(t, notifier.messages)
}

func Test_UndoDelete_Endpoint(t *testing.T) {
	// given a deleted product echoed back by the delete response
	mux, repo, _ := newTestRouter(t, seedProducts())
	rr := doRequest(mux, http.MethodDelete, "/api/v1/products/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Deleted *catalog.Product `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Deleted)
	body, err := json.Marshal(resp.Deleted)
	require.NoError(t, err)

	// when
	rr = doRequest(mux, http.MethodPost, "/api/v1/products/undo", string(body))
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"restored":true}`, rr.Body.String())
	assert.Len(t, repo.Products(), 3)

	// when undone a second time
	rr = doRequest(mux, http.MethodPost, "/api/v1/products/undo", string(body))
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"restored":false}`, rr.Body.String())
	assert.Len(t, repo.Products(), 3)
}

func Test_BulkDelete(t *testing.T) {
	// given
	mux, repo, notifier := newTestRouter(t, seedProducts())
	// when
	rr := doRequest(mux, http.MethodPost, "/api/v1/products/bulk-delete", `{"ids":["1","3","3"]}`)
	// then duplicates collapse and unknown ids would be ignored
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"remaining":1}`, rr.Body.String())
	products := repo.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "2", products[0].ID)
	assert.Equal(t, []string{"2 product(s) deleted successfully!"}, notifier.messages)
	assert.Nil(t, repo.LastDeleted(), "bulk deletions are not undoable")
}

func Test_Filters(t *testing.T) {
	// given
	mux, repo, _ := newTestRouter(t, seedProducts())
	// when the filters are replaced from a query string
	rr := doRequest(mux, http.MethodPut, "/api/v1/filters?search=shirt&category=Clothing&maxPrice=50&stockStatus=Low+Stock", "")
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"search":"shirt","category":"Clothing","maxPrice":"50","stockStatus":"Low Stock"}`, rr.Body.String())
	assert.Equal(t, "shirt", repo.Filters().SearchTerm)

	// when read back
	rr = doRequest(mux, http.MethodGet, "/api/v1/filters", "")
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"search":"shirt","category":"Clothing","maxPrice":"50","stockStatus":"Low Stock"}`, rr.Body.String())

	// when replaced with a narrower spec
	rr = doRequest(mux, http.MethodPut, "/api/v1/filters?category=Books", "")
	// then unspecified dimensions are cleared, not merged
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"category":"Books"}`, rr.Body.String())
	assert.Empty(t, repo.Filters().SearchTerm)
}

func Test_Search(t *testing.T) {
	// given active filters
	mux, repo, _ := newTestRouter(t, seedProducts())
	repo.SetFilters(catalog.FilterSpec{Category: "Clothing"})
	// when (the test router uses a zero debounce window, so this is synchronous)
	rr := doRequest(mux, http.MethodPut, "/api/v1/filters/search?q=shirt", "")
	// then the term is merged into the current spec
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"search":"shirt"}`, rr.Body.String())
	assert.Equal(t, "shirt", repo.Filters().SearchTerm)
	assert.Equal(t, "Clothing", repo.Filters().Category, "other dimensions survive a search update")
}

func Test_Export(t *testing.T) {
	// given
	mux, _, _ := newTestRouter(t, seedProducts())
	// when
	rr := doRequest(mux, http.MethodGet, "/api/v1/products/export", "")
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "products.xlsx")
	assert.NotZero(t, rr.Body.Len())
}

func Test_HealthCheck(t *testing.T) {
	mux, _, _ := newTestRouter(t, seedProducts())
	rr := doRequest(mux, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
