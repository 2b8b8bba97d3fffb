package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wakesup1/fintrack/internal/cache"
	"github.com/wakesup1/fintrack/internal/domain/transaction"
	"github.com/wakesup1/fintrack/internal/http/handlers"
)

// Fake repository implementation of the handlers.TransactionsStore interface

type fakeTransactionsRepo struct {
	createFn     func(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error)
	listFn       func(ctx context.Context) ([]transaction.Transaction, error)
	updateFn     func(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error)
	deleteFn     func(ctx context.Context, id string) (transaction.Transaction, error)
	deleteAllFn  func(ctx context.Context) (int64, error)
	bulkUpdateFn func(ctx context.Context, ids []string, patch transaction.Patch) (int64, error)
	summaryFn    func(ctx context.Context) (transaction.Summary, error)
}

func (f *fakeTransactionsRepo) Create(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return transaction.Transaction{}, nil
}

func (f *fakeTransactionsRepo) List(ctx context.Context) ([]transaction.Transaction, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return []transaction.Transaction{}, nil
}

func (f *fakeTransactionsRepo) Update(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}

	return transaction.Transaction{}, nil
}

func (f *fakeTransactionsRepo) Delete(ctx context.Context, id string) (transaction.Transaction, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return transaction.Transaction{}, nil
}

func (f *fakeTransactionsRepo) DeleteAll(ctx context.Context) (int64, error) {
	if f.deleteAllFn != nil {
		return f.deleteAllFn(ctx)
	}

	return 0, nil
}

func (f *fakeTransactionsRepo) BulkUpdate(ctx context.Context, ids []string, patch transaction.Patch) (int64, error) {
	if f.bulkUpdateFn != nil {
		return f.bulkUpdateFn(ctx, ids, patch)
	}

	return 0, nil
}

func (f *fakeTransactionsRepo) Summary(ctx context.Context) (transaction.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx)
	}

	return transaction.Summary{}, nil
}

func sampleTransaction(typ string, amount float64, date time.Time) transaction.Transaction {
	now := time.Now().UTC()

	return transaction.Transaction{
		ID:        uuid.NewString(),
		Type:      typ,
		Amount:    amount,
		Category:  "Misc",
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateTransactionHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTransactionsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"type":"income","amount":100,"category":"Salary"}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.createFn = func(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
					return sampleTransaction(req.Type, *req.Amount, time.Now().UTC()), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "zero_amount_is_valid",
			body: `{"type":"expense","amount":0,"category":"Misc"}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.createFn = func(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
					return sampleTransaction(req.Type, *req.Amount, time.Now().UTC()), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "missing_fields",
			body: `{"type":"income"}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.createFn = func(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
					t.Error("repo should not be called for an invalid payload")
					return transaction.Transaction{}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_type",
			body:           `{"type":"transfer","amount":10,"category":"Misc"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "negative_amount",
			body:           `{"type":"expense","amount":-5,"category":"Food"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "blank_category",
			body: `{"type":"expense","amount":5,"category":"   "}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				// category survives the binding tags; the domain validator catches it
				f.createFn = func(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
					_, verr := transaction.NewFromCreateRequest(req)
					return transaction.Transaction{}, verr
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"type":"income","amount":100,"category":"Salary"}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.createFn = func(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
					return transaction.Transaction{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTransactionsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewTransactionsHandler(fakeRepo)

			r := setupRouter(http.MethodPost, "/transactions", h.CreateTransaction)

			req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListTransactionsHandler(t *testing.T) {
	now := time.Now().UTC()

	// newest date first, regardless of insertion order
	ordered := []transaction.Transaction{
		sampleTransaction(transaction.TypeIncome, 100, now),
		sampleTransaction(transaction.TypeExpense, 40, now.Add(-time.Hour)),
		sampleTransaction(transaction.TypeExpense, 5, now.Add(-2*time.Hour)),
	}

	tests := []struct {
		name           string
		repoSetUp      func(*fakeTransactionsRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success",
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.listFn = func(ctx context.Context) ([]transaction.Transaction, error) {
					return ordered, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      3,
		},
		{
			name:           "empty",
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name: "repo_error",
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.listFn = func(ctx context.Context) ([]transaction.Transaction, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTransactionsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewTransactionsHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/transactions", h.ListTransactions)

			req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Data  []transaction.Transaction `json:"data"`
				Count int                       `json:"count"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if resp.Count != tt.wantCount {
				t.Fatalf("got count %d, want %d", resp.Count, tt.wantCount)
			}

			// the repo's ordering must survive serialization untouched
			for i := 1; i < len(resp.Data); i++ {
				if resp.Data[i].Date.After(resp.Data[i-1].Date) {
					t.Fatalf("list not ordered by date descending at index %d", i)
				}
			}
		})
	}
}

func TestUpdateTransactionHandler(t *testing.T) {
	validID := uuid.NewString()
	missingID := uuid.NewString()

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetUp      func(*fakeTransactionsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/transactions/" + validID,
			body: `{"amount":250,"category":"Bonus"}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.updateFn = func(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error) {
					if patch.Amount == nil || *patch.Amount != 250 {
						t.Error("amount patch not passed through")
					}
					if patch.Type != nil {
						t.Error("absent fields must stay nil")
					}

					tr := sampleTransaction(transaction.TypeIncome, *patch.Amount, time.Now().UTC())
					tr.ID = id
					return tr, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/transactions/" + missingID,
			body: `{"amount":250}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.updateFn = func(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error) {
					return transaction.Transaction{}, transaction.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "invalid_type",
			url:  "/transactions/" + validID,
			body: `{"type":"transfer"}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.updateFn = func(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error) {
					t.Error("repo should not be called for an invalid patch")
					return transaction.Transaction{}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "negative_amount",
			url:            "/transactions/" + validID,
			body:           `{"amount":-1}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/transactions/" + validID,
			body: `{"amount":250}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.updateFn = func(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error) {
					return transaction.Transaction{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTransactionsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewTransactionsHandler(fakeRepo)

			r := setupRouter(http.MethodPut, "/transactions/:id", h.UpdateTransaction)
			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteTransactionHandler(t *testing.T) {
	validID := uuid.NewString()
	missingID := uuid.NewString()

	tests := []struct {
		name           string
		url            string
		repoSetUp      func(*fakeTransactionsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/transactions/" + validID,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.deleteFn = func(ctx context.Context, id string) (transaction.Transaction, error) {
					tr := sampleTransaction(transaction.TypeExpense, 40, time.Now().UTC())
					tr.ID = id
					return tr, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/transactions/" + missingID,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.deleteFn = func(ctx context.Context, id string) (transaction.Transaction, error) {
					return transaction.Transaction{}, transaction.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/transactions/" + validID,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.deleteFn = func(ctx context.Context, id string) (transaction.Transaction, error) {
					return transaction.Transaction{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTransactionsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewTransactionsHandler(fakeRepo)

			r := setupRouter(http.MethodDelete, "/transactions/:id", h.DeleteTransaction)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Data transaction.Transaction `json:"data"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Data.ID == "" {
					t.Fatal("expected the deleted document in the response")
				}
			}
		})
	}
}

func TestDeleteAllTransactionsHandler(t *testing.T) {
	t.Run("requires_confirmation", func(t *testing.T) {
		fakeRepo := &fakeTransactionsRepo{
			deleteAllFn: func(ctx context.Context) (int64, error) {
				t.Error("repo should not be called without confirmation")
				return 0, nil
			},
		}

		h := handlers.NewTransactionsHandler(fakeRepo)
		r := setupRouter(http.MethodDelete, "/transactions", h.DeleteAllTransactions)

		req := httptest.NewRequest(http.MethodDelete, "/transactions", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		fakeRepo := &fakeTransactionsRepo{
			deleteAllFn: func(ctx context.Context) (int64, error) {
				return 7, nil
			},
		}

		h := handlers.NewTransactionsHandler(fakeRepo)
		r := setupRouter(http.MethodDelete, "/transactions", h.DeleteAllTransactions)

		req := httptest.NewRequest(http.MethodDelete, "/transactions?confirm=true", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}

		var resp struct {
			DeletedCount int64 `json:"deletedCount"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if resp.DeletedCount != 7 {
			t.Fatalf("got deletedCount %d, want 7", resp.DeletedCount)
		}
	})

	t.Run("repo_error", func(t *testing.T) {
		fakeRepo := &fakeTransactionsRepo{
			deleteAllFn: func(ctx context.Context) (int64, error) {
				return 0, errors.New("db error")
			},
		}

		h := handlers.NewTransactionsHandler(fakeRepo)
		r := setupRouter(http.MethodDelete, "/transactions", h.DeleteAllTransactions)

		req := httptest.NewRequest(http.MethodDelete, "/transactions?confirm=true", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d, want 500, body=%s", w.Code, w.Body.String())
		}
	})
}

func TestBulkUpdateTransactionsHandler(t *testing.T) {
	id1 := uuid.NewString()
	id2 := uuid.NewString()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTransactionsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"ids":["` + id1 + `","` + id2 + `"],"update":{"category":"Archived"}}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.bulkUpdateFn = func(ctx context.Context, ids []string, patch transaction.Patch) (int64, error) {
					if len(ids) != 2 {
						t.Errorf("got %d ids, want 2", len(ids))
					}
					return 2, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_ids",
			body:           `{"update":{"category":"Archived"}}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "empty_ids",
			body:           `{"ids":[],"update":{"category":"Archived"}}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_update",
			body:           `{"ids":["` + id1 + `"]}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "invalid_patch_type",
			body: `{"ids":["` + id1 + `"],"update":{"type":"transfer"}}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.bulkUpdateFn = func(ctx context.Context, ids []string, patch transaction.Patch) (int64, error) {
					t.Error("repo should not be called for an invalid patch")
					return 0, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "negative_patch_amount",
			body:           `{"ids":["` + id1 + `"],"update":{"amount":-10}}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"ids":["` + id1 + `"],"update":{"category":"Archived"}}`,
			repoSetUp: func(f *fakeTransactionsRepo) {
				f.bulkUpdateFn = func(ctx context.Context, ids []string, patch transaction.Patch) (int64, error) {
					return 0, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTransactionsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewTransactionsHandler(fakeRepo)

			r := setupRouter(http.MethodPatch, "/transactions", h.BulkUpdateTransactions)

			req := httptest.NewRequest(http.MethodPatch, "/transactions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					ModifiedCount int64 `json:"modifiedCount"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.ModifiedCount != 2 {
					t.Fatalf("got modifiedCount %d, want 2", resp.ModifiedCount)
				}
			}
		})
	}
}

func TestGetSummaryHandler(t *testing.T) {
	fakeRepo := &fakeTransactionsRepo{
		summaryFn: func(ctx context.Context) (transaction.Summary, error) {
			return transaction.Summary{Income: 100, Expense: 40, Balance: 60}, nil
		},
	}

	h := handlers.NewTransactionsHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/transactions/summary", h.GetSummary)

	req := httptest.NewRequest(http.MethodGet, "/transactions/summary", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data transaction.Summary `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Data.Balance != 60 {
		t.Fatalf("got balance %v, want 60", resp.Data.Balance)
	}
}

func TestListTransactionsHandler_CacheHit(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeTransactionsRepo{}
	c := cache.New(30 * time.Second)

	calls := 0
	fakeRepo.listFn = func(ctx context.Context) ([]transaction.Transaction, error) {
		calls++
		return []transaction.Transaction{
			sampleTransaction(transaction.TypeIncome, 100, now),
		}, nil
	}

	h := handlers.NewTransactionsHandlerWithCache(fakeRepo, c)
	r := setupRouter(http.MethodGet, "/transactions", h.ListTransactions)

	// First request: cache miss -> repo called
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	// Second request: cache hit -> repo should NOT be called again
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	if w2.Code != http.StatusOK {
		t.Fatalf("second call got %d body=%s", w2.Code, w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}

	if w1.Body.String() != w2.Body.String() {
		t.Fatal("cached body differs from the original")
	}
}

func TestCreateTransaction_InvalidatesListCache(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeTransactionsRepo{}
	c := cache.New(30 * time.Second)

	listCalls := 0
	fakeRepo.listFn = func(ctx context.Context) ([]transaction.Transaction, error) {
		listCalls++
		return []transaction.Transaction{}, nil
	}
	fakeRepo.createFn = func(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
		return sampleTransaction(req.Type, *req.Amount, now), nil
	}

	h := handlers.NewTransactionsHandlerWithCache(fakeRepo, c)

	r := gin.New()
	r.GET("/transactions", h.ListTransactions)
	r.POST("/transactions", h.CreateTransaction)

	get := func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("list got %d body=%s", w.Code, w.Body.String())
		}
	}

	get() // miss
	get() // hit

	req := httptest.NewRequest(http.MethodPost, "/transactions",
		bytes.NewBufferString(`{"type":"income","amount":10,"category":"Salary"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create got %d body=%s", w.Code, w.Body.String())
	}

	get() // miss again after the write

	if listCalls != 2 {
		t.Fatalf("expected repo list calls=2, got %d", listCalls)
	}
}

func TestListTransactionsHandler_ETagNotModified(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeTransactionsRepo{
		listFn: func(ctx context.Context) ([]transaction.Transaction, error) {
			return []transaction.Transaction{
				sampleTransaction(transaction.TypeIncome, 100, now),
			}, nil
		},
	}

	h := handlers.NewTransactionsHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/transactions", h.ListTransactions)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header in first response")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req2.Header.Set("If-None-Match", etag)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call got %d, want %d", w2.Code, http.StatusNotModified)
	}

	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}
}
