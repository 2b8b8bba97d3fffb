package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wakesup1/fintrack/internal/cache"
	"github.com/wakesup1/fintrack/internal/config"
	"github.com/wakesup1/fintrack/internal/domain/transaction"
)

type TransactionsStore interface {
	Create(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error)
	List(ctx context.Context) ([]transaction.Transaction, error)
	Update(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error)
	Delete(ctx context.Context, id string) (transaction.Transaction, error)
	DeleteAll(ctx context.Context) (int64, error)
	BulkUpdate(ctx context.Context, ids []string, patch transaction.Patch) (int64, error)
	Summary(ctx context.Context) (transaction.Summary, error)
}

const (
	listCacheKey    = "transactions:list"
	summaryCacheKey = "transactions:summary"
)

type TransactionsHandler struct {
	repo  TransactionsStore
	cache cache.Store
}

func NewTransactionsHandler(repo TransactionsStore) *TransactionsHandler {
	return &TransactionsHandler{repo: repo}
}

func NewTransactionsHandlerWithCache(repo TransactionsStore, c cache.Store) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, cache: c}
}

func (h *TransactionsHandler) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.Delete(ctx, listCacheKey, summaryCacheKey)
	}
}

func (h *TransactionsHandler) CreateTransaction(ctx *gin.Context) {
	var req transaction.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	t, err := h.repo.Create(cctx, req)

	if err != nil {
		var verr *transaction.ValidationError

		if errors.As(err, &verr) {
			RespondBadRequest(ctx, "Invalid transaction", gin.H{"fields": []FieldError{
				{Field: verr.Field, Rule: "invalid", Message: verr.Reason},
			}})
			return
		}

		RespondInternal(ctx, "Could not create transaction")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusCreated, gin.H{"data": t})
}

func (h *TransactionsHandler) ListTransactions(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if h.cache != nil {
		if body, ok := h.cache.Get(cctx, listCacheKey); ok {
			RespondRawJSONWithETag(ctx, http.StatusOK, body)
			return
		}
	}

	transactions, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list transactions")
		return
	}

	body, err := json.Marshal(gin.H{
		"data":  transactions,
		"count": len(transactions),
	})

	if err != nil {
		RespondInternal(ctx, "Could not list transactions")
		return
	}

	if h.cache != nil {
		h.cache.Set(cctx, listCacheKey, body)
	}

	RespondRawJSONWithETag(ctx, http.StatusOK, body)
}

// GetSummary aggregates income/expense totals and the running balance.
func (h *TransactionsHandler) GetSummary(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if h.cache != nil {
		if body, ok := h.cache.Get(cctx, summaryCacheKey); ok {
			RespondRawJSONWithETag(ctx, http.StatusOK, body)
			return
		}
	}

	summary, err := h.repo.Summary(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not build summary")
		return
	}

	body, err := json.Marshal(gin.H{"data": summary})

	if err != nil {
		RespondInternal(ctx, "Could not build summary")
		return
	}

	if h.cache != nil {
		h.cache.Set(cctx, summaryCacheKey, body)
	}

	RespondRawJSONWithETag(ctx, http.StatusOK, body)
}

func (h *TransactionsHandler) UpdateTransaction(ctx *gin.Context) {
	id := ctx.Param("id")

	var patch transaction.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	patch.Normalize()

	if verr := patch.Validate(); verr != nil {
		RespondBadRequest(ctx, "Invalid transaction", gin.H{"fields": []FieldError{
			{Field: verr.Field, Rule: "invalid", Message: verr.Reason},
		}})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	t, err := h.repo.Update(cctx, id, patch)

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}

		RespondInternal(ctx, "Could not update transaction")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{"data": t})
}

// DeleteTransaction removes one record and echoes the removed document.
func (h *TransactionsHandler) DeleteTransaction(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	t, err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}

		RespondInternal(ctx, "Could not delete transaction")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{"data": t})
}

// DeleteAllTransactions wipes the collection. The caller must opt in
// with ?confirm=true; the unguarded wipe was too easy to hit by accident.
func (h *TransactionsHandler) DeleteAllTransactions(ctx *gin.Context) {
	if ctx.Query("confirm") != "true" {
		RespondBadRequest(ctx, "Bulk delete must be confirmed with ?confirm=true", nil)
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	count, err := h.repo.DeleteAll(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not delete transactions")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "All transactions deleted",
		"deletedCount": count,
	})
}

type BulkUpdateRequest struct {
	IDs    []string           `json:"ids" binding:"required,min=1,dive,required"`
	Update *transaction.Patch `json:"update" binding:"required"`
}

// BulkUpdateTransactions applies one patch to a set of ids. The patch
// is held to the same invariants as a single-record update.
func (h *TransactionsHandler) BulkUpdateTransactions(ctx *gin.Context) {
	var req BulkUpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	patch := *req.Update
	patch.Normalize()

	if verr := patch.Validate(); verr != nil {
		RespondBadRequest(ctx, "Invalid transaction update", gin.H{"fields": []FieldError{
			{Field: verr.Field, Rule: "invalid", Message: verr.Reason},
		}})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	modified, err := h.repo.BulkUpdate(cctx, req.IDs, patch)

	if err != nil {
		RespondInternal(ctx, "Could not update transactions")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"modifiedCount": modified,
	})
}
