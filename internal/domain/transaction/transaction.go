package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// The closed set of permitted transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

var ErrNotFound = errors.New("transaction not found")

// ValidationError names the field that broke an invariant. Handlers map
// it to a 400; the repos never persist a document that carries one.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Type        string     `json:"type" binding:"required,oneof=income expense"`
	Amount      *float64   `json:"amount" binding:"required,gte=0"`
	Category    string     `json:"category" binding:"required"`
	Description string     `json:"description" binding:"omitempty,max=1000"`
	Date        *time.Time `json:"date"`
}

// NewFromCreateRequest builds the persisted document: fresh id, trimmed
// strings, date defaulting to creation time.
func NewFromCreateRequest(req CreateRequest) (Transaction, *ValidationError) {
	now := time.Now().UTC()

	category := strings.TrimSpace(req.Category)

	if category == "" {
		return Transaction{}, &ValidationError{Field: "category", Reason: "is required"}
	}

	t := Transaction{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Amount:      *req.Amount,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.Date != nil {
		t.Date = req.Date.UTC()
	}

	if verr := validateTypeAmount(t.Type, t.Amount); verr != nil {
		return Transaction{}, verr
	}

	return t, nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Type        *string    `json:"type"`
	Amount      *float64   `json:"amount"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

func (p Patch) IsEmpty() bool {
	return p.Type == nil && p.Amount == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// Normalize trims the string fields in place, mirroring what the
// create path does.
func (p *Patch) Normalize() {
	if p.Category != nil {
		c := strings.TrimSpace(*p.Category)
		p.Category = &c
	}

	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
}

// Validate checks every present field against the same invariants the
// create path enforces. Bulk and single updates share this.
func (p Patch) Validate() *ValidationError {
	if p.Type != nil && *p.Type != TypeIncome && *p.Type != TypeExpense {
		return &ValidationError{Field: "type", Reason: "must be one of income, expense"}
	}

	if p.Amount != nil && *p.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must be non-negative"}
	}

	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}

	return nil
}

func validateTypeAmount(typ string, amount float64) *ValidationError {
	if typ != TypeIncome && typ != TypeExpense {
		return &ValidationError{Field: "type", Reason: "must be one of income, expense"}
	}

	if amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must be non-negative"}
	}

	return nil
}

// Summary is the aggregate view over all transactions.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}
