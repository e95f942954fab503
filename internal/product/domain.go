// internal/product/domain.go
package product

import (
	"errors"

	"github.com/google/uuid"
)

// Product represents a catalog product. The ID is assigned by the store on
// creation and is immutable afterwards. Stock never goes negative.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// Stock event actions.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionSold   = "SOLD"
)

// StockEvent is the wire format shared by the payment-success and
// stock-updated topics. The meaning of Quantity depends on Action:
// resulting stock for CREATE and UPDATE, zero for DELETE, and the
// reserved amount for SOLD and for inbound payment events.
type StockEvent struct {
	EventID   uuid.UUID `json:"eventId,omitempty"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"newStock"`
	Action    string    `json:"action"`
}

// FailureReason classifies why a reservation did not apply.
type FailureReason string

const (
	ReasonInsufficientStock FailureReason = "insufficient_stock"
	ReasonMalformedEvent    FailureReason = "malformed_event"
	ReasonStoreError        FailureReason = "store_error"
)

// ReservationOutcome is the transient result of one inbound payment event.
// It is logged or published immediately and never persisted.
type ReservationOutcome struct {
	ProductID      int64
	RequestedQty   int
	Success        bool
	ResultingStock *int
	FailureReason  FailureReason
}

var (
	// ErrNotFound signals that no product exists for the given id.
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock signals a reservation larger than the available stock.
	ErrInsufficientStock = errors.New("not enough stock")
	// ErrValidation signals malformed or incomplete input. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate signals a unique-constraint conflict on create.
	ErrDuplicate = errors.New("duplicate product")
)

// Fallback returns the sentinel record served instead of an error when
// reads are degraded. Callers can always render it; it is never nil.
func Fallback() Product {
	return Product{
		Name:        "Unavailable",
		Description: "Service degraded",
		Category:    "N/A",
		Price:       0,
		Stock:       0,
	}
}

// IsTerminal reports whether err must never be retried: the request itself
// is wrong or the answer is final, so another attempt cannot change it.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicate)
}
