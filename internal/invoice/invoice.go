package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ListingPath is the dashboard view that shows every invoice. Mutations
// invalidate it and then send the user back to it.
const ListingPath = "/dashboard/invoices"

var ErrNotFound = errors.New("invoice not found")

// Status represents the payment state of an invoice.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Invoice represents a stored invoice record.
type Invoice struct {
	ID         uuid.UUID
	CustomerID string
	Amount     int64     // Amount in cents
	Status     Status
	Date       time.Time // Calendar date, UTC midnight
	CreatedAt  time.Time
}
