package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type invoiceResponse struct {
	ID         uuid.UUID      `json:"id"`
	CustomerID string         `json:"customer_id"`
	Amount     int64          `json:"amount"`
	Status     invoice.Status `json:"status"`
	Date       string         `json:"date"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     inv.Amount,
		Status:     inv.Status,
		Date:       inv.Date.Format(time.DateOnly),
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}
