// Package action runs the dashboard's invoice form submissions: validate the
// input, persist it, then invalidate the listing view and navigate back to
// it. Failures come back as a State for the form to display.
package action

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// State is what a failed submission hands back to the form.
type State struct {
	Errors  invoice.FieldErrors `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Outcome is the result of one action. Exactly one of State and Redirect is
// set; a Redirect means the mutation succeeded and the caller must navigate
// there instead of rendering the form again.
type Outcome struct {
	State    *State
	Redirect string
}

func (o Outcome) Succeeded() bool {
	return o.Redirect != ""
}

//go:generate mockgen -source=invoices.go -destination=invoices_mock.go -package=action
type InvoiceService interface {
	Create(ctx context.Context, f invoice.Fields) (*invoice.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, f invoice.Fields) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Invalidator marks a cached view stale.
type Invalidator interface {
	Invalidate(ctx context.Context, path string) error
}

type operation string

const (
	opCreate operation = "Create"
	opUpdate operation = "Update"
	opDelete operation = "Delete"
)

func (op operation) validationFailed(errs invoice.FieldErrors) Outcome {
	return Outcome{State: &State{
		Errors:  errs,
		Message: "Validation Error: Failed to " + string(op) + " Invoice.",
	}}
}

func (op operation) databaseFailed() Outcome {
	return Outcome{State: &State{
		Message: "Database Error: Failed to " + string(op) + " Invoice.",
	}}
}

type Invoices struct {
	svc   InvoiceService
	views Invalidator
}

func NewInvoices(svc InvoiceService, views Invalidator) *Invoices {
	return &Invoices{svc: svc, views: views}
}

func (a *Invoices) CreateInvoice(ctx context.Context, form invoice.Form) Outcome {
	fields, errs := invoice.Validate(form)
	if errs != nil {
		return opCreate.validationFailed(errs)
	}

	inv, err := a.svc.Create(ctx, fields)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create invoice", "customer_id", fields.CustomerID, "error", err)
		return opCreate.databaseFailed()
	}

	slog.InfoContext(ctx, "invoice created", "id", inv.ID)

	return a.succeed(ctx)
}

// UpdateInvoice applies the form to the invoice identified by id. The id
// comes from the route, never from the form.
func (a *Invoices) UpdateInvoice(ctx context.Context, id uuid.UUID, form invoice.Form) Outcome {
	fields, errs := invoice.Validate(form)
	if errs != nil {
		return opUpdate.validationFailed(errs)
	}

	if err := a.svc.Update(ctx, id, fields); err != nil {
		slog.ErrorContext(ctx, "failed to update invoice", "id", id, "error", err)
		return opUpdate.databaseFailed()
	}

	return a.succeed(ctx)
}

func (a *Invoices) DeleteInvoice(ctx context.Context, id uuid.UUID) Outcome {
	if err := a.svc.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to delete invoice", "id", id, "error", err)
		return opDelete.databaseFailed()
	}

	return a.succeed(ctx)
}

// succeed requests invalidation of the listing before navigating to it. The
// invalidation result is not waited on beyond the call itself.
func (a *Invoices) succeed(ctx context.Context) Outcome {
	if err := a.views.Invalidate(ctx, invoice.ListingPath); err != nil {
		slog.WarnContext(ctx, "failed to invalidate view", "path", invoice.ListingPath, "error", err)
	}

	return Outcome{Redirect: invoice.ListingPath}
}
