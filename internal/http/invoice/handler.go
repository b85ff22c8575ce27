package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/action"
	"github.com/MrJamesThe3rd/invoicer/internal/cache"
	"github.com/MrJamesThe3rd/invoicer/internal/http/form"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Handler struct {
	actions *action.Invoices
	svc     *invoice.Service
	views   cache.Views
}

func NewHandler(actions *action.Invoices, svc *invoice.Service, views cache.Views) *Handler {
	return &Handler{actions: actions, svc: svc, views: views}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.delete)
	r.Delete("/{id}", h.delete)
}

// list serves the invoice listing, from the view cache when it is fresh.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	body, err := h.views.Get(r.Context(), invoice.ListingPath)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("failed to read view cache", "path", invoice.ListingPath, "error", err)
		}

		invs, err := h.svc.List(r.Context())
		if err != nil {
			slog.Error("failed to list invoices", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)

			return
		}

		body, err = json.Marshal(toResponseList(invs))
		if err != nil {
			slog.Error("failed to encode response", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)

			return
		}

		if err := h.views.Set(r.Context(), invoice.ListingPath, body); err != nil {
			slog.Warn("failed to fill view cache", "path", invoice.ListingPath, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		slog.Error("failed to get invoice", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(inv)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	submitted, ok := parseForm(w, r)
	if !ok {
		return
	}

	writeOutcome(w, r, h.actions.CreateInvoice(r.Context(), submitted))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	submitted, ok := parseForm(w, r)
	if !ok {
		return
	}

	writeOutcome(w, r, h.actions.UpdateInvoice(r.Context(), id, submitted))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	writeOutcome(w, r, h.actions.DeleteInvoice(r.Context(), id))
}

// invoiceID answers 404 for ids that cannot name an invoice.
func invoiceID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return uuid.Nil, false
	}

	return id, true
}

func parseForm(w http.ResponseWriter, r *http.Request) (invoice.Form, bool) {
	if err := form.Parse(r); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return invoice.Form{}, false
	}

	return invoice.FormFromValues(r.PostForm), true
}

// writeOutcome navigates on success and hands the form state back otherwise.
func writeOutcome(w http.ResponseWriter, r *http.Request, out action.Outcome) {
	if out.Succeeded() {
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
		return
	}

	status := http.StatusInternalServerError
	if len(out.State.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(out.State); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
