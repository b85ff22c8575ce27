package invoice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/action"
	"github.com/MrJamesThe3rd/invoicer/internal/cache"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

func newRouter(t *testing.T) (http.Handler, *invoice.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	svc := invoice.NewService(repo)
	views := cache.NewMemory(time.Minute)

	h := invoiceHandler.NewHandler(action.NewInvoices(svc, views), svc, views)

	r := chi.NewRouter()
	r.Route(invoice.ListingPath, h.Routes)

	return r, repo
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name         string
		values       url.Values
		setupMock    func(m *invoice.MockRepository)
		wantStatus   int
		wantLocation string
		wantState    action.State
	}

	tests := []testCase{
		{
			name:   "Success",
			values: url.Values{"customerId": {"c1"}, "amount": {"12.5"}, "status": {"pending"}},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						assert.Equal(t, int64(1250), inv.Amount)
						return nil
					})
			},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/dashboard/invoices",
		},
		{
			name:       "ValidationError",
			values:     url.Values{"customerId": {"c1"}, "amount": {"-1"}, "status": {"late"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantState: action.State{
				Errors: invoice.FieldErrors{
					"amount": {"Amount must be greater than 0"},
					"status": {"Status must be pending or paid"},
				},
				Message: "Validation Error: Failed to Create Invoice.",
			},
		},
		{
			name:       "AmountBelowOneCent",
			values:     url.Values{"customerId": {"c1"}, "amount": {"0.001"}, "status": {"paid"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantState: action.State{
				Errors:  invoice.FieldErrors{"amount": {"Amount must be greater than 0"}},
				Message: "Validation Error: Failed to Create Invoice.",
			},
		},
		{
			name:       "AmountOverflowingCents",
			values:     url.Values{"customerId": {"c1"}, "amount": {"1e17"}, "status": {"paid"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantState: action.State{
				Errors:  invoice.FieldErrors{"amount": {"Amount is too large"}},
				Message: "Validation Error: Failed to Create Invoice.",
			},
		},
		{
			name:   "DatabaseError",
			values: url.Values{"customerId": {"c1"}, "amount": {"1"}, "status": {"paid"}},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded)
			},
			wantStatus: http.StatusInternalServerError,
			wantState:  action.State{Message: "Database Error: Failed to Create Invoice."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := serve(router, postForm("/dashboard/invoices", tt.values))

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
				return
			}

			var got action.State
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantState, got)
			assert.NotContains(t, rec.Body.String(), "deadline")
		})
	}
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	id := uuid.New()

	t.Run("Update", func(t *testing.T) {
		router, repo := newRouter(t)

		repo.EXPECT().
			UpdateInvoice(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
				assert.Equal(t, id, inv.ID)
				assert.Equal(t, int64(500), inv.Amount)

				return nil
			})

		rec := serve(router, postForm("/dashboard/invoices/"+id.String(),
			url.Values{"customerId": {"c1"}, "amount": {"5"}, "status": {"paid"}}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard/invoices", rec.Header().Get("Location"))
	})

	t.Run("DeleteViaForm", func(t *testing.T) {
		router, repo := newRouter(t)

		repo.EXPECT().DeleteInvoice(gomock.Any(), id).Return(nil)

		rec := serve(router, postForm("/dashboard/invoices/"+id.String()+"/delete", url.Values{}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		router, repo := newRouter(t)

		repo.EXPECT().DeleteInvoice(gomock.Any(), id).Return(invoice.ErrNotFound)

		rec := serve(router, httptest.NewRequest(http.MethodDelete, "/dashboard/invoices/"+id.String(), nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Database Error: Failed to Delete Invoice."}`, rec.Body.String())
	})

	t.Run("MalformedID", func(t *testing.T) {
		router, _ := newRouter(t)

		rec := serve(router, postForm("/dashboard/invoices/42", url.Values{}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_ListIsCachedUntilMutation(t *testing.T) {
	router, repo := newRouter(t)

	first := &invoice.Invoice{
		ID:         uuid.New(),
		CustomerID: "c1",
		Amount:     1250,
		Status:     invoice.StatusPending,
		Date:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	gomock.InOrder(
		repo.EXPECT().ListInvoices(gomock.Any()).Return([]*invoice.Invoice{first}, nil),
		repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil),
		repo.EXPECT().ListInvoices(gomock.Any()).Return([]*invoice.Invoice{first, first}, nil),
	)

	list := func() []map[string]any {
		rec := serve(router, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

		return got
	}

	got := list()
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-10", got[0]["date"])
	assert.Equal(t, float64(1250), got[0]["amount"])

	// Served from the cache: no second ListInvoices yet.
	assert.Len(t, list(), 1)

	rec := serve(router, postForm("/dashboard/invoices",
		url.Values{"customerId": {"c1"}, "amount": {"3"}, "status": {"paid"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Len(t, list(), 2)
}

func TestHandler_Get(t *testing.T) {
	router, repo := newRouter(t)

	id := uuid.New()

	repo.EXPECT().GetInvoice(gomock.Any(), id).Return(nil, invoice.ErrNotFound)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/dashboard/invoices/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
