package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/invoicer/internal/action"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/cache"
	invoicerHttp "github.com/MrJamesThe3rd/invoicer/internal/http"
	authHandler "github.com/MrJamesThe3rd/invoicer/internal/http/auth"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type fixture struct {
	router   http.Handler
	users    *auth.MockUserRepository
	invoices *invoice.MockRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := auth.NewMockUserRepository(ctrl)
	invoices := invoice.NewMockRepository(ctrl)

	sessions := auth.NewSessions("test-secret", "session", time.Hour)
	svc := invoice.NewService(invoices)
	views := cache.NewMemory(time.Minute)

	router := invoicerHttp.New(
		[]string{"http://localhost:3000"},
		sessions,
		authHandler.NewHandler(auth.NewService(users, sessions), sessions),
		invoiceHandler.NewHandler(action.NewInvoices(svc, views), svc, views),
	)

	return fixture{router: router, users: users, invoices: invoices}
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestRouter_DashboardRequiresSession(t *testing.T) {
	f := newFixture(t)

	paths := []string{
		"/dashboard",
		"/dashboard/invoices",
		"/dashboard/invoices/" + uuid.NewString(),
		"/dashboard/customers",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := get(f.router, path)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}
}

func TestRouter_LoginLandsOnDashboard(t *testing.T) {
	f := newFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &auth.User{ID: uuid.New(), Email: "user@nextmail.com", Password: string(hash)}

	f.users.EXPECT().GetUserByEmail(gomock.Any(), user.Email).Return(user, nil)
	f.invoices.EXPECT().ListInvoices(gomock.Any()).Return([]*invoice.Invoice{}, nil)

	form := url.Values{"email": {user.Email}, "password": {"123456"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	location := rec.Header().Get("Location")
	assert.Equal(t, "/dashboard", location)

	rec = get(f.router, location, cookies...)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, invoice.ListingPath, rec.Header().Get("Location"))

	rec = get(f.router, rec.Header().Get("Location"), cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
