package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

func TestSessions_IssueAndParse(t *testing.T) {
	sessions := auth.NewSessions("test-secret", "session", time.Hour)
	user := &auth.User{ID: uuid.New(), Email: "user@nextmail.com"}

	issued, err := sessions.Issue(user)
	require.NoError(t, err)

	parsed, err := sessions.Parse(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed.UserID)
	assert.Equal(t, user.Email, parsed.Email)

	_, err = auth.NewSessions("other-secret", "session", time.Hour).Parse(issued.Token)
	assert.Error(t, err, "token signed with another secret must be rejected")

	expired, err := auth.NewSessions("test-secret", "session", -time.Minute).Issue(user)
	require.NoError(t, err)

	_, err = sessions.Parse(expired.Token)
	assert.Error(t, err, "expired token must be rejected")
}

func TestSessions_Require(t *testing.T) {
	sessions := auth.NewSessions("test-secret", "session", time.Hour)

	var seen *auth.Session

	protected := sessions.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("NoCookieRedirectsToLogin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("NoCookieJSONClient", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
		req.Header.Set("Accept", "application/json")

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidCookie", func(t *testing.T) {
		user := &auth.User{ID: uuid.New(), Email: "user@nextmail.com"}
		sess, err := sessions.Issue(user)
		require.NoError(t, err)

		login := httptest.NewRecorder()
		sessions.SetCookie(login, sess)

		req := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.UserID)
	})
}
