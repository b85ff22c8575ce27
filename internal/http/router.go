package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	authHandler "github.com/MrJamesThe3rd/invoicer/internal/http/auth"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

func New(
	allowedOrigins []string,
	sessions *auth.Sessions,
	authV1 *authHandler.Handler,
	invoicesV1 *invoiceHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authV1.Routes(router)

	router.Route(auth.HomePath, func(r chi.Router) {
		r.Use(sessions.Require)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, invoice.ListingPath, http.StatusSeeOther)
		})
		r.Route(strings.TrimPrefix(invoice.ListingPath, auth.HomePath), invoicesV1.Routes)
	})

	return router
}
