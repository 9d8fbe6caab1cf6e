package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/loan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/shu"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/transaction"
)

func New(
	allowedOrigins []string,
	transactionsV1 *transaction.Handler,
	loansV1 *loan.Handler,
	shuV1 *shu.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/loans", loansV1.Routes)
		r.Route("/members/{id}/loans", loansV1.MemberRoutes)

		r.Route("/shu", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			shuV1.Routes(r)
		})
	})

	return router
}
