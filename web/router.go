package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/render"

	"github.com/cameza/transfer_manager/controller"
)

func getRouter(ctrl controller.C, render *render.Render, secrets Secrets) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/transfers", listTransfersHandler(ctrl, render))

	r.Route("/sync", func(r chi.Router) {
		// A full sync run fetches every group in the strategy, so it
		// gets far more room than a normal request.
		r.Use(middleware.Timeout(5 * time.Minute))

		r.Post("/", syncHandler(ctrl, render, secrets))
		r.Get("/status", syncStatusHandler(ctrl, render))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BasicAuth("transfer_manager", map[string]string{secrets.AdminUser: secrets.AdminPass}))
		r.Use(middleware.Timeout(30 * time.Minute)) // Enrichment batches throttle themselves and run long

		r.Post("/enrich", enrichHandler(ctrl, render))
		r.Post("/enrich/retry", enrichRetryHandler(ctrl, render))
	})

	return r
}
