/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, carried into the log line
  2. Logger:     One structured zerolog line per request
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/employees/*      Roster and status transitions
  /api/loans/*          Loan ledger
  /api/penalizations/*  Penalization ledger
  /api/payroll/*        Preview, finalize, history, reports
  /api/liquidation/*    Simulation and passive liability
  /api/scenarios/*      Demo scenarios
  /api/admin/*          Admin operations
  /healthz              Liveness

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// RouterOptions configures cross-cutting concerns of the router.
type RouterOptions struct {
	CORSOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Post("/{id}/suspend", h.SuspendEmployee)
			r.Post("/{id}/status", h.ChangeEmployeeStatus)
			r.Get("/{id}/liquidation.pdf", h.GetLiquidationReport)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Get("/", h.ListLoans)
			r.Post("/", h.CreateLoan)
			r.Post("/{id}/cancel", h.CancelLoan)
		})

		r.Route("/penalizations", func(r chi.Router) {
			r.Get("/", h.ListPenalizations)
			r.Post("/", h.CreatePenalization)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Post("/preview", h.PreviewCycle)
			r.Post("/finalize", h.FinalizeCycle)
			r.Get("/history", h.ListCycles)
			r.Get("/history/{id}", h.GetCycle)
			r.Get("/history/{id}/deltas", h.GetCycleDeltas)
			r.Get("/history/{id}/report.pdf", h.GetCycleReport)
		})

		r.Route("/liquidation", func(r chi.Router) {
			r.Post("/simulate", h.SimulateLiquidation)
			r.Get("/liability", h.GetLiability)
		})

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/rules", h.GetRules)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reinstate", h.ReinstateSuspensions)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestLogger writes one line per request once the response is done.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				ev := log.Info()
				if status >= http.StatusInternalServerError {
					ev = log.Error()
				}
				ev.Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
