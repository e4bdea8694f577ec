/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (payroll.yaml + PAYROLL_* environment)
  2. Apply command-line flag overrides
  3. Build the logger
  4. Resolve the formula set and legal parameters
  5. Open the SQLite store
  6. Start the suspension scheduler
  7. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PAYROLL_HTTP_PORT)
  -db      SQLite database path (overrides PAYROLL_DB_PATH)
           Use ":memory:" for an in-memory database
  -rules   JSON rules document (overrides PAYROLL_PAYROLL_RULES_FILE)

RULES RESOLUTION:
  A rules file wins. Otherwise PAYROLL_PAYROLL_FORMULA_VERSION selects the
  built-in formula set and the utility/vacation settings build the legal
  parameters (vacation_base_days 0 means the progressive schedule).

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests (http.shutdown_timeout)
  4. Close the database

EXAMPLES:
  ./server -db="./data/nomina.db"
  ./server -db=":memory:" -port=3000
  PAYROLL_APP_ENV=production PAYROLL_APP_LOG_LEVEL=warn ./server

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nomina/payroll-engine/api"
	"github.com/nomina/payroll-engine/config"
	"github.com/nomina/payroll-engine/factory"
	"github.com/nomina/payroll-engine/logger"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/severance"
	"github.com/nomina/payroll-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (0 keeps the configured value)")
	dbPath := flag.String("db", "", "SQLite database path")
	rulesFile := flag.String("rules", "", "JSON rules document")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("failed to load configuration")
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *rulesFile != "" {
		cfg.Payroll.RulesFile = *rulesFile
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	calc, err := buildCalculator(cfg.Payroll)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid payroll rules")
	}
	log.Info().
		Str("formula", calc.Formula.Version).
		Int("utility_days", calc.Params.UtilityDaysPerYear).
		Msg("payroll rules loaded")

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DB.Path).Msg("failed to initialize database")
	}
	defer store.Close()

	cycles := payroll.NewCycleService(store, calc, log.Component("payroll"))
	handler := api.NewHandler(store, cycles, log.Component("http"))
	router := api.NewRouter(handler, api.RouterOptions{CORSOrigins: cfg.HTTP.CORSOrigins})

	scheduler := api.NewSuspensionScheduler(store, log.Component("scheduler"))
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.CheckInterval = cfg.Scheduler.Interval
	scheduler.Start()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.App.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

// buildCalculator resolves the formula set and legal parameters.
func buildCalculator(pc config.PayrollConfig) (*payroll.Calculator, error) {
	if pc.RulesFile != "" {
		formula, params, err := factory.NewRulesFactory().ParseRulesFile(pc.RulesFile)
		if err != nil {
			return nil, err
		}
		return payroll.NewCalculator(formula, params)
	}

	formula, err := factory.FormulaByVersion(pc.FormulaVersion)
	if err != nil {
		return nil, err
	}
	var vacation *int
	if pc.VacationBaseDays != 0 {
		v := pc.VacationBaseDays
		vacation = &v
	}
	params, err := severance.NewParams(pc.UtilityDaysPerYear, vacation)
	if err != nil {
		return nil, err
	}
	return payroll.NewCalculator(formula, params)
}
