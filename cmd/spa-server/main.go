package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/serenity/spa/internal/config"
	"github.com/serenity/spa/internal/domain/analytics"
	"github.com/serenity/spa/internal/domain/booking"
	"github.com/serenity/spa/internal/domain/category"
	"github.com/serenity/spa/internal/domain/customer"
	"github.com/serenity/spa/internal/domain/packages"
	"github.com/serenity/spa/internal/domain/tax"
	"github.com/serenity/spa/internal/domain/therapist"
	"github.com/serenity/spa/internal/events"
	"github.com/serenity/spa/internal/platform/auth"
	"github.com/serenity/spa/internal/platform/clock"
	"github.com/serenity/spa/internal/platform/db"
	"github.com/serenity/spa/internal/platform/middleware"
	"github.com/serenity/spa/internal/platform/payments"
	"github.com/serenity/spa/internal/scheduler"
	"github.com/serenity/spa/migrations"
)

// PackageResolverAdapter adapts the catalog's package service to the
// booking.PackageResolver interface, avoiding a circular import between the
// booking and packages packages.
type PackageResolverAdapter struct {
	svc *packages.Service
}

// NewPackageResolverAdapter creates a new adapter.
func NewPackageResolverAdapter(svc *packages.Service) *PackageResolverAdapter {
	return &PackageResolverAdapter{svc: svc}
}

// ResolvePackage implements booking.PackageResolver.
func (a *PackageResolverAdapter) ResolvePackage(ctx context.Context, id uuid.UUID) (*booking.PackageInfo, error) {
	pkg, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &booking.PackageInfo{
		ID:              pkg.ID,
		Name:            pkg.Name,
		PriceCents:      pkg.PriceCents,
		DurationMinutes: pkg.DurationMinutes,
		Active:          pkg.Active,
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "spa-server",
		Short: "Spa booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			migrator := db.NewMigrator(cfg.DatabaseURL, migrations.FS)
			count, err := migrator.Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			migrator := db.NewMigrator(cfg.DatabaseURL, migrations.FS)
			statuses, err := migrator.Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "SOURCE", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Source, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if name == "" || email == "" || password == "" {
				return fmt.Errorf("--name, --email and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := customer.NewService(customer.NewRepoPG(pool))
			admin, err := svc.CreateAdmin(ctx, name, email, password)
			if err != nil {
				return err
			}

			fmt.Printf("Admin account created: %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Display name")
	createCmd.Flags().String("email", "", "Login email")
	createCmd.Flags().String("password", "", "Initial password")

	cmd.AddCommand(createCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Session store. Redis keeps sessions across restarts and instances; the
	// in-memory store is a single-node dev fallback.
	var sessionStore auth.SessionStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		sessionStore = auth.NewRedisSessionStore(client)
		logger.Info().Msg("connected to redis")
	} else {
		sessionStore = auth.NewMemorySessionStore()
		logger.Warn().Msg("REDIS_URL not set; sessions are in-memory and will not survive restarts")
	}

	signer := auth.NewTokenSigner([]byte(cfg.SessionSecret))
	sessions := auth.NewManager(signer, sessionStore, cfg.SessionTTL, cfg.IsProduction())

	// Payments
	var charger payments.Charger
	if cfg.StripeSecretKey != "" {
		charger = payments.NewStripeCharger(cfg.StripeSecretKey)
		logger.Info().Msg("stripe payments enabled")
	} else {
		charger = payments.NewDisabled()
		logger.Warn().Msg("STRIPE_SECRET_KEY not set; checkout will not create payment intents")
	}

	// Event stream
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka publisher")
		}
		publisher = kp
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka events enabled")
	} else {
		publisher = events.NewNopPublisher()
	}
	defer publisher.Close()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(sessions.Middleware())

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// -- Register domain handlers --

	// Catalog
	categorySvc := category.NewService(category.NewRepoPG(pool))
	category.NewHandler(categorySvc).RegisterRoutes(apiV1)

	packageSvc := packages.NewService(packages.NewRepoPG(pool))
	packages.NewHandler(packageSvc).RegisterRoutes(apiV1)

	// Taxes
	taxSvc := tax.NewService(tax.NewRepoPG(pool))
	tax.NewHandler(taxSvc).RegisterRoutes(apiV1)

	// Accounts
	customerSvc := customer.NewService(customer.NewRepoPG(pool))
	customer.NewHandler(customerSvc, sessions).RegisterRoutes(apiV1)

	// Bookings. Checkout runs inside a transaction so the slot conflict
	// check and the insert are atomic.
	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	bookingSvc := booking.NewService(
		booking.NewRepoPG(pool),
		NewPackageResolverAdapter(packageSvc),
		taxSvc,
		charger,
		publisher,
		clock.NewSystem(),
		cfg.Currency,
		runTx,
	)
	booking.NewHandler(bookingSvc, cfg.CheckoutNext).RegisterRoutes(apiV1)

	// Therapists. The booking service doubles as the availability checker.
	therapistSvc := therapist.NewService(therapist.NewRepoPG(pool))
	therapist.NewHandler(therapistSvc, bookingSvc).RegisterRoutes(apiV1)

	// Back-office analytics
	analyticsSvc := analytics.NewService(analytics.NewRepoPG(pool))
	analytics.NewHandler(analyticsSvc).RegisterRoutes(apiV1)

	// Completion sweeper marks confirmed bookings whose sessions have ended.
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	defer sweepCancel()
	go scheduler.New(bookingSvc, cfg.SweepInterval).Run(sweepCtx)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// httpErrorHandler renders every error as {"error": message}. Domain
// sentinels that reach this point unmapped get their HTTP status here so
// handlers can return them raw.
func httpErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				message = m
			case error:
				message = m.Error()
			default:
				message = fmt.Sprintf("%v", m)
			}
		case errors.Is(err, booking.ErrSlotUnavailable):
			code = http.StatusConflict
			message = err.Error()
		case errors.Is(err, booking.ErrInvalidTimeFormat),
			errors.Is(err, booking.ErrInvalidDate),
			errors.Is(err, booking.ErrInvalidDuration):
			code = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, booking.ErrNotFound):
			code = http.StatusNotFound
			message = err.Error()
		}

		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]string{"error": message})
	}
}
