package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pcadmin/core/database"
	"pcadmin/core/loader"
	"pcadmin/core/logger"
	"pcadmin/core/metrics"
	"pcadmin/core/middleware/auth"
	"pcadmin/feature/history"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricsPath = "/metrics"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status API",
	Long: `Starts the HTTP status API. It serves the run journal under /runs and
the metrics of this process under /metrics, both protected by the API key.

Sync counters are not served here: content and dns sync runs are separate
processes and push their counters to the Pushgateway configured with
METRICS_PUSHGATEWAY_URL.`,
	RunE: runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logg, err := setup()
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	// The journal is optional: without it /runs answers 503.
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		if !errors.Is(err, database.ErrDisabled) {
			logg.Warn("Optional database connection failed", zap.Error(err))
		}
	} else {
		db = conn
		logg.Info("Connected to run journal database")
	}

	m := metrics.New(cfg.Metrics).WithRuntime()
	app := newApp(cfg.Server.ApiKey, cfg.Server.PublicMetrics, m, logg)

	mgr := loader.NewManager()
	mgr.Register(history.NewFeature(db, logg))
	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return err
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		errCh <- app.Listen(cfg.Server.Address())
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sig:
	}

	logg.Info("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// newApp builds the fiber app with request logging, API key auth and the
// metrics endpoint. Features are loaded onto it by the caller.
func newApp(apiKey string, publicMetrics bool, m *metrics.Metrics, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRequestID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{
		ApiKey: apiKey,
		Next: func(c *fiber.Ctx) bool {
			return publicMetrics && c.Path() == metricsPath
		},
	}))

	app.Get(metricsPath, adaptor.HTTPHandler(m.Handler()))
	return app
}
