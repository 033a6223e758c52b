package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	challengeinadapter "detox/internal/modules/challenge/adapter/in"
	challengeoutadapter "detox/internal/modules/challenge/adapter/out"
	challengeservice "detox/internal/modules/challenge/service"
	challengeusecase "detox/internal/modules/challenge/usecase"
	profileinadapter "detox/internal/modules/profile/adapter/in"
	profileoutadapter "detox/internal/modules/profile/adapter/out"
	profileservice "detox/internal/modules/profile/service"
	profileusecase "detox/internal/modules/profile/usecase"
	recognizerinadapter "detox/internal/modules/recognizer/adapter/in"
	recognizeroutadapter "detox/internal/modules/recognizer/adapter/out"
	recognizerservice "detox/internal/modules/recognizer/service"
	recognizerusecase "detox/internal/modules/recognizer/usecase"
	usageinadapter "detox/internal/modules/usage/adapter/in"
	usageoutadapter "detox/internal/modules/usage/adapter/out"
	usageout "detox/internal/modules/usage/port/out"
	usageservice "detox/internal/modules/usage/service"
	usageusecase "detox/internal/modules/usage/usecase"
	"detox/internal/platform/clock"
	"detox/internal/platform/config"
	"detox/internal/platform/id"
	"detox/internal/platform/lock"
	"detox/internal/platform/logging"
	"detox/internal/platform/metrics"
	"detox/internal/platform/sqldb"
	"detox/internal/platform/tx"
	uiapp "detox/internal/ui/app"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config config.Config
	Logger hclog.Logger

	ProfileCLI    profileinadapter.CLIHandler
	UsageCLI      usageinadapter.CLIHandler
	ChallengeCLI  challengeinadapter.CLIHandler
	RecognizerCLI recognizerinadapter.CLIHandler

	profileHTTP   profileinadapter.HTTPHandler
	usageHTTP     usageinadapter.HTTPHandler
	challengeHTTP challengeinadapter.HTTPHandler
	registry      *prometheus.Registry

	db    *sqldb.DB
	redis *redis.Client
}

// Options carries the process level pieces that differ between the CLI and tests.
type Options struct {
	LogOutput io.Writer
	Clock     clock.Clock
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	ids := id.UUID{}
	logger := logging.New("detox", cfg.LogLevel, cfg.LogJSON, opts.LogOutput)

	db, err := sqldb.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var (
		locker      lock.Locker
		scans       usageout.ScanCache
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			_ = db.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		locker = lock.NewRedis(redisClient, ids)
		scans = usageoutadapter.NewRedisScanCache(redisClient)
	} else {
		locker = lock.NewLocal()
		scans = usageoutadapter.NewMemoryScanCache(clk)
	}
	txm := tx.NewSQLManager(db.DB)

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	recognizerUC := recognizerusecase.NewInteractor(recognizerservice.NewRecognizerService(
		recognizeroutadapter.NewFileManifestStore(cfg.RecognizerManifest),
		recognizeroutadapter.NewGRPCHost(logger),
	))

	engine := challengeservice.NewEngine(
		challengeoutadapter.NewSQLOutcomeStore(db, clk),
		challengeoutadapter.NewSQLLedger(db),
		locker,
		txm,
		clk,
		logger,
	)
	challengeUC := challengeusecase.NewInteractor(engine)

	usageSvc := usageservice.NewUsageService(
		clk,
		ids,
		usageoutadapter.NewSQLDailyLogStore(db),
		scans,
		usageoutadapter.NewRecognizerAdapter(recognizerUC),
		usageservice.Options{Location: cfg.Location, ScanTTL: cfg.ScanTTL, Logger: logger},
	)
	usageUC := usageusecase.NewInteractor(usageSvc, challengeUC, locker, txm)

	profileUC := profileusecase.NewInteractor(
		profileservice.NewProfileService(clk, profileoutadapter.NewSQLProfileStore(db)),
		usageUC,
		challengeUC,
		locker,
		txm,
	)

	return &App{
		Config:        cfg,
		Logger:        logger,
		ProfileCLI:    profileinadapter.NewCLIHandler(profileUC),
		UsageCLI:      usageinadapter.NewCLIHandler(usageUC),
		ChallengeCLI:  challengeinadapter.NewCLIHandler(challengeUC, usageUC),
		RecognizerCLI: recognizerinadapter.NewCLIHandler(recognizerUC),
		profileHTTP:   profileinadapter.NewHTTPHandler(profileUC),
		usageHTTP:     usageinadapter.NewHTTPHandler(usageUC),
		challengeHTTP: challengeinadapter.NewHTTPHandler(challengeUC, usageUC),
		registry:      registry,
		db:            db,
		redis:         redisClient,
	}, nil
}

// HTTP builds the echo server with every module's routes mounted at the root.
func (a *App) HTTP() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			a.Logger.Named("http").Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	root := e.Group("")
	a.profileHTTP.Register(root)
	a.usageHTTP.Register(root)
	a.challengeHTTP.Register(root)
	return e
}

func (a *App) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return a.db.Close()
}

// RunTUI opens the board for user on date, today when date is zero.
func RunTUI(app *App, user string, date time.Time) error {
	model := uiapp.NewModel(user, date, app.ChallengeCLI, app.ProfileCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
