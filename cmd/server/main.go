package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdt-generator/backend/internal/api"
	"github.com/mdt-generator/backend/internal/config"
	"github.com/mdt-generator/backend/internal/fetch"
	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/rules"
	"github.com/mdt-generator/backend/internal/storage"
	"github.com/mdt-generator/backend/internal/viserio"
	"github.com/mdt-generator/backend/internal/wcl"
	"github.com/mdt-generator/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	defaultConfig := os.Getenv("MDTGEN_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "mdtgen.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		fmt.Printf("Invalid log level: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to create directories: %v", err)
	}

	// Initialize storage
	store, err := storage.Open(cfg.Storage.Driver, cfg.GetDatabasePath())
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	ruleset, err := rules.LoadOrDefault(cfg.Conversion.RulesetFile)
	if err != nil {
		logger.Fatal("Failed to load ruleset: %v", err)
	}
	aliases, classes, spells := ruleset.Counts()
	logger.Info("[Rules] Loaded %d aliases, %d spell classes, %d spells", aliases, classes, spells)

	wclClient := wcl.NewClient(wcl.Config{
		APIURL:         cfg.WarcraftLogs.APIURL,
		TokenURL:       cfg.WarcraftLogs.TokenURL,
		ClientID:       cfg.WarcraftLogs.ClientID,
		ClientSecret:   cfg.WarcraftLogs.ClientSecret,
		Token:          cfg.WarcraftLogs.Token,
		TokenExpires:   cfg.WarcraftLogs.TokenExpires,
		Timeout:        cfg.WarcraftLogs.Timeout,
		MaxPages:       cfg.WarcraftLogs.MaxPages,
		PageLimit:      cfg.WarcraftLogs.PageLimit,
		MaxRetries:     cfg.WarcraftLogs.MaxRetries,
		RetryDelayBase: cfg.WarcraftLogs.RetryDelayBase,
	})

	// Initialize fetch job manager
	fetchMgr := fetch.NewManager(wclClient, store, ruleset, fetch.Options{
		MaxPages:      cfg.WarcraftLogs.MaxPages,
		GroupWindow:   cfg.Conversion.GroupWindowSeconds,
		FilterEnabled: cfg.Conversion.FilterEnabled,
	})

	// Start background job cleanup
	go func() {
		ticker := time.NewTicker(cfg.Jobs.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := fetchMgr.CleanupOldJobs(cfg.Jobs.MaxAge); n > 0 {
				logger.Debug("[FetchJob] Cleaned up %d finished jobs", n)
			}
		}
	}()

	handlers := api.NewHandlers(&api.Dependencies{
		Store:        store,
		Ruleset:      ruleset,
		Encoder:      viserio.NewEncoder(ruleset, nil),
		WarcraftLogs: wclClient,
		FetchMgr:     fetchMgr,
		Convert: api.ConvertOptions{
			GroupWindow:   cfg.Conversion.GroupWindowSeconds,
			FilterEnabled: cfg.Conversion.FilterEnabled,
		},
		ClientConfig: api.ClientConfig{
			DBMode:             cfg.Storage.Mode,
			BasePath:           cfg.Server.BasePath,
			GroupWindowSeconds: cfg.Conversion.GroupWindowSeconds,
			FilterEnabled:      cfg.Conversion.FilterEnabled,
		},
		Version: Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger.Get()
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Server.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return api.IsStreamPath(path) || strings.HasSuffix(path, "/api/health")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	if cfg.Server.ReadTimeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: cfg.Server.ReadTimeout,
			Skipper: func(c echo.Context) bool {
				return api.IsStreamPath(c.Request().URL.Path) ||
					c.Request().Header.Get("Accept") == "text/event-stream"
			},
			ErrorMessage: "Request timeout",
		}))
	}

	// Compression middleware
	if cfg.Server.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Skipper: func(c echo.Context) bool {
				return api.IsStreamPath(c.Request().URL.Path) ||
					c.Request().Header.Get("Accept") == "text/event-stream"
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	api.RegisterRoutes(e, cfg.Server.BasePath, handlers)

	// Serve the browser UI if configured
	uiMode := "API only"
	if cfg.Server.StaticDir != "" {
		staticFS, err := web.GetFileSystem(cfg.Server.StaticDir)
		switch {
		case err != nil:
			logger.Warn("[Web] Static directory unavailable: %v", err)
		case !web.HasIndex(staticFS):
			logger.Warn("[Web] No index.html in %s, UI disabled", cfg.Server.StaticDir)
		default:
			web.RegisterStaticRoutes(e, cfg.Server.BasePath, staticFS)
			uiMode = "API + UI"
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           MDT Generator Server                            ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", uiMode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr()+cfg.Server.BasePath)
	fmt.Printf("║  Storage:   %-46s║\n", cfg.Storage.Driver+" ("+cfg.Storage.Mode+")")
	fmt.Printf("║  Database:  %-46s║\n", cfg.GetDatabasePath())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("[Server] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("[Server] Shutdown: %v", err)
	}
	fetchMgr.Shutdown()
}
