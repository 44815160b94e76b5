package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leap-ai/ozone/internal/server"
	"github.com/leap-ai/ozone/internal/service"
	"github.com/leap-ai/ozone/internal/store"
	"github.com/leap-ai/ozone/internal/telemetry"
)

const banner = `
  ___ _____  ___  _  _ ___
 / _ \_  / |/ _ \| \| | __|
| (_) / /| | (_) | .  | _|
 \___/___|_|\___/|_|\_|___|
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Ozone API server",
		Long:  "Start the HTTP server that exposes the data gateway and the site API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	logLevel := slog.LevelInfo
	if dev || viper.GetString("log.level") == "debug" {
		logLevel = slog.LevelDebug
	}
	var logger *slog.Logger
	if viper.GetString("log.format") == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	}

	ctx := context.Background()

	// 1. Open the store: external database when configured, SQLite otherwise.
	st, err := openConfiguredStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store initialized", "driver", st.Driver())

	// 2. Services.
	jwtSecret := viper.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		jwtSecret = "ozone-dev-secret-change-me"
		logger.Warn("auth.jwt_secret not set, using insecure development default")
	}
	keySvc := service.NewKeyService(st)
	authSvc := service.NewAuthService(st, jwtSecret)

	// 3. First-run check.
	hasAccount, err := st.HasAnyAccount(ctx)
	if err != nil {
		logger.Warn("failed to check for accounts", "error", err)
	}
	if !hasAccount {
		logger.Warn("no account found - run: ozone account create")
	}

	// 4. Telemetry heartbeat.
	tracker := telemetry.New(ctx, st, telemetryProps(st))
	if tracker != nil {
		telemetry.PrintNotice()
		tracker.Start()
		defer tracker.Shutdown()
	}

	// 5. Build and start the HTTP server.
	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	if origins := viper.GetStringSlice("server.cors.allowed_origins"); len(origins) > 0 {
		srvCfg.CORSOrigins = origins
	}
	if limit := viper.GetInt("rate_limit.public_per_minute"); limit > 0 {
		srvCfg.PublicRateLimit = limit
		srvCfg.PublicRateWin = time.Minute
	}

	srv := server.New(srvCfg, st, keySvc, authSvc, logger)

	if err := writePID(os.Getpid()); err != nil {
		logger.Warn("failed to write PID file", "error", err)
	}
	defer removePID()

	fmt.Printf("→ Ozone %s\n", versionString())
	fmt.Printf("→ Gateway:    http://%s:%d/v1/\n", host, port)
	fmt.Printf("→ Site API:   http://%s:%d/api/v1/\n", host, port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", host, port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}

// openConfiguredStore opens the store described by db.driver/db.dsn, or the
// local SQLite store when no external database is configured.
func openConfiguredStore() (*store.Store, error) {
	driver := viper.GetString("db.driver")
	dsn := viper.GetString("db.dsn")
	if driver != "" && driver != "sqlite" {
		return store.Open(driver, dsn)
	}
	return store.NewStore(resolveDataDir())
}

// telemetryProps returns the flush callback that snapshots store counts.
func telemetryProps(st *store.Store) telemetry.PropertiesFunc {
	return func() telemetry.Properties {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		accounts, _ := st.CountAccounts(ctx)
		keys, _ := st.CountAPIKeys(ctx)
		models, _ := st.CountModels(ctx)
		benchmarks, _ := st.CountBenchmarkResults(ctx)
		subscribers, _ := st.CountSubscribers(ctx)

		return telemetry.Properties{
			Version:     appVersion,
			GoVersion:   runtime.Version(),
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			Driver:      st.Driver(),
			Accounts:    accounts,
			APIKeys:     keys,
			Models:      models,
			Benchmarks:  benchmarks,
			Subscribers: subscribers,
		}
	}
}
