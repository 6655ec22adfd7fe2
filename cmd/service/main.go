package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/mailadmin/internal/config"
	"github.com/dropDatabas3/mailadmin/internal/http/server"
	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
	store "github.com/dropDatabas3/mailadmin/internal/store"
	"github.com/dropDatabas3/mailadmin/internal/util"

	// Registra los adapters de storage (fs, postgres, s3) vía init()
	_ "github.com/dropDatabas3/mailadmin/internal/store/adapters/dal"
)

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml|.toml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "mailadmin"})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg, server.Options{})
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			lg.Warn("cleanup error", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("storage", cfg.Storage.Driver),
			logger.String("rate", cfg.Rate.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			lg.Error("http server failed", logger.Err(err))
		}
	case <-ctx.Done():
		lg.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("graceful shutdown failed", logger.Err(err))
	}
	lg.Info("bye")
}

func printConfigSummary(c *config.Config) {
	fmt.Printf(`app.env=%s
server.addr=%s cors=%v read=%s write=%s shutdown=%s
storage.driver=%s (registrados: %v) fs.path=%s dsn=%s s3.bucket=%s s3.key=%s s3.endpoint=%s cache_ttl=%s strict_reads=%v
smtp.timeout=%s smtp.lang=%s smtp.default_from_name=%q
rate.driver=%s rate.limit=%d rate.window=%s redis.addr=%s
log.level=%s
`,
		c.App.Env,
		c.Server.Addr, c.Server.CORSAllowedOrigins, c.Server.ReadTimeout, c.Server.WriteTimeout, c.Server.ShutdownTimeout,
		c.Storage.Driver, store.ListAdapters(), c.Storage.FS.Path, util.MaskDSN(c.Storage.DSN), c.Storage.S3.Bucket, c.Storage.S3.Key, c.Storage.S3.Endpoint,
		c.Storage.CacheTTL, c.Storage.StrictReads,
		c.SMTP.Timeout, c.SMTP.Lang, c.SMTP.DefaultFromName,
		c.Rate.Driver, c.Rate.Limit, c.Rate.Window, c.Rate.Redis.Addr,
		c.Log.Level,
	)
}
