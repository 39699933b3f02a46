package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

//go:embed config.sample.toml
var setupFS embed.FS

var version = "dev"

func main() {
	var (
		configFilePath = flag.String("config", "config.toml", "path to config file")
		initApp        = flag.Bool("init", false, "app initialization, creates a config file in current dir")
		showVersion    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	switch {
	case *showVersion:
		fmt.Println(version)
	case *initApp:
		if err := writeSampleConfig("config.toml"); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("config.toml generated.")
	default:
		runApp(*configFilePath)
	}
}

func runApp(configFilePath string) {
	cfg, err := initConfig(configFilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal("error while initializing app", zap.Error(err))
	}

	srv := &http.Server{
		Handler:      app.Handler(),
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error while shutting down", zap.Error(err))
		}
	}()

	log.Info("starting server",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("upstream", cfg.UpstreamURL),
		zap.Int("links", len(app.Data.Links)))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("error while serving", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("bad log_level %q: %w", level, err)
	}
	return cfg.Build()
}

func writeSampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	sample, err := setupFS.Open("config.sample.toml")
	if err != nil {
		return err
	}
	defer sample.Close()

	if _, err := io.Copy(out, sample); err != nil {
		return err
	}

	return out.Close()
}
