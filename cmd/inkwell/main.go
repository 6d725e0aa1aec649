package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strconv"
	"syscall"
	"time"

	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/api"
	"github.com/vibeworks/inkwell/datastore"
	"github.com/vibeworks/inkwell/db"
	"github.com/vibeworks/inkwell/integrations/prometheus"
	"github.com/vibeworks/inkwell/internal/config"
	"github.com/vibeworks/inkwell/sudoapi"
	"github.com/vibeworks/inkwell/sudoapi/flags"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	confPath = flag.String("config", "./config.toml", "Config path")
)

func main() {
	flag.Parse()

	slog.SetDefault(slog.New(inkwell.GetSlogHandler(false, os.Stderr)))
	if err := config.Load(*confPath); err != nil {
		slog.Error("Could not load config", slog.Any("err", err))
		os.Exit(1)
	}

	var logFile *lumberjack.Logger
	if config.C.Common.LogDir != "" {
		if err := os.MkdirAll(config.C.Common.LogDir, 0755); err != nil {
			slog.Error("Could not create log directory", slog.Any("err", err))
			os.Exit(1)
		}
		logFile = &lumberjack.Logger{
			Filename:   path.Join(config.C.Common.LogDir, "inkwell.log"),
			MaxSize:    100, // MB
			MaxBackups: 5,
			Compress:   true,
		}
		defer logFile.Close()
		slog.SetDefault(slog.New(inkwell.GetFanoutHandler(config.C.Common.Debug, os.Stderr, logFile)))
	} else {
		slog.SetDefault(slog.New(inkwell.GetSlogHandler(config.C.Common.Debug, os.Stderr)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("Server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting inkwell", slog.String("version", inkwell.Version))

	config.SetFlagsPath(config.C.Common.FlagsPath)
	if err := config.LoadFlags(ctx); err != nil {
		return fmt.Errorf("could not load flags: %w", err)
	}

	slog.InfoContext(ctx, "Connecting to database")
	pgDB, err := db.New(ctx, config.C.Database.DSN, config.C.Database.MaxConns)
	if err != nil {
		return err
	}
	defer pgDB.Close()

	var images inkwell.ImageStore
	if config.C.Storage.Endpoint != "" {
		store, err := datastore.NewImages(config.C.Storage)
		if err != nil {
			return fmt.Errorf("could not initialize image storage: %w", err)
		}
		images = store
	} else {
		slog.WarnContext(ctx, "No object storage configured, image uploads are disabled")
	}

	base, err := sudoapi.New(pgDB, images)
	if err != nil {
		return err
	}
	defer base.Close()

	server := &http.Server{
		Addr:              net.JoinHostPort(flags.ListenHost.Value(), strconv.Itoa(flags.ListenPort.Value())),
		Handler:           api.New(base, config.C.API).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.InfoContext(gctx, "Successfully started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return prometheus.Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
