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
	"time"

	"github.com/hailam/draughts/internal/server"
	"github.com/hailam/draughts/internal/storage"
)

var (
	addr       = flag.String("addr", "127.0.0.1:8080", "listen address")
	configPath = flag.String("config", "", "settings JSON file (default: stored settings)")
	dbDir      = flag.String("db", "", "database directory (default: platform data directory)")
	noDB       = flag.Bool("nodb", false, "do not record finished games")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var store *storage.Storage
	if !*noDB {
		var err error
		if *dbDir != "" {
			store, err = storage.Open(*dbDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			log.Printf("[server] database not opened: %v (games will not be recorded)", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	settings, err := storage.ResolveSettings(*configPath, store)
	if err != nil {
		return fmt.Errorf("could not load settings: %w", err)
	}
	if settings.Bot.WhiteBotLevel > server.MaxBotLevel || settings.Bot.BlackBotLevel > server.MaxBotLevel {
		return fmt.Errorf("bot levels above %d are not served", server.MaxBotLevel)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.New(settings, store),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("[server] listening on %s", *addr)
	select {
	case <-sigCtx.Done():
		log.Printf("[server] shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			log.Printf("[server] server error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[server] graceful shutdown failed: %v", err)
		srv.Close()
	}
	return nil
}
