// Command trajserve serves the trajectory store's debug pages: a SQL
// console, JSON listings and charts of trajectories and follow runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/holonomic/internal/db"
	"github.com/banshee-data/holonomic/internal/monitoring"
	"github.com/banshee-data/holonomic/internal/version"
)

var (
	listen      = flag.String("listen", "localhost:8080", "Listen address")
	dbPath      = flag.String("db", "trajectories.db", "Database path")
	migrateCmd  = flag.String("migrate", "", "Run a migration command and exit: up, down or version")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// newMux mounts the store's admin routes and a plain index redirect.
func newMux(store *db.DB) (*http.ServeMux, error) {
	mux := http.NewServeMux()
	if err := store.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/debug/", http.StatusFound)
	})
	return mux, nil
}

func runMigrate(store *db.DB, command string, out io.Writer) error {
	switch command {
	case "up":
		if err := store.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := store.MigrateDown(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate command %q: expected up, down or version", command)
	}

	v, dirty, err := store.MigrateVersion()
	if err != nil {
		return err
	}
	latest, err := db.LatestMigrationVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d (latest %d, dirty=%t)\n", v, latest, dirty)
	return nil
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, store *db.DB, addr string) error {
	mux, err := newMux(store)
	if err != nil {
		return err
	}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		monitoring.Logf("got request %q", r.URL.Path)
		mux.ServeHTTP(w, r)
	})
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("trajserve", version.String())
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if *migrateCmd != "" {
		if err := runMigrate(store, *migrateCmd, os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitoring.Logf("serving %s on http://%s/debug/", *dbPath, *listen)
	if err := serve(ctx, store, *listen); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
	monitoring.Logf("Graceful shutdown complete")
}
