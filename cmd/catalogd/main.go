// catalogd serves a directory of plugin source artifacts as a catalog
// service. Artifacts dropped into the directory out of band are picked up by
// a filesystem watcher.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amapianolab/groovehost/pkg/catalog"
)

func main() {
	var (
		dir  = flag.String("dir", "./plugins", "plugin artifact directory")
		addr = flag.String("addr", ":8765", "listen address")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	store, err := catalog.Open(*dir, log)
	if err != nil {
		log.Error("open store", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := store.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("watcher stopped", "err", err)
		}
	}()

	srv := &http.Server{Addr: *addr, Handler: catalog.NewServer(store, log).Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("catalog listening", "addr", *addr, "dir", store.Dir())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve", "err", err)
		os.Exit(1)
	}
}
