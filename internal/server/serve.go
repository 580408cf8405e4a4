package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/config"
	"github.com/ivlev/flyover/internal/flyover"
	"github.com/ivlev/flyover/internal/lifecycle"
	"github.com/ivlev/flyover/internal/scheduler"
	"github.com/ivlev/flyover/internal/surface"
)

// Serve runs a live flyover over center on addr until ctx is cancelled.
// The controller, its event loop and the websocket hub share ctx.
func Serve(ctx context.Context, addr string, center camera.Coordinate, tuning config.Controller, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	loop := scheduler.NewLoop(tuning.FPS)
	phases := lifecycle.NewBroadcaster(lifecycle.Active)
	bridge := NewBridge(loop, phases, tuning.Altitude)
	hub := NewHub(camera.InitialRegion(center), tuning.Backend, bridge, logger)

	actuator, err := surface.ForBackend(tuning.Backend, hub)
	if err != nil {
		return err
	}
	hub.SetSupports3D(surface.Supports3D(actuator))
	ctrl := flyover.Mount(actuator, loop, phases, center, tuning.Altitude, tuning.Options(logger))
	bridge.Attach(ctrl)

	srv := &http.Server{
		Addr:              addr,
		Handler:           hub.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(ctx)
		ctrl.Unmount()
		return err
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(func() error {
		logger.Printf("[*] Serving flyover on %s (backend %s)", addr, tuning.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
