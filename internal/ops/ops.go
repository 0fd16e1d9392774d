// Package ops exposes the operational HTTP surface: a health probe and the
// prometheus scrape endpoint. It is not part of the record-keeping protocol.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emirk/academia/internal/app/store"
	"github.com/emirk/academia/internal/metrics"
)

// newRouter builds the ops routes.
func newRouter(dataStore *store.Store) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		users, courses, enrollments := dataStore.Counts()
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"users":       users,
			"courses":     courses,
			"enrollments": enrollments,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	return router
}

// Start launches the ops endpoint on addr and shuts it down when ctx is
// cancelled. An empty addr disables the endpoint.
func Start(ctx context.Context, addr string, dataStore *store.Store, lgr zerolog.Logger) {
	if addr == "" {
		return
	}

	srv := &http.Server{Addr: addr, Handler: newRouter(dataStore)}

	go func() {
		lgr.Info().Str("addr", addr).Msg("Ops endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Error().Err(err).Msg("Ops endpoint failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()
}
