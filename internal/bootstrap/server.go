package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avemarin/clinicbook/api"
	"github.com/avemarin/clinicbook/config"
	"github.com/avemarin/clinicbook/internal/auth"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Appointments *api.AppointmentHandler
	Doctors      *api.DoctorHandler
	Reviews      *api.ReviewHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails. Shutdown drains in-flight requests with a deadline.
func Run(ctx context.Context, cfg *config.Config, verifier *auth.Verifier, handlers Handlers) error {
	router := NewRouter(verifier, handlers)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(verifier *auth.Verifier, handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	public := router.Group("/api")
	authed := router.Group("/api")
	authed.Use(auth.Middleware(verifier))

	handlers.Appointments.Register(public, authed)
	handlers.Doctors.Register(public, authed)
	handlers.Reviews.Register(public, authed)

	return router
}
