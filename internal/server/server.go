// Package server accepts TCP connections and runs the line-protocol
// dispatch loop, one goroutine per connection. All workers share one store
// instance; the store's mutex is the only synchronization between them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emirk/academia/internal/app/services"
	"github.com/emirk/academia/internal/app/store"
	"github.com/emirk/academia/internal/config"
	"github.com/emirk/academia/internal/metrics"
	"github.com/emirk/academia/internal/pkg/apperrors"
	"github.com/emirk/academia/internal/pkg/filestorage"
)

// Server holds the state for the TCP portal server.
type Server struct {
	config   *config.Config
	store    *store.Store
	files    *filestorage.FlatFileStore
	auth     *services.AuthService
	listener net.Listener
	logger   zerolog.Logger
}

// New creates a new server instance from its collaborators.
func New(cfg *config.Config, dataStore *store.Store, files *filestorage.FlatFileStore, auth *services.AuthService, lgr zerolog.Logger) *Server {
	return &Server{
		config: cfg,
		store:  dataStore,
		files:  files,
		auth:   auth,
		logger: lgr,
	}
}

// Addr returns the bound listener address, available once Serve has started.
// Tests listen on port 0 and read the real port from here.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the TCP listener without accepting yet.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", ":"+s.config.Server.Port)
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}
	s.listener = listener
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Portal server listening")
	return nil
}

// Serve accepts connections until the context is cancelled. Each connection
// gets its own goroutine running the authenticate-then-dispatch loop.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		tcpConn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				if errClosed(err) {
					return nil
				}
				s.logger.Warn().Err(err).Msg("Error accepting connection")
				continue
			}
		}

		// One goroutine per connection with no upper bound: a stuck
		// client occupies its worker until it disconnects. Accepted
		// limitation of the thread-per-connection design.
		metrics.ConnectionsTotal.Inc()
		c := s.newConn(tcpConn)
		go c.serve(ctx)
	}
}

// Run starts the server and blocks until SIGINT/SIGTERM, then performs the
// final full save before returning.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- s.Serve(ctx)
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("error running server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, shutting down")
		cancel()
		<-serverErrors
	}

	if err := s.persist(); err != nil {
		s.logger.Error().Err(err).Msg("Final save failed")
		return err
	}
	s.logger.Info().Msg("Final save complete")
	return nil
}

func (s *Server) newConn(tcpConn net.Conn) *conn {
	connID := uuid.New().String()
	return &conn{
		server: s,
		conn:   tcpConn,
		logger: s.logger.With().Str("conn_id", connID).Str("remote", tcpConn.RemoteAddr().String()).Logger(),
	}
}

// persist writes the current store snapshot to the flat files. It is called
// after every mutating command and once more on shutdown, so an OK response
// to a mutation implies the mutation is durable.
func (s *Server) persist() error {
	users, courses, enrollments := s.store.Snapshot()

	start := time.Now()
	if err := s.files.Save(users, courses, enrollments); err != nil {
		return apperrors.NewCustomError(apperrors.ErrIOFailure, "failed to persist data: "+err.Error())
	}
	metrics.ObserveSave(time.Since(start))
	metrics.SetTableSizes(len(users), len(courses), len(enrollments))
	return nil
}

// errClosed reports whether err is the usual listener-closed error seen
// during shutdown.
func errClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
