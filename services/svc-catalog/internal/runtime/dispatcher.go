package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

type ServiceCtx struct {
	deps            *dependencies
	envFiles        []string
	extraOptions    []DependencyOption
	shutdownChannel chan os.Signal
	serverErrors    chan error
	serverCtx       context.Context
	serverStopFunc  context.CancelFunc
	serverReady     chan struct{}
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
		serverErrors:    make(chan error, 1),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run builds the dependencies, serves until a termination signal or a
// server failure, then shuts down gracefully.
func (c *ServiceCtx) Run() error {
	if err := c.build(); err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	c.startService()
	c.shutdownHook()

	var serveErr error

	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case serveErr = <-c.serverErrors:
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.shutdown()

	return serveErr
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.serverCtx, c.envFiles, c.extraOptions...)
	if err != nil {
		c.serverStopFunc()

		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() {
	server := c.deps.infra.httpServer

	c.deps.cleanupFuncs["http_server"] = server.Shutdown

	go func() {
		listener, err := net.Listen("tcp", server.Addr)
		if err != nil {
			c.serverErrors <- fmt.Errorf("failed to listen on %s: %w", server.Addr, err)

			return
		}

		c.deps.infra.logger.Info().
			Str("address", listener.Addr().String()).
			Str("version", c.deps.config.App.ServiceVersion).
			Msg("starting the http server")

		if c.serverReady != nil {
			close(c.serverReady)
		}

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.serverErrors <- fmt.Errorf("http server error: %w", err)
		}
	}()
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) shutdown() {
	c.deps.infra.logger.Info().Msg("shutting down service...")

	signal.Stop(c.shutdownChannel)

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.HTTPServer.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		defer close(done)

		c.cleanup(shutdownCtx)
	}()

	select {
	case <-done:
		c.deps.infra.logger.Info().Msg("service shutdown complete")
	case <-shutdownCtx.Done():
		c.deps.infra.logger.Error().Msg("graceful shutdown timed out.. forcing exit.")
	}
}

// WaitForServer blocks until the http server is listening.
// Instantiate the service with WithWaitingForServer to use it.
//
// Example:
//
//	srv := runtime.New(runtime.WithWaitingForServer())
//	go func() {
//		_ = srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

// cleanup stops accepting requests first, then releases the backends.
func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	c.deps.infra.logger.Info().Msg("cleaning up resources...")

	if stopServer, ok := c.deps.cleanupFuncs["http_server"]; ok {
		c.release(shutdownCtx, "http_server", stopServer)
	}

	for resource, cleanupFn := range c.deps.cleanupFuncs {
		if resource == "http_server" {
			continue
		}

		c.release(shutdownCtx, resource, cleanupFn)
	}

	c.deps.infra.logger.Info().Msg("cleanup completed")
}

func (c *ServiceCtx) release(ctx context.Context, resource string, cleanupFn func(context.Context) error) {
	if err := cleanupFn(ctx); err != nil {
		c.deps.infra.logger.Error().
			Err(err).
			Str("resource", resource).
			Msg("failed to shutdown the resource gracefully")
	}
}
