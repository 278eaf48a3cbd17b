package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported by the controller.
const ServiceName = "wallcontroller"

// NewRouter builds the admin HTTP API. state may be nil.
func NewRouter(c Checks, state func() any) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Method(http.MethodGet, "/healthz", NewHealthHandler(c))
	r.Method(http.MethodGet, "/readyz", NewReadyHandler(c))
	if state != nil {
		r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, state())
		})
	}
	return r
}

// ServeHTTP runs the admin server until ctx is done.
func ServeHTTP(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("admin http listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// GRPC serves the standard gRPC health service, kept in sync with Checks.
type GRPC struct {
	checks Checks
	hs     *grpchealth.Server
	srv    *grpc.Server
	log    zerolog.Logger
}

func NewGRPC(c Checks, log zerolog.Logger) *GRPC {
	g := &GRPC{checks: c, hs: grpchealth.NewServer(), srv: grpc.NewServer(), log: log}
	healthpb.RegisterHealthServer(g.srv, g.hs)
	g.Update()
	return g
}

// Update publishes the current verdict to the health service.
func (g *GRPC) Update() {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if g.checks.Ready() {
		st = healthpb.HealthCheckResponse_SERVING
	}
	g.hs.SetServingStatus("", st)
	g.hs.SetServingStatus(ServiceName, st)
}

// Serve listens on addr and refreshes the status every interval until ctx
// is done.
func (g *GRPC) Serve(ctx context.Context, addr string, interval time.Duration) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return g.ServeListener(ctx, lis, interval)
}

func (g *GRPC) ServeListener(ctx context.Context, lis net.Listener, interval time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		g.log.Info().Str("addr", lis.Addr().String()).Msg("grpc health listening")
		errc <- g.srv.Serve(lis)
	}()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case err := <-errc:
			return err
		case <-t.C:
			g.Update()
		case <-ctx.Done():
			g.hs.Shutdown()
			g.srv.GracefulStop()
			return nil
		}
	}
}
