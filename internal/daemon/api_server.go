package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hirepay/internal/config"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
	}

	r := chi.NewRouter()
	r.Use(srv.requestLogger)
	r.Use(bearerAuth(cfg.Paths.APIToken))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", srv.handleStatus)

		r.Route("/procedures", func(r chi.Router) {
			r.Post("/", srv.handleCreateProcedure)
			r.Get("/", srv.handleListProcedures)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Get("/", srv.handleGetProcedure)
				r.Get("/documents", srv.handleListDocuments)
				r.Get("/documents/{docType}", srv.handleDocumentsByType)
				r.Get("/documents/{docType}/latest", srv.handleLatestDocument)
				r.Post("/documents/send", srv.handleSendDocument)
				r.Post("/documents/receive", srv.handleReceiveDocument)

				r.Post("/agreement/signed", srv.handleMarkAgreementSigned)
				r.Post("/payment-tax/submit", srv.handleMarkPaymentTaxSubmitted)
				r.Post("/payment-tax/review", srv.handleReviewPaymentTax)
				r.Post("/task-order/generate", srv.handleGenerateTaskOrder)
				r.Post("/task-order/generated", srv.handleMarkTaskOrderGenerated)
				r.Post("/task-order/accept", srv.handleAcceptTaskOrder)
				r.Post("/task-order/signed", srv.handleMarkTaskOrderSigned)
				r.Post("/archive", srv.handleArchive)
			})
		})

		r.Route("/documents/{id}", func(r chi.Router) {
			r.Get("/content", srv.handleDocumentContent)
			r.Post("/status", srv.handleUpdateDocumentStatus)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", srv.handleUpsertUser)
			r.Get("/{email}", srv.handleGetUser)
		})

		r.Route("/scopes", func(r chi.Router) {
			r.Post("/", srv.handleCreateScope)
			r.Get("/", srv.handleListScopes)
			r.Get("/dashboard", srv.handleScopeDashboard)
			r.Get("/pending", srv.handleScopesPendingReview)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Get("/", srv.handleGetScope)
				r.Put("/", srv.handleUpdateScope)
				r.Post("/submit", srv.handleSubmitScope)
				r.Post("/review", srv.handleReviewScope)
				r.Post("/complete", srv.handleCompleteScope)
			})
		})
	})

	srv.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", "address", listener.Addr().String())
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
