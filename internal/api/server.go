package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard/internal/api/handler"
	"github.com/vfg2006/metrics-dashboard/internal/api/handler/router"
	"github.com/vfg2006/metrics-dashboard/internal/config"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard/pkg/middleware"
)

// Dependencies reúne o que o gateway expõe por HTTP
type Dependencies struct {
	Authenticator authenticating.Authenticator
	Sessions      handler.SessionState
	Engine        handler.DashboardEngine
	Storage       handler.Pinger
	Telemetry     http.Handler
	Jobs          handler.JobServices
}

type Server struct {
	httpServer *http.Server
}

func New(config *config.Config, deps Dependencies) (*Server, error) {
	if deps.Authenticator == nil || deps.Sessions == nil || deps.Engine == nil {
		return nil, fmt.Errorf("api: autenticador, sessão e painel são obrigatórios")
	}

	upgrader := handler.NewUpgrader(config.Server.AllowedOrigins)

	routes := []router.ConfigRouter{
		router.WithRoutes(handler.Healthcheck(deps.Storage)...),
		router.WithRoutes(handler.Authentication(deps.Authenticator, deps.Sessions)...),
		router.WithRoutes(handler.Dashboard(deps.Engine, deps.Sessions, upgrader)...),
		router.WithRoutes(handler.Jobs(deps.Jobs, deps.Sessions)...),
	}
	if deps.Telemetry != nil {
		routes = append(routes, router.WithRoutes(handler.Telemetry(deps.Telemetry)...))
	}

	rt := router.New(routes...)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Server.AllowedOrigins),
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           alice.New(middlewares...).Then(rt),
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

// Handler expõe a cadeia completa, usada nos testes com httptest
func (s Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
