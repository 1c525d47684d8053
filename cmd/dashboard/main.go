package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/vfg2006/metrics-dashboard/infrastructure/database/sqlstore"
	"github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/metricsclient"
	"github.com/vfg2006/metrics-dashboard/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard/internal/api"
	"github.com/vfg2006/metrics-dashboard/internal/api/handler"
	"github.com/vfg2006/metrics-dashboard/internal/config"
	"github.com/vfg2006/metrics-dashboard/internal/scheduler"
	"github.com/vfg2006/metrics-dashboard/internal/telemetry"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/session"
)

func main() {
	configureLogger()

	flags := pflag.NewFlagSet("dashboard", pflag.ExitOnError)
	flags.String("host", "", "Endereço de escuta do gateway")
	flags.String("port", "", "Porta do gateway")
	flags.String("api-base-url", "", "URL base da API de métricas")
	flags.String("storage-driver", "", "Armazenamento da sessão: sqlite ou postgres")
	flags.String("storage-path", "", "Arquivo sqlite da sessão")
	flags.String("log-level", "", "Nível de log")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := storageConn(ctx, cfg.Storage)
	defer conn.Close()

	metrics := telemetry.New()

	manager := session.NewManager(repository.NewSessionRepository(conn))
	client := metricsclient.NewClient(cfg.API)
	authenticator := authenticating.NewService(client, manager)
	engine := dashboard.NewEngine(manager, client, dashboard.WithObserver(metrics))

	manager.Subscribe(engine.OnSessionEvent)
	manager.Subscribe(func(event session.Event) {
		if event.Type == session.EventInvalidated {
			metrics.SessionInvalidated(event.Reason)
		}
	})

	restored, err := manager.Restore(ctx)
	if err != nil {
		logrus.WithError(err).Error("Erro ao restaurar sessão persistida")
	} else if restored != nil {
		logrus.WithField("session_role", restored.Role).Info("Sessão restaurada")
	}

	refreshService := scheduler.NewDashboardRefreshService(engine, manager, cfg)
	expiryService := scheduler.NewSessionExpiryService(manager, cfg)

	if err := refreshService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar a atualização automática do painel")
	}

	if err := expiryService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar a verificação de expiração de sessão")
	}

	server, err := api.New(cfg, api.Dependencies{
		Authenticator: authenticator,
		Sessions:      manager,
		Engine:        engine,
		Storage:       conn,
		Telemetry:     metrics.Handler(),
		Jobs: handler.JobServices{
			DashboardRefresh: refreshService,
			SessionExpiry:    expiryService,
		},
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func storageConn(ctx context.Context, storage config.Storage) *sqlstore.Connection {
	conn, err := sqlstore.NewConnection(ctx, storage)
	if err != nil {
		logrus.WithError(err).WithField("driver", storage.Driver).Fatal("Erro ao abrir armazenamento da sessão")
	}

	logrus.WithField("driver", storage.Driver).Info("Armazenamento da sessão pronto")
	return conn
}
