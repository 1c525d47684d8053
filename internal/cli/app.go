// Package cli implementa o metricsctl: login, cadastro e consulta de métricas
// pelo terminal, com a mesma sessão persistida do gateway.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/vfg2006/metrics-dashboard/infrastructure/database/sqlstore"
	"github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/metricsclient"
	"github.com/vfg2006/metrics-dashboard/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard/internal/config"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/session"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2

	passwordEnv = "METRICSCTL_PASSWORD"
)

type command struct {
	summary string
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, app *App, fs *pflag.FlagSet) error
}

var commands = map[string]command{
	"login": {
		summary: "inicia a sessão com email e senha",
		flags: func(fs *pflag.FlagSet) {
			fs.String("email", "", "Email da conta")
			fs.String("password", "", "Senha (ou "+passwordEnv+")")
		},
		run: runLogin,
	},
	"register": {
		summary: "cadastra um novo usuário com papel user",
		flags: func(fs *pflag.FlagSet) {
			fs.String("username", "", "Nome de usuário")
			fs.String("email", "", "Email da conta")
			fs.String("password", "", "Senha (ou "+passwordEnv+")")
		},
		run: runRegister,
	},
	"logout": {
		summary: "encerra a sessão local",
		flags:   func(*pflag.FlagSet) {},
		run:     runLogout,
	},
	"whoami": {
		summary: "mostra o papel e a validade da sessão",
		flags:   func(*pflag.FlagSet) {},
		run:     runWhoami,
	},
	"metrics": {
		summary: "consulta uma página de métricas",
		flags: func(fs *pflag.FlagSet) {
			fs.Int("page", 1, "Página")
			fs.String("sort", "", "Coluna de ordenação")
			fs.String("order", "asc", "Ordem: asc ou desc")
			fs.String("start", "", "Data inicial (AAAA-MM-DD)")
			fs.String("end", "", "Data final (AAAA-MM-DD)")
			fs.StringP("output", "o", OutputTable, "Saída: table, json ou yaml")
		},
		run: runMetrics,
	},
}

// App liga os casos de uso ao armazenamento da sessão
type App struct {
	conn    *sqlstore.Connection
	manager *session.Manager
	auth    authenticating.Authenticator
	engine  *dashboard.Engine
	out     io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	conn, err := sqlstore.NewConnection(ctx, cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao abrir armazenamento da sessão")
	}

	manager := session.NewManager(repository.NewSessionRepository(conn))
	client := metricsclient.NewClient(cfg.API)
	engine := dashboard.NewEngine(manager, client)
	manager.Subscribe(engine.OnSessionEvent)

	return &App{
		conn:    conn,
		manager: manager,
		auth:    authenticating.NewService(client, manager),
		engine:  engine,
		out:     out,
	}, nil
}

func (a *App) Close() error {
	return a.conn.Close()
}

// restore carrega a sessão persistida e falha se não houver
func (a *App) restore(ctx context.Context) error {
	restored, err := a.manager.Restore(ctx)
	if err != nil {
		return errors.Wrap(err, "erro ao ler sessão")
	}
	if restored == nil {
		return errNoSession
	}
	return nil
}

func globalFlags(fs *pflag.FlagSet) {
	fs.String("api-base-url", "", "URL base da API de métricas")
	fs.String("storage-driver", "", "Armazenamento da sessão: sqlite ou postgres")
	fs.String("storage-path", "", "Arquivo sqlite da sessão")
	fs.String("log-level", "", "Nível de log")
}

// Run executa um comando e devolve o código de saída
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return ExitUsage
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "comando desconhecido: %s\n\n", name)
		usage(stderr)
		return ExitUsage
	}

	fs := pflag.NewFlagSet("metricsctl "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	globalFlags(fs)
	cmd.flags(fs)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(stderr, "Erro:", err)
		return ExitError
	}

	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetOutput(stderr)

	app, err := newApp(ctx, cfg, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "Erro:", err)
		return ExitError
	}
	defer app.Close()

	if err := cmd.run(ctx, app, fs); err != nil {
		fmt.Fprintln(stderr, "Erro:", err)
		if errors.Is(err, errUsage) || errors.Is(err, errInvalidOutput) {
			return ExitUsage
		}
		return ExitError
	}

	return ExitOK
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("uso: metricsctl <comando> [flags]\n\ncomandos:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprint(w, b.String())
}

func password(fs *pflag.FlagSet) string {
	if p, _ := fs.GetString("password"); p != "" {
		return p
	}
	return os.Getenv(passwordEnv)
}
