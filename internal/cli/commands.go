package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/pkg/utils"
)

func runLogin(ctx context.Context, app *App, fs *pflag.FlagSet) error {
	email, _ := fs.GetString("email")

	s, err := app.auth.Login(ctx, email, password(fs))
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Sessão iniciada (papel: %s)\n", s.Role)
	return nil
}

func runRegister(ctx context.Context, app *App, fs *pflag.FlagSet) error {
	username, _ := fs.GetString("username")
	email, _ := fs.GetString("email")

	form := &domain.RegistrationForm{
		Username: username,
		Email:    email,
		Password: password(fs),
	}
	app.auth.SubmitRegistration(ctx, form)

	if form.Error != "" {
		return errors.New(form.Error)
	}

	fmt.Fprintln(app.out, form.Success)
	return nil
}

func runLogout(ctx context.Context, app *App, _ *pflag.FlagSet) error {
	if err := app.auth.Logout(ctx); err != nil {
		return errors.Wrap(err, "erro ao encerrar sessão")
	}

	fmt.Fprintln(app.out, "Sessão encerrada")
	return nil
}

func runWhoami(ctx context.Context, app *App, _ *pflag.FlagSet) error {
	if err := app.restore(ctx); err != nil {
		return err
	}

	current := app.manager.Current()
	fmt.Fprintf(app.out, "Papel: %s\n", current.Role)

	if info, err := authenticating.DecodeToken(current.Token); err == nil && info.ExpiresAt != nil {
		fmt.Fprintf(app.out, "Expira em: %s\n", info.ExpiresAt.Local().Format(time.DateTime))
	}

	columns := domain.ColumnsFor(current.Role)
	keys := make([]string, 0, len(columns))
	for _, c := range columns {
		keys = append(keys, c.Key)
	}
	fmt.Fprintf(app.out, "Colunas: %s\n", strings.Join(keys, ", "))

	return nil
}

// runMetrics monta a consulta a partir das flags e mostra uma página.
// Datas chegam no formato AAAA-MM-DD.
func runMetrics(ctx context.Context, app *App, fs *pflag.FlagSet) error {
	page, _ := fs.GetInt("page")
	sortBy, _ := fs.GetString("sort")
	order, _ := fs.GetString("order")
	start, _ := fs.GetString("start")
	end, _ := fs.GetString("end")
	output, _ := fs.GetString("output")

	switch output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: %q (use table, json ou yaml)", errInvalidOutput, output)
	}

	sortOrder := domain.SortOrder(order)
	if !sortOrder.Valid() {
		return fmt.Errorf("%w: ordem %q (use asc ou desc)", errUsage, order)
	}
	if page < 1 {
		return fmt.Errorf("%w: página deve ser maior que zero", errUsage)
	}

	startDisplay, err := flagDate(start)
	if err != nil {
		return err
	}
	endDisplay, err := flagDate(end)
	if err != nil {
		return err
	}

	if err := app.restore(ctx); err != nil {
		return err
	}

	if sortBy != "" && !domain.HasColumn(app.engine.Role(), sortBy) {
		return fmt.Errorf("%w: %q", dashboard.ErrUnknownColumn, sortBy)
	}

	app.engine.Seed(domain.QueryState{
		Page:      page,
		StartDate: startDisplay,
		EndDate:   endDisplay,
		SortField: sortBy,
		SortOrder: sortOrder,
	})

	res := app.engine.Load(ctx)
	if res.Outcome == dashboard.OutcomeUnauthorized {
		return errExpired
	}

	view := dashboard.BuildView(app.engine.Role(), app.engine.Snapshot())
	if err := Render(app.out, view, output); err != nil {
		return err
	}

	if res.Outcome == dashboard.OutcomeFailed {
		return errors.Wrap(res.Err, "erro ao buscar métricas")
	}

	return nil
}

func flagDate(wire string) (string, error) {
	if wire == "" {
		return "", nil
	}
	if _, err := utils.ParseDate(wire); err != nil {
		return "", fmt.Errorf("%w: %q (use AAAA-MM-DD)", dashboard.ErrInvalidDate, wire)
	}
	return utils.ToDisplay(wire), nil
}
