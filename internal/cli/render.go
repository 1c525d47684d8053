package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/pkg/utils"
	"gopkg.in/yaml.v3"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Render escreve a tela do painel no formato pedido
func Render(w io.Writer, view dashboard.View, format string) error {
	switch format {
	case OutputTable, "":
		return renderTable(w, view)
	case OutputJSON:
		out, err := utils.PrettyJson(view)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (use table, json ou yaml)", errInvalidOutput, format)
	}
}

func renderTable(w io.Writer, view dashboard.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	titles := make([]string, 0, len(view.Columns))
	for _, c := range view.Columns {
		titles = append(titles, c.Title)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	if view.Empty != nil {
		fmt.Fprintln(tw, view.Empty.Text)
	}
	for _, row := range view.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s (%d registros)\n", view.Pager.Label, view.Pager.Total)
	if view.Error != "" {
		fmt.Fprintf(w, "Erro: %s\n", view.Error)
	}

	return nil
}
