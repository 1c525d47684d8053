package dashboard

import (
	"fmt"

	"github.com/vfg2006/metrics-dashboard/internal/domain"
)

const EmptyText = "Sem dados"

type HeaderCell struct {
	Key    string `json:"key" yaml:"key"`
	Label  string `json:"label" yaml:"label"`
	Title  string `json:"title" yaml:"title"`
	Active bool   `json:"active" yaml:"active"`
}

type EmptyRow struct {
	Text    string `json:"text" yaml:"text"`
	Colspan int    `json:"colspan" yaml:"colspan"`
}

type Pager struct {
	Page        int    `json:"page" yaml:"page"`
	Pages       int    `json:"pages" yaml:"pages"`
	Total       int    `json:"total" yaml:"total"`
	PrevEnabled bool   `json:"prev_enabled" yaml:"prev_enabled"`
	NextEnabled bool   `json:"next_enabled" yaml:"next_enabled"`
	Label       string `json:"label" yaml:"label"`
}

// View é o modelo de tela do painel, pronto para ser desenhado
type View struct {
	State    State             `json:"state" yaml:"state"`
	Role     domain.Role       `json:"role" yaml:"role"`
	Columns  []HeaderCell      `json:"columns" yaml:"columns"`
	Rows     [][]string        `json:"rows" yaml:"rows"`
	Empty    *EmptyRow         `json:"empty,omitempty" yaml:"empty,omitempty"`
	Pager    Pager             `json:"pager" yaml:"pager"`
	Query    domain.QueryState `json:"query" yaml:"query"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
	CanRetry bool              `json:"can_retry" yaml:"can_retry"`
}

// BuildView deriva a tela a partir do papel e do estado. As mesmas colunas
// são usadas no cabeçalho e em todas as linhas.
func BuildView(role domain.Role, snap Snapshot) View {
	columns := domain.ColumnsFor(role)

	header := make([]HeaderCell, 0, len(columns))
	for _, c := range columns {
		cell := HeaderCell{Key: c.Key, Label: c.Label, Title: c.Label}
		if snap.Query.SortField == c.Key {
			cell.Active = true
			cell.Title = c.Label + sortIndicator(snap.Query.SortOrder)
		}
		header = append(header, cell)
	}

	rows := make([][]string, 0, len(snap.Result.Rows))
	for _, row := range snap.Result.Rows {
		cells := make([]string, 0, len(columns))
		for _, c := range columns {
			cells = append(cells, c.Cell(row))
		}
		rows = append(rows, cells)
	}

	view := View{
		State:   snap.State,
		Role:    role,
		Columns: header,
		Rows:    rows,
		Pager:   buildPager(snap),
		Query:   snap.Query,
	}

	if len(rows) == 0 {
		view.Empty = &EmptyRow{Text: EmptyText, Colspan: len(columns)}
	}

	if snap.Err != nil {
		view.Error = snap.Err.Error()
		view.CanRetry = true
	}

	return view
}

// buildPager usa a página devolvida pelo servidor. Depois de uma troca de
// página que falhou, continua mostrando a página das linhas exibidas.
func buildPager(snap Snapshot) Pager {
	page := confirmedPage(snap.Loaded, snap.Result.Pagination, snap.Query.Page)
	pages := snap.Result.Pagination.Pages

	return Pager{
		Page:        page,
		Pages:       pages,
		Total:       snap.Result.Pagination.Total,
		PrevEnabled: page > 1,
		NextEnabled: page < pages,
		Label:       fmt.Sprintf("Página %d de %d", page, max(pages, 1)),
	}
}

func sortIndicator(order domain.SortOrder) string {
	if order == domain.SortDesc {
		return " ↓"
	}
	return " ↑"
}
