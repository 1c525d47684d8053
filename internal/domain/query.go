package domain

import "github.com/vfg2006/metrics-dashboard/pkg/utils"

const DefaultPageSize = 15

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// QueryState guarda paginação, ordenação e filtro de datas do painel.
// As datas ficam no formato de exibição (DD/MM/YYYY).
type QueryState struct {
	Page      int       `json:"page" yaml:"page"`
	PageSize  int       `json:"page_size" yaml:"page_size"`
	StartDate string    `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	SortField string    `json:"sort_by,omitempty" yaml:"sort_by,omitempty"`
	SortOrder SortOrder `json:"order" yaml:"order"`
}

func NewQueryState() QueryState {
	return QueryState{
		Page:      1,
		PageSize:  DefaultPageSize,
		SortOrder: SortAsc,
	}
}

// ToMetricsQuery converte o estado nos parâmetros de /metrics. Parâmetros sem
// valor ficam vazios e são omitidos pelo cliente. A ordem sempre tem valor.
func (q QueryState) ToMetricsQuery() MetricsQuery {
	query := MetricsQuery{
		Page:      q.Page,
		PageSize:  q.PageSize,
		StartDate: utils.ToWire(q.StartDate),
		EndDate:   utils.ToWire(q.EndDate),
		SortBy:    q.SortField,
		Order:     q.SortOrder,
	}

	return query
}
