package domain

// MetricRow é uma linha de /metrics. CostMicros só vem para administradores.
type MetricRow struct {
	Date         string   `json:"date" yaml:"date"`
	AccountID    int64    `json:"account_id" yaml:"account_id"`
	CampaignID   int64    `json:"campaign_id" yaml:"campaign_id"`
	Impressions  float64  `json:"impressions" yaml:"impressions"`
	Clicks       float64  `json:"clicks" yaml:"clicks"`
	Conversions  float64  `json:"conversions" yaml:"conversions"`
	Interactions float64  `json:"interactions" yaml:"interactions"`
	CostMicros   *float64 `json:"cost_micros,omitempty" yaml:"cost_micros,omitempty"`
}

type Pagination struct {
	Page     int `json:"page" yaml:"page"`
	Pages    int `json:"pages" yaml:"pages"`
	Total    int `json:"total" yaml:"total"`
	PageSize int `json:"page_size" yaml:"page_size"`
}

// PageResult é sempre substituído por inteiro a cada busca bem-sucedida
type PageResult struct {
	Rows       []MetricRow `json:"data" yaml:"data"`
	Pagination Pagination  `json:"pagination" yaml:"pagination"`
}

// EmptyPageResult é o estado inicial antes da primeira busca
func EmptyPageResult() PageResult {
	return PageResult{
		Rows:       []MetricRow{},
		Pagination: Pagination{Page: 1, Pages: 1, Total: 0, PageSize: DefaultPageSize},
	}
}

// MetricsQuery são os parâmetros enviados a /metrics, já no formato de transmissão
type MetricsQuery struct {
	Page      int
	PageSize  int
	StartDate string
	EndDate   string
	SortBy    string
	Order     SortOrder
}
