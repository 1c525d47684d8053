package metricsclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
)

// GetMetrics busca uma página de métricas. Parâmetros vazios não são enviados.
func (c *MetricsClient) GetMetrics(ctx context.Context, token string, query domain.MetricsQuery) (*domain.PageResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/metrics", nil)
	if err != nil {
		return nil, err
	}

	req.URL.RawQuery = EncodeMetricsQuery(query).Encode()
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var response domain.PageResult
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar métricas")
	}

	if response.Rows == nil {
		response.Rows = []domain.MetricRow{}
	}

	return &response, nil
}

func EncodeMetricsQuery(query domain.MetricsQuery) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("page_size", strconv.Itoa(query.PageSize))

	if query.StartDate != "" {
		params.Set("start_date", query.StartDate)
	}
	if query.EndDate != "" {
		params.Set("end_date", query.EndDate)
	}
	if query.SortBy != "" {
		params.Set("sort_by", query.SortBy)
	}
	if query.Order != "" {
		params.Set("order", string(query.Order))
	}

	return params
}
