package metricsclient

import (
	"context"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	metricsdomain "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/domain"
	"github.com/vfg2006/metrics-dashboard/internal/config"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
	"github.com/vfg2006/metrics-dashboard/pkg/utils"
)

const requestIDHeader = "X-Request-ID"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client interface {
	Login(ctx context.Context, credentials domain.Credentials) (string, error)
	CreateUser(ctx context.Context, user domain.NewUser) error
	GetMetrics(ctx context.Context, token string, query domain.MetricsQuery) (*domain.PageResult, error)
	HandleResponse(resp *http.Response) ([]byte, error)
}

type MetricsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.API) Client {
	return &MetricsClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *MetricsClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar a requisição")
	}

	requestID := log.GetCorrelationID(ctx)
	if requestID == "" {
		requestID = utils.GenerateRequestID()
	}

	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *MetricsClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao executar a requisição")
	}
	defer resp.Body.Close()

	return c.HandleResponse(resp)
}

// HandleResponse lê o corpo e converte respostas fora de 2xx em *metricsdomain.StatusError
func (c *MetricsClient) HandleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao ler resposta")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	statusErr := &metricsdomain.StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}

	var errorResp metricsdomain.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err == nil {
		statusErr.Detail = errorResp.Detail
	}

	return nil, statusErr
}
