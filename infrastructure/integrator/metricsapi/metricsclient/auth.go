package metricsclient

import (
	"bytes"
	"context"
	"net/http"

	"github.com/pkg/errors"
	metricsdomain "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/domain"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
)

// Login troca credenciais pelo token de acesso
func (c *MetricsClient) Login(ctx context.Context, credentials domain.Credentials) (string, error) {
	payload, err := json.Marshal(metricsdomain.LoginRequest{
		Email:    credentials.Email,
		Password: credentials.Password,
	})
	if err != nil {
		return "", errors.Wrap(err, "erro ao codificar login")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var response metricsdomain.LoginResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, "erro ao decodificar resposta de login")
	}

	return response.AccessToken, nil
}

// CreateUser cadastra um novo usuário. Não exige autenticação.
func (c *MetricsClient) CreateUser(ctx context.Context, user domain.NewUser) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "erro ao codificar usuário")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/users", bytes.NewReader(payload))
	if err != nil {
		return err
	}

	_, err = c.do(req)
	return err
}
