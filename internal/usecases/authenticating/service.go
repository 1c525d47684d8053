package authenticating

import (
	"context"
	"errors"
	"strings"

	metricsdomain "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/domain"
	"github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/metricsclient"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/pkg/apiErrors"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, username, email, password string) error
	SubmitRegistration(ctx context.Context, form *domain.RegistrationForm)
}

// SessionStore é o lado de escrita da sessão usado pelo login
type SessionStore interface {
	Set(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}

type Service struct {
	client   metricsclient.Client
	sessions SessionStore
}

func NewService(client metricsclient.Client, sessions SessionStore) Authenticator {
	return &Service{
		client:   client,
		sessions: sessions,
	}
}

// Login troca as credenciais por um token e inicia a sessão. Qualquer
// resposta fora de 2xx conta como credencial inválida.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	logger := log.ForContext(ctx)

	token, err := s.client.Login(ctx, domain.Credentials{
		Email:    handleEmail(email),
		Password: password,
	})
	if err != nil {
		var statusErr *metricsdomain.StatusError
		if errors.As(err, &statusErr) {
			logger.WithField("status_code", statusErr.StatusCode).Info("Login recusado")
			return nil, NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "")
		}

		logger.WithError(err).Error("Erro ao contatar serviço de autenticação")
		return nil, NewAuthError(ErrServiceUnavailable, apiErrors.ErrCommunication, err.Error())
	}

	info, err := DecodeToken(token)
	if err != nil {
		logger.WithError(err).Warn("Token recebido no login não pôde ser decodificado")
		return nil, NewAuthError(err, apiErrors.ErrInvalidToken, "")
	}

	session := domain.Session{Token: token, Role: info.Role}
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao salvar sessão")
	}

	return &session, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

func handleEmail(s string) string {
	return strings.TrimSpace(s)
}
