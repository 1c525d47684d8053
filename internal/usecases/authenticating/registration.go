package authenticating

import (
	"context"
	"errors"

	metricsdomain "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/domain"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
)

// Register cria um usuário comum. Não altera a sessão.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	err := s.client.CreateUser(ctx, domain.NewUser{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleUser,
	})
	if err == nil {
		return nil
	}

	message := RegistrationFailureMessage

	var statusErr *metricsdomain.StatusError
	if errors.As(err, &statusErr) && statusErr.Detail != "" {
		message = statusErr.Detail
	}

	log.ForContext(ctx).WithError(err).Info("Cadastro recusado")

	return &ValidationError{Message: message, Err: err}
}

// SubmitRegistration aplica o resultado do cadastro ao formulário
func (s *Service) SubmitRegistration(ctx context.Context, form *domain.RegistrationForm) {
	form.Success = ""
	form.Error = ""

	err := s.Register(ctx, form.Username, form.Email, form.Password)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			form.Error = validationErr.Message
		} else {
			form.Error = RegistrationFailureMessage
		}
		return
	}

	form.Clear()
	form.Success = RegistrationSuccessMessage
}
