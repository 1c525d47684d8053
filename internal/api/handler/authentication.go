package handler

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard/pkg/apiErrors"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
	"github.com/vfg2006/metrics-dashboard/pkg/middleware"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse nunca inclui o token
type SessionResponse struct {
	Role      domain.Role     `json:"role"`
	Columns   []domain.Column `json:"columns"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

func newSessionResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		Role:    s.Role,
		Columns: domain.ColumnsFor(s.Role),
	}
	if info, err := authenticating.DecodeToken(s.Token); err == nil {
		resp.ExpiresAt = info.ExpiresAt
	}
	return resp
}

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		session, err := service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleLoginError(w, err)
			return
		}

		log.ForContext(r.Context()).WithField("session_role", session.Role).Info("Login realizado")
		writeJSON(w, http.StatusOK, newSessionResponse(session))
	}
}

// Register cadastra sempre com o papel user. O formulário volta na resposta
// para que a tela mantenha os campos em caso de falha.
func Register(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		form := &domain.RegistrationForm{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		}
		service.SubmitRegistration(r.Context(), form)

		if form.Error != "" {
			apiErrors.WriteError(w, apiErrors.ErrRegistrationRejected, form.Error, form)
			return
		}

		writeJSON(w, http.StatusCreated, form)
	}
}

func Logout(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := service.Logout(r.Context()); err != nil {
			logrus.WithError(err).Error("Erro ao encerrar sessão")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao encerrar sessão", nil)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSession retorna o papel e as colunas da sessão ativa
func GetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Sessão inexistente", nil)
			return
		}

		writeJSON(w, http.StatusOK, newSessionResponse(session))
	}
}

// handleLoginError usa o código do AuthError quando existir e uma mensagem
// fixa por tipo de erro, sem repassar detalhes internos.
func handleLoginError(w http.ResponseWriter, err error) {
	code := apiErrors.ErrInternalServer
	msg := "Erro interno ao realizar login"

	switch {
	case errors.Is(err, authenticating.ErrInvalidCredentials):
		code, msg = apiErrors.ErrInvalidCredentials, "Credenciais inválidas"
	case errors.Is(err, authenticating.ErrMissingRequiredData):
		code, msg = apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios"
	case errors.Is(err, authenticating.ErrMalformedToken):
		code, msg = apiErrors.ErrInvalidToken, "Token recebido é inválido"
	case errors.Is(err, authenticating.ErrServiceUnavailable):
		code, msg = apiErrors.ErrCommunication, "Serviço de autenticação indisponível"
	}

	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) && authErr.Code != "" {
		code = authErr.Code
		if code == apiErrors.ErrDatabaseOperation {
			msg = authErr.Details
		}
	}

	apiErrors.WriteError(w, code, msg, nil)
}
