package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/pkg/apiErrors"
)

type contextKey string

const (
	ContextKeySession contextKey = "session"
)

type SessionProvider interface {
	Current() *domain.Session
}

// SessionRequired bloqueia a rota enquanto não houver sessão ativa. O token
// não é validado aqui; quem decide é a API remota.
func SessionRequired(provider SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := provider.Current()
			if !current.Valid() {
				logrus.Warning("Tentativa de acesso sem sessão ativa")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Sessão inexistente", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, current)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext retorna a sessão colocada por SessionRequired
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(ContextKeySession).(*domain.Session)
	return s, ok
}
