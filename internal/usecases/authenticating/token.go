package authenticating

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
)

// TokenInfo é o que o cliente extrai do token sem verificar a assinatura
type TokenInfo struct {
	Role      domain.Role
	ExpiresAt *time.Time
}

// Expired indica se o token já passou do exp. Sem exp nunca expira.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// DecodeToken lê o payload do token sem verificar a assinatura. A claim role
// só controla a apresentação; quem autoriza é o servidor.
func DecodeToken(token string) (TokenInfo, error) {
	claims := &domain.TokenClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	// alg desconhecido não impede a leitura das claims
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return TokenInfo{}, fmt.Errorf("%w: papel %q desconhecido", ErrMalformedToken, claims.Role)
	}

	info := TokenInfo{Role: role}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}

	return info, nil
}
