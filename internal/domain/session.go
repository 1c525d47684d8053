package domain

import "github.com/golang-jwt/jwt/v5"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Session é a credencial ativa do cliente. O papel vem da claim "role" do
// token, decodificada sem verificar a assinatura, e serve apenas para
// apresentação: autorização de verdade fica com o servidor.
type Session struct {
	Token string `json:"-"`
	Role  Role   `json:"role"`
}

func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.Role.Valid()
}

// TokenClaims é o payload do token emitido por /login
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
