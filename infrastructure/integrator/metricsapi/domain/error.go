package metricsdomain

import (
	"fmt"
	"net/http"
)

// ErrorResponse é o corpo de erro da API de métricas
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StatusError representa uma resposta fora da faixa 2xx
type StatusError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("erro na resposta da API. Status: %d, Detalhe: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("erro na resposta da API. Status: %d, Corpo: %s", e.StatusCode, e.Body)
}

// IsUnauthorized indica que a sessão não é mais aceita pelo servidor
func (e *StatusError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}
