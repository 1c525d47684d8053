package cli

import "errors"

var (
	errNoSession     = errors.New("nenhuma sessão ativa; execute metricsctl login")
	errExpired       = errors.New("sessão expirada; execute metricsctl login novamente")
	errInvalidOutput = errors.New("formato de saída inválido")
	errUsage         = errors.New("uso inválido")
)
