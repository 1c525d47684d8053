package dashboard

import "errors"

var (
	ErrPageOutOfRange = errors.New("página fora do intervalo")
	ErrUnknownColumn  = errors.New("coluna desconhecida")
	ErrInvalidDate    = errors.New("data inválida")
	ErrNoSession      = errors.New("nenhuma sessão ativa")
)

// IsValidationError indica erros de entrada, que não disparam busca
func IsValidationError(err error) bool {
	return errors.Is(err, ErrPageOutOfRange) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrInvalidDate)
}
