package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	characters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	requestIDLength = 12
)

// GenerateRequestID gera o identificador enviado em X-Request-ID
func GenerateRequestID() string {
	id, err := gonanoid.Generate(characters, requestIDLength)
	if err != nil {
		return "unknown"
	}
	return id
}
