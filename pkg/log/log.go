package log

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Fields logrus.Fields

// Logger cobre apenas o que o cliente usa do logrus
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger

	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
}

type contextKey string

// CorrelationIDKey guarda no contexto o ID que acompanha uma requisição ou busca
const CorrelationIDKey contextKey = "correlation_id"

const correlationIDField = "correlation_id"

// Em desenvolvimento só estes campos (e os session_*) vão para a saída
var devFields = map[string]struct{}{
	correlationIDField: {},
	"method":           {},
	"path":             {},
	"status_code":      {},
	"duration_ms":      {},
	"error":            {},
	"seq":              {},
	"outcome":          {},
	"page":             {},
	"reason":           {},
}

type entryLogger struct {
	entry *logrus.Entry
}

// L é o logger base do processo
var L Logger = newEntryLogger()

func newEntryLogger() *entryLogger {
	return &entryLogger{entry: logrus.NewEntry(logrus.StandardLogger())}
}

// IsDevelopment vale para APP_ENV vazio, development ou dev
func IsDevelopment() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "dev":
		return true
	}
	return false
}

// SetupTestLogger deixa a saída curta e em nível debug
func SetupTestLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.DebugLevel)

	L = newEntryLogger()
}

func keepField(key string) bool {
	if _, ok := devFields[key]; ok {
		return true
	}
	return strings.HasPrefix(key, "session_")
}

func (l *entryLogger) with(entry *logrus.Entry) Logger {
	return &entryLogger{entry: entry}
}

func (l *entryLogger) WithField(key string, value any) Logger {
	if IsDevelopment() && !keepField(key) {
		return l
	}
	return l.with(l.entry.WithField(key, value))
}

func (l *entryLogger) WithFields(fields Fields) Logger {
	if !IsDevelopment() {
		return l.with(l.entry.WithFields(logrus.Fields(fields)))
	}

	kept := logrus.Fields{}
	for k, v := range fields {
		if keepField(k) {
			kept[k] = v
		}
	}
	if len(kept) == 0 {
		return l
	}
	return l.with(l.entry.WithFields(kept))
}

func (l *entryLogger) WithError(err error) Logger {
	return l.with(l.entry.WithError(err))
}

func (l *entryLogger) Debug(args ...any)                { l.entry.Debug(args...) }
func (l *entryLogger) Info(args ...any)                 { l.entry.Info(args...) }
func (l *entryLogger) Warn(args ...any)                 { l.entry.Warn(args...) }
func (l *entryLogger) Warnf(format string, args ...any) { l.entry.Warnf(format, args...) }
func (l *entryLogger) Error(args ...any)                { l.entry.Error(args...) }

// WithCorrelationID gera um ID novo e o coloca no contexto
func WithCorrelationID(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return ContextWithCorrelationID(ctx, id), id
}

// ContextWithCorrelationID usa um ID já conhecido, como o X-Request-ID recebido
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(CorrelationIDKey).(string)
	return id
}

// ForContext devolve L com o ID de correlação do contexto, quando houver
func ForContext(ctx context.Context) Logger {
	if id := GetCorrelationID(ctx); id != "" {
		return L.WithField(correlationIDField, id)
	}
	return L
}
