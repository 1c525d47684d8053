package dashboard

import (
	"context"
	"time"

	"github.com/vfg2006/metrics-dashboard/internal/domain"
)

// SessionProvider dá acesso de leitura à sessão e permite invalidá-la
type SessionProvider interface {
	Current() *domain.Session
	InvalidateToken(ctx context.Context, token, reason string) (bool, error)
}

type MetricsFetcher interface {
	GetMetrics(ctx context.Context, token string, query domain.MetricsQuery) (*domain.PageResult, error)
}

type FetchObserver interface {
	ObserveFetch(outcome string, d time.Duration)
}
