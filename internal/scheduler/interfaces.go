// Package scheduler contém os serviços agendados do cliente
package scheduler

import (
	"context"

	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
)

type SessionWatcher interface {
	Current() *domain.Session
	InvalidateToken(ctx context.Context, token, reason string) (bool, error)
}

type DashboardRefresher interface {
	Snapshot() dashboard.Snapshot
	Refresh(ctx context.Context) dashboard.FetchResult
}
