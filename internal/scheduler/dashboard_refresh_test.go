package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/metrics-dashboard/internal/config"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard/mocks"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
	"go.uber.org/mock/gomock"
)

func init() {
	log.SetupTestLogger()
}

var activeSession = &domain.Session{Token: "tok", Role: domain.RoleUser}

func page(n int) *domain.PageResult {
	return &domain.PageResult{
		Rows:       []domain.MetricRow{},
		Pagination: domain.Pagination{Page: n, Pages: 3, Total: 40, PageSize: domain.DefaultPageSize},
	}
}

func TestDashboardRefreshService_RefreshDashboard(t *testing.T) {
	tests := []struct {
		name    string
		current *domain.Session
		loaded  bool
		wantRan bool
	}{
		{name: "Sem sessão não atualiza", current: nil, loaded: false, wantRan: false},
		{name: "Painel ainda não carregado não atualiza", current: activeSession, loaded: false, wantRan: false},
		{name: "Painel carregado repete a consulta", current: activeSession, loaded: true, wantRan: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sessions := mocks.NewMockSessionProvider(ctrl)
			fetcher := mocks.NewMockMetricsFetcher(ctrl)
			sessions.EXPECT().Current().Return(tt.current).AnyTimes()

			engine := dashboard.NewEngine(sessions, fetcher)

			if tt.loaded {
				fetcher.EXPECT().
					GetMetrics(gomock.Any(), "tok", domain.MetricsQuery{Page: 1, PageSize: domain.DefaultPageSize, Order: domain.SortAsc}).
					Return(page(1), nil)
				engine.Load(context.Background())
			}
			if tt.wantRan {
				fetcher.EXPECT().
					GetMetrics(gomock.Any(), "tok", domain.MetricsQuery{Page: 1, PageSize: domain.DefaultPageSize, Order: domain.SortAsc}).
					Return(page(1), nil)
			}

			service := NewDashboardRefreshService(engine, sessions, &config.Config{
				Refresh: config.Refresh{CronSchedule: "*/5 * * * *", Enabled: true},
			})

			ran := service.RefreshDashboard(context.Background())
			assert.Equal(t, tt.wantRan, ran)

			status := service.GetStatus()
			assert.Equal(t, false, status["sync_running"])
			if tt.wantRan {
				assert.Equal(t, dashboard.OutcomeLoaded, status["last_outcome"])
			}
		})
	}
}

func TestDashboardRefreshService_KeepsCurrentQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionProvider(ctrl)
	fetcher := mocks.NewMockMetricsFetcher(ctrl)
	sessions.EXPECT().Current().Return(activeSession).AnyTimes()

	engine := dashboard.NewEngine(sessions, fetcher)

	fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", gomock.Any()).Return(page(1), nil)
	engine.Load(context.Background())

	fetcher.EXPECT().
		GetMetrics(gomock.Any(), "tok", domain.MetricsQuery{Page: 2, PageSize: domain.DefaultPageSize, Order: domain.SortAsc}).
		Return(page(2), nil).
		Times(2)
	_, err := engine.GoToPage(context.Background(), 2)
	assert.NoError(t, err)

	service := NewDashboardRefreshService(engine, sessions, &config.Config{})
	assert.True(t, service.RefreshDashboard(context.Background()))
	assert.Equal(t, 2, engine.Snapshot().Query.Page)
}

func TestDashboardRefreshService_StartDisabled(t *testing.T) {
	service := NewDashboardRefreshService(nil, nil, &config.Config{
		Refresh: config.Refresh{Enabled: false},
	})

	assert.NoError(t, service.Start(context.Background()))
	assert.Equal(t, false, service.GetStatus()["sync_enabled"])
}

func TestDashboardRefreshService_StartInvalidCron(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := NewDashboardRefreshService(nil, nil, &config.Config{
		Refresh: config.Refresh{CronSchedule: "não é cron", Enabled: true},
	})

	assert.Error(t, service.Start(ctx))
}
