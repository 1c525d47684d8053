package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricsdomain "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/domain"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard/mocks"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/session"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
	"go.uber.org/mock/gomock"
)

func init() {
	log.SetupTestLogger()
}

var userSession = &domain.Session{Token: "tok", Role: domain.RoleUser}

func pageResult(page, pages, total int, rows ...domain.MetricRow) *domain.PageResult {
	if rows == nil {
		rows = []domain.MetricRow{}
	}
	return &domain.PageResult{
		Rows:       rows,
		Pagination: domain.Pagination{Page: page, Pages: pages, Total: total, PageSize: domain.DefaultPageSize},
	}
}

func query(page int) domain.MetricsQuery {
	return domain.MetricsQuery{Page: page, PageSize: domain.DefaultPageSize, Order: domain.SortAsc}
}

type fixture struct {
	sessions *mocks.MockSessionProvider
	fetcher  *mocks.MockMetricsFetcher
	engine   *Engine
}

func newFixture(t *testing.T, current *domain.Session) fixture {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionProvider(ctrl)
	fetcher := mocks.NewMockMetricsFetcher(ctrl)

	sessions.EXPECT().Current().Return(current).AnyTimes()

	return fixture{
		sessions: sessions,
		fetcher:  fetcher,
		engine:   NewEngine(sessions, fetcher),
	}
}

// loadPages deixa o painel carregado com o total de páginas informado
func (f fixture) loadPages(t *testing.T, pages int) {
	t.Helper()
	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(1)).Return(pageResult(1, pages, pages*15), nil)
	require.Equal(t, OutcomeLoaded, f.engine.Load(context.Background()).Outcome)
}

func TestEngine_InitialState(t *testing.T) {
	f := newFixture(t, userSession)

	snap := f.engine.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, domain.NewQueryState(), snap.Query)
	assert.Empty(t, snap.Result.Rows)
	assert.False(t, snap.Loaded)
}

func TestEngine_LoadWithoutSession(t *testing.T) {
	f := newFixture(t, nil)

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	res := f.engine.Load(context.Background())
	assert.Equal(t, OutcomeUnauthorized, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNoSession)
	assert.Equal(t, StateUnauthorized, f.engine.Snapshot().State)
}

func TestEngine_LoadSuccess(t *testing.T) {
	f := newFixture(t, userSession)

	row := domain.MetricRow{Date: "2024-03-01 00:00:00", AccountID: 1, Clicks: 3}
	f.fetcher.EXPECT().
		GetMetrics(gomock.Any(), "tok", query(1)).
		Return(pageResult(1, 2, 16, row), nil)

	res := f.engine.Load(context.Background())
	require.Equal(t, OutcomeLoaded, res.Outcome)
	assert.NoError(t, res.Err)

	snap := f.engine.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.True(t, snap.Loaded)
	assert.Equal(t, []domain.MetricRow{row}, snap.Result.Rows)
	assert.Equal(t, 2, snap.Result.Pagination.Pages)
}

func TestEngine_UnauthorizedInvalidatesSession(t *testing.T) {
	f := newFixture(t, userSession)

	f.fetcher.EXPECT().
		GetMetrics(gomock.Any(), "tok", gomock.Any()).
		Return(nil, &metricsdomain.StatusError{StatusCode: http.StatusUnauthorized})
	f.sessions.EXPECT().InvalidateToken(gomock.Any(), "tok", session.ReasonUnauthorized).Return(true, nil)

	res := f.engine.Load(context.Background())
	assert.Equal(t, OutcomeUnauthorized, res.Outcome)
	assert.Equal(t, StateUnauthorized, f.engine.Snapshot().State)
}

func TestEngine_UnauthorizedForReplacedSession(t *testing.T) {
	f := newFixture(t, userSession)

	f.fetcher.EXPECT().
		GetMetrics(gomock.Any(), "tok", gomock.Any()).
		Return(nil, &metricsdomain.StatusError{StatusCode: http.StatusUnauthorized})
	// a sessão do token recusado já foi trocada
	f.sessions.EXPECT().InvalidateToken(gomock.Any(), "tok", session.ReasonUnauthorized).Return(false, nil)

	res := f.engine.Load(context.Background())
	assert.Equal(t, OutcomeUnauthorized, res.Outcome)
	assert.Error(t, res.Err)
}

func TestEngine_FailureKeepsRows(t *testing.T) {
	f := newFixture(t, userSession)

	row := domain.MetricRow{Date: "2024-03-01", AccountID: 1}
	gomock.InOrder(
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(1)).Return(pageResult(1, 1, 1, row), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(1)).
			Return(nil, &metricsdomain.StatusError{StatusCode: http.StatusInternalServerError}),
	)
	f.sessions.EXPECT().InvalidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	require.Equal(t, OutcomeLoaded, f.engine.Load(context.Background()).Outcome)

	res := f.engine.Refresh(context.Background())
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)

	snap := f.engine.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Error(t, snap.Err)
	assert.Equal(t, []domain.MetricRow{row}, snap.Result.Rows)
}

func TestEngine_TransportFailureIsNotUnauthorized(t *testing.T) {
	f := newFixture(t, userSession)

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
	f.sessions.EXPECT().InvalidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	assert.Equal(t, OutcomeFailed, f.engine.Load(context.Background()).Outcome)
}

func TestEngine_GoToPageBounds(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 3)
	ctx := context.Background()

	_, err := f.engine.GoToPage(ctx, 0)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = f.engine.GoToPage(ctx, 4)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(3)).Return(pageResult(3, 3, 45), nil)

	res, err := f.engine.GoToPage(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLoaded, res.Outcome)
	assert.Equal(t, 3, f.engine.Snapshot().Query.Page)

	_, err = f.engine.NextPage(ctx)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestEngine_GoToPageWithNoPages(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 0)

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(1)).Return(pageResult(1, 0, 0), nil)

	_, err := f.engine.GoToPage(context.Background(), 1)
	assert.NoError(t, err)

	_, err = f.engine.GoToPage(context.Background(), 2)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestEngine_PrevNextPage(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 2)
	ctx := context.Background()

	_, err := f.engine.PrevPage(ctx)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	gomock.InOrder(
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(2)).Return(pageResult(2, 2, 30), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(1)).Return(pageResult(1, 2, 30), nil),
	)

	_, err = f.engine.NextPage(ctx)
	require.NoError(t, err)
	_, err = f.engine.PrevPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.engine.Snapshot().Query.Page)
}

func TestEngine_PageReconciledWithServer(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 3)

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(3)).Return(pageResult(2, 2, 30), nil)

	_, err := f.engine.GoToPage(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, f.engine.Snapshot().Query.Page)
}

func TestEngine_FailedPageChangeKeepsConfirmedPage(t *testing.T) {
	f := newFixture(t, userSession)
	ctx := context.Background()

	row := domain.MetricRow{Date: "2024-03-01 00:00:00", AccountID: 1}
	gomock.InOrder(
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(1)).Return(pageResult(1, 3, 45, row), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(2)).Return(nil, errors.New("boom")),
		// nova tentativa repete a página pedida
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(2)).Return(pageResult(2, 3, 45), nil),
	)
	f.sessions.EXPECT().InvalidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	require.Equal(t, OutcomeLoaded, f.engine.Load(ctx).Outcome)

	res, err := f.engine.GoToPage(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, res.Outcome)

	view := BuildView(domain.RoleUser, f.engine.Snapshot())
	assert.Equal(t, 1, view.Pager.Page)
	assert.Equal(t, "Página 1 de 3", view.Pager.Label)
	assert.False(t, view.Pager.PrevEnabled)
	assert.True(t, view.Pager.NextEnabled)
	assert.Equal(t, [][]string{{"01/03/2024", "1", "0", "0", "0", "0", "0"}}, view.Rows)
	assert.True(t, view.CanRetry)

	// anterior a partir da página confirmada continua fora do intervalo
	_, err = f.engine.PrevPage(ctx)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	require.Equal(t, OutcomeLoaded, f.engine.Retry(ctx).Outcome)
	assert.Equal(t, 2, BuildView(domain.RoleUser, f.engine.Snapshot()).Pager.Page)
}

func TestEngine_PagingKeepsSortAndDates(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 3)
	ctx := context.Background()

	filtered := func(page int) domain.MetricsQuery {
		q := query(page)
		q.SortBy = domain.ColumnClicks
		q.Order = domain.SortAsc
		q.StartDate = "2024-03-01"
		q.EndDate = "2024-03-31"
		return q
	}
	sortedOnly := query(1)
	sortedOnly.SortBy = domain.ColumnClicks
	sortedOnly.Order = domain.SortAsc

	gomock.InOrder(
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", sortedOnly).Return(pageResult(1, 3, 45), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", filtered(1)).Return(pageResult(1, 3, 45), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", filtered(2)).Return(pageResult(2, 3, 45), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", filtered(3)).Return(pageResult(3, 3, 45), nil),
	)

	_, err := f.engine.ClickColumn(ctx, domain.ColumnClicks)
	require.NoError(t, err)
	_, err = f.engine.SetDateRange(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	_, err = f.engine.GoToPage(ctx, 2)
	require.NoError(t, err)
	_, err = f.engine.NextPage(ctx)
	require.NoError(t, err)

	q := f.engine.Snapshot().Query
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, domain.ColumnClicks, q.SortField)
	assert.Equal(t, domain.SortAsc, q.SortOrder)
	assert.Equal(t, "01/03/2024", q.StartDate)
	assert.Equal(t, "31/03/2024", q.EndDate)
}

func TestEngine_ClickColumn(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 5)
	ctx := context.Background()

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(3)).Return(pageResult(3, 5, 75), nil)
	_, err := f.engine.GoToPage(ctx, 3)
	require.NoError(t, err)

	sorted := func(field string, order domain.SortOrder) domain.MetricsQuery {
		q := query(1)
		q.SortBy = field
		q.Order = order
		return q
	}

	gomock.InOrder(
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", sorted(domain.ColumnClicks, domain.SortAsc)).Return(pageResult(1, 5, 75), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", sorted(domain.ColumnClicks, domain.SortDesc)).Return(pageResult(1, 5, 75), nil),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", sorted(domain.ColumnDate, domain.SortAsc)).Return(pageResult(1, 5, 75), nil),
	)

	_, err = f.engine.ClickColumn(ctx, domain.ColumnClicks)
	require.NoError(t, err)
	_, err = f.engine.ClickColumn(ctx, domain.ColumnClicks)
	require.NoError(t, err)
	_, err = f.engine.ClickColumn(ctx, domain.ColumnDate)
	require.NoError(t, err)

	q := f.engine.Snapshot().Query
	assert.Equal(t, domain.ColumnDate, q.SortField)
	assert.Equal(t, domain.SortAsc, q.SortOrder)
	assert.Equal(t, 1, q.Page)
}

func TestEngine_ClickColumnCostRequiresAdmin(t *testing.T) {
	f := newFixture(t, userSession)

	_, err := f.engine.ClickColumn(context.Background(), domain.ColumnCostMicros)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = f.engine.ClickColumn(context.Background(), "revenue")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	admin := newFixture(t, &domain.Session{Token: "tok", Role: domain.RoleAdmin})
	admin.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", gomock.Any()).Return(pageResult(1, 1, 1), nil)

	_, err = admin.engine.ClickColumn(context.Background(), domain.ColumnCostMicros)
	assert.NoError(t, err)
}

func TestEngine_ToggleOrderResetsPage(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 4)
	ctx := context.Background()

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(2)).Return(pageResult(2, 4, 60), nil)
	_, err := f.engine.GoToPage(ctx, 2)
	require.NoError(t, err)

	toggled := query(1)
	toggled.Order = domain.SortDesc
	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", toggled).Return(pageResult(1, 4, 60), nil)
	f.engine.ToggleOrder(ctx)

	q := f.engine.Snapshot().Query
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, domain.SortDesc, q.SortOrder)
}

func TestEngine_DateFilter(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 4)
	ctx := context.Background()

	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", query(2)).Return(pageResult(2, 4, 60), nil)
	_, err := f.engine.GoToPage(ctx, 2)
	require.NoError(t, err)

	expected := query(1)
	expected.StartDate = "2024-03-01"
	expected.EndDate = "2024-03-31"
	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", expected).Return(pageResult(1, 1, 10), nil)

	_, err = f.engine.SetDateRange(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	q := f.engine.Snapshot().Query
	assert.Equal(t, "01/03/2024", q.StartDate)
	assert.Equal(t, "31/03/2024", q.EndDate)
	assert.Equal(t, 1, q.Page)

	// limpar a data inicial mantém a final
	expected.StartDate = ""
	f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", expected).Return(pageResult(1, 1, 10), nil)

	_, err = f.engine.SetStartDate(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, f.engine.Snapshot().Query.StartDate)
}

func TestEngine_InvalidDate(t *testing.T) {
	f := newFixture(t, userSession)
	f.fetcher.EXPECT().GetMetrics(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := f.engine.SetEndDate(context.Background(), "31/03/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.True(t, IsValidationError(err))

	_, err = f.engine.SetDateRange(context.Background(), "2024-03-01", "2024-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEngine_StaleCompletionDiscarded(t *testing.T) {
	f := newFixture(t, userSession)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	late := domain.MetricRow{AccountID: 1}
	fresh := domain.MetricRow{AccountID: 2}

	gomock.InOrder(
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ string, _ domain.MetricsQuery) (*domain.PageResult, error) {
				close(started)
				<-release
				// a resposta chega mesmo depois do cancelamento
				assert.Error(t, ctx.Err())
				return pageResult(1, 1, 1, late), nil
			}),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", gomock.Any()).Return(pageResult(1, 1, 1, fresh), nil),
	)

	var wg sync.WaitGroup
	var first FetchResult

	wg.Add(1)
	go func() {
		defer wg.Done()
		first = f.engine.Load(ctx)
	}()

	<-started
	second := f.engine.Refresh(ctx)
	close(release)
	wg.Wait()

	assert.Equal(t, OutcomeStale, first.Outcome)
	assert.Equal(t, OutcomeLoaded, second.Outcome)
	assert.Greater(t, second.Seq, first.Seq)
	assert.Equal(t, []domain.MetricRow{fresh}, f.engine.Snapshot().Result.Rows)
}

func TestEngine_StaleUnauthorizedIgnored(t *testing.T) {
	f := newFixture(t, userSession)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	gomock.InOrder(
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", gomock.Any()).
			DoAndReturn(func(context.Context, string, domain.MetricsQuery) (*domain.PageResult, error) {
				close(started)
				<-release
				return nil, &metricsdomain.StatusError{StatusCode: http.StatusUnauthorized}
			}),
		f.fetcher.EXPECT().GetMetrics(gomock.Any(), "tok", gomock.Any()).Return(pageResult(1, 1, 0), nil),
	)
	f.sessions.EXPECT().InvalidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	done := make(chan FetchResult)
	go func() { done <- f.engine.Load(ctx) }()

	<-started
	f.engine.Refresh(ctx)
	close(release)

	assert.Equal(t, OutcomeStale, (<-done).Outcome)
	assert.Equal(t, StateLoaded, f.engine.Snapshot().State)
}

func TestEngine_SeedAndReset(t *testing.T) {
	f := newFixture(t, userSession)

	f.engine.Seed(domain.QueryState{Page: 0, PageSize: 100, SortField: domain.ColumnClicks, SortOrder: "x"})

	q := f.engine.Snapshot().Query
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, domain.DefaultPageSize, q.PageSize)
	assert.Equal(t, domain.SortAsc, q.SortOrder)
	assert.Equal(t, domain.ColumnClicks, q.SortField)

	f.loadPages(t, 1)

	f.engine.Reset()
	snap := f.engine.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, domain.NewQueryState(), snap.Query)
	assert.False(t, snap.Loaded)
}

func TestEngine_OnSessionEvent(t *testing.T) {
	f := newFixture(t, userSession)
	f.loadPages(t, 2)

	f.engine.OnSessionEvent(session.Event{Type: session.EventInvalidated, Reason: session.ReasonExpired})
	assert.Equal(t, StateUnauthorized, f.engine.Snapshot().State)

	f.engine.OnSessionEvent(session.Event{Type: session.EventStarted})
	assert.Equal(t, StateIdle, f.engine.Snapshot().State)
	assert.Empty(t, f.engine.Snapshot().Result.Rows)
}

func TestEngine_Subscribe(t *testing.T) {
	f := newFixture(t, userSession)

	var states []State
	unsubscribe := f.engine.Subscribe(func(s Snapshot) { states = append(states, s.State) })

	f.loadPages(t, 1)
	unsubscribe()
	f.engine.Reset()

	assert.Equal(t, []State{StateFetching, StateLoaded}, states)
}

func TestEngine_Observer(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionProvider(ctrl)
	fetcher := mocks.NewMockMetricsFetcher(ctrl)
	observer := mocks.NewMockFetchObserver(ctrl)

	sessions.EXPECT().Current().Return(userSession).AnyTimes()
	fetcher.EXPECT().GetMetrics(gomock.Any(), gomock.Any(), gomock.Any()).Return(pageResult(1, 1, 0), nil)
	observer.EXPECT().ObserveFetch(string(OutcomeLoaded), gomock.Any())

	engine := NewEngine(sessions, fetcher, WithObserver(observer))
	engine.Load(context.Background())
}
