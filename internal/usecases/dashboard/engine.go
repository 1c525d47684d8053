package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	metricsdomain "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/domain"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/session"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
	"github.com/vfg2006/metrics-dashboard/pkg/utils"
)

type State string

const (
	StateIdle         State = "idle"
	StateFetching     State = "fetching"
	StateLoaded       State = "loaded"
	StateUnauthorized State = "unauthorized"
)

type Outcome string

const (
	OutcomeLoaded       Outcome = "loaded"
	OutcomeStale        Outcome = "stale"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeFailed       Outcome = "failed"
)

// FetchResult descreve como terminou uma busca. Result é o resultado em vigor
// após a busca, que em falhas continua sendo o anterior.
type FetchResult struct {
	Seq     uint64
	Outcome Outcome
	Result  domain.PageResult
	Err     error
}

type Snapshot struct {
	State  State
	Query  domain.QueryState
	Result domain.PageResult
	Err    error
	Loaded bool
	Seq    uint64
}

type Listener func(Snapshot)

type Option func(*Engine)

func WithObserver(observer FetchObserver) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// Engine mantém o estado de consulta do painel. Só a busca mais recente
// pode alterar o resultado: cada nova busca cancela a anterior e respostas
// atrasadas são descartadas.
type Engine struct {
	sessions SessionProvider
	fetcher  MetricsFetcher
	observer FetchObserver

	mu         sync.Mutex
	state      State
	query      domain.QueryState
	result     domain.PageResult
	lastErr    error
	loadedOnce bool
	seq        uint64
	cancel     context.CancelFunc

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

func NewEngine(sessions SessionProvider, fetcher MetricsFetcher, opts ...Option) *Engine {
	e := &Engine{
		sessions:  sessions,
		fetcher:   fetcher,
		state:     StateIdle,
		query:     domain.NewQueryState(),
		result:    domain.EmptyPageResult(),
		listeners: make(map[int]Listener),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Load faz a primeira busca com o estado atual
func (e *Engine) Load(ctx context.Context) FetchResult {
	return e.fetch(ctx)
}

// Refresh repete a consulta atual
func (e *Engine) Refresh(ctx context.Context) FetchResult {
	return e.fetch(ctx)
}

// Retry repete a consulta após uma falha
func (e *Engine) Retry(ctx context.Context) FetchResult {
	return e.fetch(ctx)
}

// GoToPage muda apenas a página; os demais filtros são mantidos
func (e *Engine) GoToPage(ctx context.Context, page int) (FetchResult, error) {
	e.mu.Lock()
	pages := max(e.result.Pagination.Pages, 1)
	if page < 1 || page > pages {
		e.mu.Unlock()
		return FetchResult{}, ErrPageOutOfRange
	}
	e.query.Page = page
	e.mu.Unlock()

	return e.fetch(ctx), nil
}

func (e *Engine) NextPage(ctx context.Context) (FetchResult, error) {
	e.mu.Lock()
	page, pages := e.currentPageLocked(), e.result.Pagination.Pages
	e.mu.Unlock()

	if page >= pages {
		return FetchResult{}, ErrPageOutOfRange
	}
	return e.GoToPage(ctx, page+1)
}

func (e *Engine) PrevPage(ctx context.Context) (FetchResult, error) {
	e.mu.Lock()
	page := e.currentPageLocked()
	e.mu.Unlock()

	if page <= 1 {
		return FetchResult{}, ErrPageOutOfRange
	}
	return e.GoToPage(ctx, page-1)
}

// ClickColumn ordena pela coluna. Clicar na coluna ativa inverte a ordem;
// outra coluna passa a ser a ativa em ordem crescente.
func (e *Engine) ClickColumn(ctx context.Context, key string) (FetchResult, error) {
	if !domain.HasColumn(e.Role(), key) {
		return FetchResult{}, ErrUnknownColumn
	}

	e.mu.Lock()
	if e.query.SortField == key {
		e.query.SortOrder = e.query.SortOrder.Toggle()
	} else {
		e.query.SortField = key
		e.query.SortOrder = domain.SortAsc
	}
	e.query.Page = 1
	e.mu.Unlock()

	return e.fetch(ctx), nil
}

func (e *Engine) ToggleOrder(ctx context.Context) FetchResult {
	e.mu.Lock()
	e.query.SortOrder = e.query.SortOrder.Toggle()
	e.query.Page = 1
	e.mu.Unlock()

	return e.fetch(ctx)
}

// SetStartDate recebe a data no formato do seletor (YYYY-MM-DD). Vazio
// remove o limite.
func (e *Engine) SetStartDate(ctx context.Context, wire string) (FetchResult, error) {
	start, err := displayDate(wire)
	if err != nil {
		return FetchResult{}, err
	}

	e.mu.Lock()
	e.query.StartDate = start
	e.query.Page = 1
	e.mu.Unlock()

	return e.fetch(ctx), nil
}

func (e *Engine) SetEndDate(ctx context.Context, wire string) (FetchResult, error) {
	end, err := displayDate(wire)
	if err != nil {
		return FetchResult{}, err
	}

	e.mu.Lock()
	e.query.EndDate = end
	e.query.Page = 1
	e.mu.Unlock()

	return e.fetch(ctx), nil
}

// SetDateRange altera as duas datas com uma única busca
func (e *Engine) SetDateRange(ctx context.Context, startWire, endWire string) (FetchResult, error) {
	start, err := displayDate(startWire)
	if err != nil {
		return FetchResult{}, err
	}
	end, err := displayDate(endWire)
	if err != nil {
		return FetchResult{}, err
	}

	e.mu.Lock()
	e.query.StartDate = start
	e.query.EndDate = end
	e.query.Page = 1
	e.mu.Unlock()

	return e.fetch(ctx), nil
}

// Seed define a consulta inicial sem buscar. O tamanho de página é sempre o padrão.
func (e *Engine) Seed(query domain.QueryState) {
	if query.Page < 1 {
		query.Page = 1
	}
	if !query.SortOrder.Valid() {
		query.SortOrder = domain.SortAsc
	}
	query.PageSize = domain.DefaultPageSize

	e.mu.Lock()
	e.query = query
	e.mu.Unlock()
}

// Reset volta ao estado inicial e descarta buscas em andamento
func (e *Engine) Reset() {
	e.mu.Lock()
	e.invalidateInFlightLocked()
	e.state = StateIdle
	e.query = domain.NewQueryState()
	e.result = domain.EmptyPageResult()
	e.lastErr = nil
	e.loadedOnce = false
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
}

// OnSessionEvent reage às mudanças de sessão: uma nova sessão ou logout
// reiniciam o painel, uma invalidação o deixa em unauthorized.
func (e *Engine) OnSessionEvent(event session.Event) {
	switch event.Type {
	case session.EventStarted, session.EventCleared:
		e.Reset()
	case session.EventInvalidated:
		e.mu.Lock()
		if e.state == StateUnauthorized {
			e.mu.Unlock()
			return
		}
		e.invalidateInFlightLocked()
		e.state = StateUnauthorized
		snap := e.snapshotLocked()
		e.mu.Unlock()

		e.notify(snap)
	}
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshotLocked()
}

// Subscribe registra um listener de mudanças de estado
func (e *Engine) Subscribe(listener Listener) func() {
	e.listenersMu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener
	e.listenersMu.Unlock()

	return func() {
		e.listenersMu.Lock()
		delete(e.listeners, id)
		e.listenersMu.Unlock()
	}
}

func (e *Engine) fetch(ctx context.Context) FetchResult {
	e.mu.Lock()
	seq := e.invalidateInFlightLocked()
	// lida sob o mesmo lock da sequência: uma troca de sessão posterior
	// reinicia o painel e torna esta busca obsoleta
	current := e.sessions.Current()

	if !current.Valid() {
		e.state = StateUnauthorized
		snap := e.snapshotLocked()
		e.mu.Unlock()

		e.notify(snap)
		return FetchResult{Seq: seq, Outcome: OutcomeUnauthorized, Result: snap.Result, Err: ErrNoSession}
	}

	reqCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.state = StateFetching
	e.lastErr = nil
	query := e.query.ToMetricsQuery()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)

	logger := log.ForContext(ctx).WithFields(log.Fields{"seq": seq, "page": query.Page})

	start := time.Now()
	page, err := e.fetcher.GetMetrics(reqCtx, current.Token, query)
	elapsed := time.Since(start)
	cancel()

	e.mu.Lock()
	if seq != e.seq {
		e.mu.Unlock()

		logger.WithField("outcome", OutcomeStale).Debug("Resposta descartada, há uma busca mais recente")
		e.observe(OutcomeStale, elapsed)
		return FetchResult{Seq: seq, Outcome: OutcomeStale, Err: err}
	}
	e.cancel = nil

	var outcome Outcome
	var statusErr *metricsdomain.StatusError

	switch {
	case err == nil:
		outcome = OutcomeLoaded
		e.result = *page
		if e.result.Rows == nil {
			e.result.Rows = []domain.MetricRow{}
		}
		if page.Pagination.Page > 0 {
			e.query.Page = page.Pagination.Page
		}
		e.state = StateLoaded
		e.loadedOnce = true
	case errors.As(err, &statusErr) && statusErr.IsUnauthorized():
		outcome = OutcomeUnauthorized
		e.state = StateUnauthorized
	default:
		outcome = OutcomeFailed
		e.state = StateIdle
		e.lastErr = err
	}

	snap = e.snapshotLocked()
	e.mu.Unlock()

	e.observe(outcome, elapsed)

	switch outcome {
	case OutcomeUnauthorized:
		logger.WithField("outcome", outcome).Warn("Sessão recusada pela API de métricas")
		invalidated, invErr := e.sessions.InvalidateToken(ctx, current.Token, session.ReasonUnauthorized)
		if invErr != nil {
			logger.WithError(invErr).Error("Erro ao invalidar sessão")
		} else if !invalidated {
			logger.Debug("Sessão já substituída, recusa ignorada")
		}
	case OutcomeFailed:
		logger.WithField("outcome", outcome).WithError(err).Warn("Erro ao buscar métricas")
	default:
		logger.WithField("outcome", outcome).Debug("Métricas carregadas")
	}

	e.notify(snap)

	return FetchResult{Seq: seq, Outcome: outcome, Result: snap.Result, Err: err}
}

// currentPageLocked é a página confirmada pelo servidor. Antes da primeira
// carga vale a página pedida.
func (e *Engine) currentPageLocked() int {
	return confirmedPage(e.loadedOnce, e.result.Pagination, e.query.Page)
}

func confirmedPage(loaded bool, pagination domain.Pagination, requested int) int {
	if loaded && pagination.Page > 0 {
		return pagination.Page
	}
	return requested
}

// invalidateInFlightLocked cancela a busca em andamento e avança a sequência
func (e *Engine) invalidateInFlightLocked() uint64 {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.seq++
	return e.seq
}

func (e *Engine) snapshotLocked() Snapshot {
	result := e.result
	result.Rows = append([]domain.MetricRow(nil), e.result.Rows...)
	if result.Rows == nil {
		result.Rows = []domain.MetricRow{}
	}

	return Snapshot{
		State:  e.state,
		Query:  e.query,
		Result: result,
		Err:    e.lastErr,
		Loaded: e.loadedOnce,
		Seq:    e.seq,
	}
}

// Role é o papel da sessão atual, usado para derivar as colunas
func (e *Engine) Role() domain.Role {
	if s := e.sessions.Current(); s != nil {
		return s.Role
	}
	return ""
}

func (e *Engine) observe(outcome Outcome, d time.Duration) {
	if e.observer != nil {
		e.observer.ObserveFetch(string(outcome), d)
	}
}

func (e *Engine) notify(snap Snapshot) {
	e.listenersMu.Lock()
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.listenersMu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func displayDate(wire string) (string, error) {
	if wire == "" {
		return "", nil
	}
	if _, err := utils.ParseDate(wire); err != nil {
		return "", ErrInvalidDate
	}
	return utils.ToDisplay(wire), nil
}
