package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/pkg/apiErrors"
)

// DashboardEngine é o motor de consultas visto pelos handlers
type DashboardEngine interface {
	Load(ctx context.Context) dashboard.FetchResult
	Refresh(ctx context.Context) dashboard.FetchResult
	Retry(ctx context.Context) dashboard.FetchResult
	GoToPage(ctx context.Context, page int) (dashboard.FetchResult, error)
	ClickColumn(ctx context.Context, key string) (dashboard.FetchResult, error)
	ToggleOrder(ctx context.Context) dashboard.FetchResult
	SetDateRange(ctx context.Context, startWire, endWire string) (dashboard.FetchResult, error)
	Snapshot() dashboard.Snapshot
	Subscribe(listener dashboard.Listener) func()
	Role() domain.Role
}

// DateRangeRequest recebe as datas no formato do seletor (YYYY-MM-DD).
// Vazio limpa o limite.
type DateRangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// GetDashboard faz a primeira carga quando o painel ainda está vazio e
// devolve a tela atual.
func GetDashboard(engine DashboardEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := engine.Snapshot()
		if !snap.Loaded && snap.State == dashboard.StateIdle && snap.Err == nil {
			writeDashboard(w, engine, engine.Load(r.Context()))
			return
		}

		if snap.State == dashboard.StateUnauthorized {
			writeUnauthorized(w)
			return
		}

		writeJSON(w, http.StatusOK, dashboard.BuildView(engine.Role(), snap))
	}
}

func RefreshDashboard(engine DashboardEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDashboard(w, engine, engine.Retry(r.Context()))
	}
}

func GoToPage(engine DashboardEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(httprouter.ParamsFromContext(r.Context()).ByName("page"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Página deve ser um número", nil)
			return
		}

		res, err := engine.GoToPage(r.Context(), page)
		if err != nil {
			handleDashboardError(w, engine, err)
			return
		}

		writeDashboard(w, engine, res)
	}
}

func SortByColumn(engine DashboardEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		column := httprouter.ParamsFromContext(r.Context()).ByName("column")

		res, err := engine.ClickColumn(r.Context(), column)
		if err != nil {
			handleDashboardError(w, engine, err)
			return
		}

		writeDashboard(w, engine, res)
	}
}

func ToggleOrder(engine DashboardEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDashboard(w, engine, engine.ToggleOrder(r.Context()))
	}
}

func SetDateRange(engine DashboardEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DateRangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		res, err := engine.SetDateRange(r.Context(), req.StartDate, req.EndDate)
		if err != nil {
			handleDashboardError(w, engine, err)
			return
		}

		writeDashboard(w, engine, res)
	}
}

// writeDashboard responde com a tela atual. Uma busca descartada por outra
// mais nova ainda devolve a tela; falhas que não são de sessão vão no campo
// error da própria tela.
func writeDashboard(w http.ResponseWriter, engine DashboardEngine, res dashboard.FetchResult) {
	if res.Outcome == dashboard.OutcomeUnauthorized {
		writeUnauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, dashboard.BuildView(engine.Role(), engine.Snapshot()))
}

func writeUnauthorized(w http.ResponseWriter) {
	apiErrors.WriteError(w, apiErrors.ErrExpiredToken, "Sessão expirada. Faça login novamente", nil)
}

func handleDashboardError(w http.ResponseWriter, engine DashboardEngine, err error) {
	switch {
	case errors.Is(err, dashboard.ErrPageOutOfRange):
		pages := engine.Snapshot().Result.Pagination.Pages
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Página fora do intervalo", map[string]any{
			"pages": max(pages, 1),
		})
	case errors.Is(err, dashboard.ErrUnknownColumn):
		columns := domain.ColumnsFor(engine.Role())
		keys := make([]string, 0, len(columns))
		for _, c := range columns {
			keys = append(keys, c.Key)
		}
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Coluna desconhecida", map[string]any{
			"columns": keys,
		})
	case errors.Is(err, dashboard.ErrInvalidDate):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data inválida. Formato esperado: AAAA-MM-DD", nil)
	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao atualizar o painel", nil)
	}
}
