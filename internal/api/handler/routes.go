package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/vfg2006/metrics-dashboard/internal/api/handler/router"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard/pkg/middleware"
)

type middlewareFunc = func(http.Handler) http.Handler

func Healthcheck(storage Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(storage),
		},
	}
}

func Telemetry(metrics http.Handler) []router.Route {
	return []router.Route{
		{
			Path:    "/internal/metrics",
			Method:  http.MethodGet,
			Handler: metrics,
		},
	}
}

func Authentication(service authenticating.Authenticator, sessions middleware.SessionProvider) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/v1/register",
			Method:  http.MethodPost,
			Handler: Register(service),
		},
		{
			Path:    "/v1/logout",
			Method:  http.MethodPost,
			Handler: Logout(service),
		},
		{
			Path:        "/v1/session",
			Method:      http.MethodGet,
			Handler:     GetSession(),
			Middlewares: []middlewareFunc{middleware.SessionRequired(sessions)},
		},
	}
}

// SessionState é a sessão vista pelas rotas do painel
type SessionState interface {
	middleware.SessionProvider
	SessionEvents
}

func Dashboard(engine DashboardEngine, sessions SessionState, upgrader websocket.Upgrader) []router.Route {
	gate := []middlewareFunc{middleware.SessionRequired(sessions)}

	return []router.Route{
		{
			Path:        "/v1/dashboard",
			Method:      http.MethodGet,
			Handler:     GetDashboard(engine),
			Middlewares: gate,
		},
		{
			Path:        "/v1/dashboard/refresh",
			Method:      http.MethodPost,
			Handler:     RefreshDashboard(engine),
			Middlewares: gate,
		},
		{
			Path:        "/v1/dashboard/page/:page",
			Method:      http.MethodPost,
			Handler:     GoToPage(engine),
			Middlewares: gate,
		},
		{
			Path:        "/v1/dashboard/sort/:column",
			Method:      http.MethodPost,
			Handler:     SortByColumn(engine),
			Middlewares: gate,
		},
		{
			Path:        "/v1/dashboard/order/toggle",
			Method:      http.MethodPost,
			Handler:     ToggleOrder(engine),
			Middlewares: gate,
		},
		{
			Path:        "/v1/dashboard/dates",
			Method:      http.MethodPut,
			Handler:     SetDateRange(engine),
			Middlewares: gate,
		},
		{
			Path:        "/v1/dashboard/events",
			Method:      http.MethodGet,
			Handler:     DashboardEvents(upgrader, engine, sessions),
			Middlewares: gate,
		},
	}
}

func Jobs(services JobServices, sessions middleware.SessionProvider) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/jobs/:type/run",
			Method:      http.MethodPost,
			Handler:     RunJob(services),
			Middlewares: []middlewareFunc{middleware.SessionRequired(sessions)},
		},
		{
			Path:    "/v1/jobs/status",
			Method:  http.MethodGet,
			Handler: GetJobStatus(services),
		},
	}
}
