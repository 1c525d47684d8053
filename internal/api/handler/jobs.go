package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard/internal/scheduler"
	"github.com/vfg2006/metrics-dashboard/pkg/apiErrors"
)

const (
	JobTypeDashboardRefresh = "dashboard-refresh"
	JobTypeSessionExpiry    = "session-expiry"
)

// JobServices contém os serviços agendados que podem ser executados manualmente
type JobServices struct {
	DashboardRefresh *scheduler.DashboardRefreshService
	SessionExpiry    *scheduler.SessionExpiryService
}

// RunJob executa manualmente um job específico
func RunJob(services JobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunJob")

		jobType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if jobType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de job não especificado", nil)
			return
		}

		response := map[string]any{
			"message": "Job iniciado com sucesso",
			"type":    jobType,
		}

		switch jobType {
		case JobTypeDashboardRefresh:
			if services.DashboardRefresh == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de atualização do painel não disponível", nil)
				return
			}
			services.DashboardRefresh.TriggerManualSync(r.Context())
			writeJSON(w, http.StatusAccepted, response)

		case JobTypeSessionExpiry:
			if services.SessionExpiry == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de expiração de sessão não disponível", nil)
				return
			}
			invalidated, err := services.SessionExpiry.CheckExpiry(r.Context())
			if err != nil {
				logrus.WithError(err).Error("Erro ao verificar expiração da sessão")
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao verificar expiração da sessão", nil)
				return
			}
			response["message"] = "Verificação concluída"
			response["invalidated"] = invalidated
			writeJSON(w, http.StatusOK, response)

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de job inválido. Valores aceitos: dashboard-refresh, session-expiry", nil)
		}
	}
}

// GetJobStatus retorna o status dos jobs agendados
func GetJobStatus(services JobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.DashboardRefresh != nil {
			status[JobTypeDashboardRefresh] = services.DashboardRefresh.GetStatus()
		}
		if services.SessionExpiry != nil {
			status[JobTypeSessionExpiry] = services.SessionExpiry.GetStatus()
		}

		writeJSON(w, http.StatusOK, status)
	}
}
