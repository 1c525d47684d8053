package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/session"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
)

const (
	EventTypeView               = "view"
	EventTypeSessionInvalidated = "session_invalidated"
	EventTypeSessionCleared     = "session_cleared"

	eventBuffer  = 16
	writeTimeout = 5 * time.Second
)

type SessionEvents interface {
	Subscribe(listener session.Listener) func()
}

// EventMessage é o formato das mensagens enviadas pelo websocket
type EventMessage struct {
	Type   string          `json:"type"`
	View   *dashboard.View `json:"view,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewUpgrader aceita apenas as origens configuradas; sem Origin (CLI, testes)
// a conexão é aceita.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	u := upgrader
	u.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	}
	return u
}

// DashboardEvents envia a tela a cada mudança do painel e avisa quando a
// sessão é invalidada. Mensagens são descartadas se o cliente não acompanhar.
func DashboardEvents(u websocket.Upgrader, engine DashboardEngine, sessions SessionEvents) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		conn, err := u.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("Falha no upgrade para websocket")
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
		defer cancel()

		out := make(chan EventMessage, eventBuffer)
		push := func(msg EventMessage) {
			select {
			case out <- msg:
			default:
				logger.WithField("type", msg.Type).Warn("Cliente websocket lento, mensagem descartada")
			}
		}

		unsubscribeEngine := engine.Subscribe(func(snap dashboard.Snapshot) {
			view := dashboard.BuildView(engine.Role(), snap)
			push(EventMessage{Type: EventTypeView, View: &view})
		})
		defer unsubscribeEngine()

		unsubscribeSession := sessions.Subscribe(func(event session.Event) {
			switch event.Type {
			case session.EventInvalidated:
				push(EventMessage{Type: EventTypeSessionInvalidated, Reason: event.Reason})
			case session.EventCleared:
				push(EventMessage{Type: EventTypeSessionCleared})
			}
		})
		defer unsubscribeSession()

		initial := dashboard.BuildView(engine.Role(), engine.Snapshot())
		push(EventMessage{Type: EventTypeView, View: &initial})

		// o cliente não envia comandos; a leitura só detecta o fechamento
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-out:
				payload, err := json.Marshal(msg)
				if err != nil {
					logger.WithError(err).Error("Erro ao serializar evento")
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					logger.WithError(err).Debug("Conexão websocket encerrada")
					return
				}
			}
		}
	}
}
