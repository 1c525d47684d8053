package session

import (
	"context"
	"sync"

	"github.com/vfg2006/metrics-dashboard/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
)

type EventType string

const (
	EventStarted     EventType = "started"
	EventCleared     EventType = "cleared"
	EventInvalidated EventType = "invalidated"
)

// Motivos de invalidação
const (
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"
	ReasonMalformed    = "malformed_token"
)

type Event struct {
	Type    EventType
	Session *domain.Session
	Reason  string
}

type Listener func(Event)

// Manager é o único dono da sessão. Os demais componentes leem com Current
// e reagem a mudanças via Subscribe.
type Manager struct {
	repo repository.SessionRepository

	mu        sync.RWMutex
	current   *domain.Session
	listeners map[int]Listener
	nextID    int
}

func NewManager(repo repository.SessionRepository) *Manager {
	return &Manager{
		repo:      repo,
		listeners: make(map[int]Listener),
	}
}

// Restore carrega a sessão persistida, se existir e for válida
func (m *Manager) Restore(ctx context.Context) (*domain.Session, error) {
	stored, err := m.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !stored.Valid() {
		if stored != nil {
			log.ForContext(ctx).WithField("session_role", stored.Role).Warn("Sessão persistida inválida, descartando")
			if err := m.repo.Delete(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	m.mu.Lock()
	m.current = stored
	m.mu.Unlock()

	m.notify(Event{Type: EventStarted, Session: copySession(stored)})

	return copySession(stored), nil
}

func (m *Manager) Set(ctx context.Context, s domain.Session) error {
	if err := m.repo.Save(ctx, s); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()

	log.ForContext(ctx).WithField("session_role", s.Role).Info("Sessão iniciada")
	m.notify(Event{Type: EventStarted, Session: copySession(&s)})

	return nil
}

// Current retorna uma cópia da sessão ativa ou nil
func (m *Manager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return copySession(m.current)
}

// Clear encerra a sessão a pedido do usuário
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	err := m.repo.Delete(ctx)

	log.ForContext(ctx).Info("Sessão encerrada")
	m.notify(Event{Type: EventCleared})

	return err
}

// InvalidateToken descarta a sessão após uma recusa do servidor ou expiração,
// desde que o token recusado ainda seja o da sessão ativa. Uma sessão nova,
// iniciada depois do envio, é preservada e não há evento.
func (m *Manager) InvalidateToken(ctx context.Context, token, reason string) (bool, error) {
	m.mu.Lock()
	if m.current == nil || m.current.Token != token {
		m.mu.Unlock()
		return false, nil
	}
	m.current = nil
	m.mu.Unlock()

	err := m.repo.Delete(ctx)

	log.ForContext(ctx).WithField("reason", reason).Warn("Sessão invalidada")
	m.notify(Event{Type: EventInvalidated, Reason: reason})

	return true, err
}

// Subscribe registra um listener e retorna a função que o remove
func (m *Manager) Subscribe(listener Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = listener
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(event Event) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
