package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/metrics-dashboard/infrastructure/database/sqlstore"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
)

const (
	sessionTokenKey = "token"
	sessionRoleKey  = "role"
)

type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context) (*domain.Session, error)
	Delete(ctx context.Context) error
}

type sessionRepository struct {
	conn sqlstore.Conn
}

func NewSessionRepository(conn sqlstore.Conn) SessionRepository {
	return &sessionRepository{
		conn: conn,
	}
}

// Save grava token e papel na mesma transação
func (r *sessionRepository) Save(ctx context.Context, session domain.Session) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.put(ctx, tx, sessionTokenKey, session.Token); err != nil {
			return err
		}
		return r.put(ctx, tx, sessionRoleKey, string(session.Role))
	})
}

func (r *sessionRepository) put(ctx context.Context, q sqlstore.Queryer, key, value string) error {
	query, args, err := squirrel.
		Insert(sqlstore.ClientStateTable).
		Columns("key", "value", "updated_at").
		Values(key, value, squirrel.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		PlaceholderFormat(r.conn.Placeholder()).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", key, err)
	}

	return nil
}

// Get retorna nil quando qualquer uma das chaves estiver ausente
func (r *sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	query, args, err := squirrel.
		Select("key", "value").
		From(sqlstore.ClientStateTable).
		Where(squirrel.Eq{"key": []string{sessionTokenKey, sessionRoleKey}}).
		PlaceholderFormat(r.conn.Placeholder()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar sessão: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 2)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("erro ao processar resultado: %w", err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	token, role := values[sessionTokenKey], values[sessionRoleKey]
	if token == "" || role == "" {
		return nil, nil
	}

	return &domain.Session{Token: token, Role: domain.Role(role)}, nil
}

func (r *sessionRepository) Delete(ctx context.Context) error {
	query, args, err := squirrel.
		Delete(sqlstore.ClientStateTable).
		Where(squirrel.Eq{"key": []string{sessionTokenKey, sessionRoleKey}}).
		PlaceholderFormat(r.conn.Placeholder()).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao remover sessão: %w", err)
	}

	return nil
}
