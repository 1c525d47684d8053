package sqlstore

import (
	"context"
)

const ClientStateTable = "client_state"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS client_state (
		key VARCHAR(64) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate cria as tabelas necessárias. É idempotente.
func Migrate(ctx context.Context, q Queryer) error {
	for _, stmt := range migrations {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
