package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema devuelve el DDL de la base (también usado por el test de integración).
func Schema() string { return schemaSQL }

// ApplySchema crea las tablas que falten. Todas las sentencias usan IF NOT EXISTS.
func ApplySchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
