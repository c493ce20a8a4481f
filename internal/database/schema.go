package database

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed sql/schema.sql
var schemaSQL string

const dropSchemaSQL = `
DROP TABLE IF EXISTS country_names;
DROP TABLE IF EXISTS country_codes;
`

// Migrate creates the registry tables and indexes if they do not exist.
// Running it against an up-to-date database is a no-op.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Recreate drops the registry tables and applies the schema again.
// All stored codes and names are lost.
func Recreate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return Migrate(ctx, db)
}

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}
