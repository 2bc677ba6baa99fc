package mesabot

import "embed"

// MigrationsFS holds the SQL migrations applied on startup.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// DefaultRules is the fallback system prompt used when SYSTEM_RULES_FILE is
// not set.
//
//go:embed rules.json
var DefaultRules []byte
