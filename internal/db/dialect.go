package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Names of the two dialects the service runs against: PostgreSQL in
// deployment, SQLite for local runs and tests.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DialectName returns the name of the dialect behind conn, or "" when the
// connection carries no dialector.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether conn is backed by SQLite. Query builders use it
// to skip postgres-only clauses such as FOR UPDATE.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// CaseInsensitiveLikeExpr builds a case-insensitive LIKE condition on column
// for the active dialect. PostgreSQL has ILIKE; SQLite only folds ASCII case,
// so the column is lowered and the bound pattern must be lowered to match
// (see NormalizeLikePattern).
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return fmt.Sprintf("LOWER(%s) LIKE ?", column)
	}
	return fmt.Sprintf("%s ILIKE ?", column)
}

// NormalizeLikePattern prepares a pattern for CaseInsensitiveLikeExpr,
// lowercasing it on SQLite where the comparison runs against LOWER(column).
func NormalizeLikePattern(conn *gorm.DB, pattern string) string {
	if IsSQLite(conn) {
		return strings.ToLower(pattern)
	}
	return pattern
}
