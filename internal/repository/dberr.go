package repository

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	mysqlDupValue   = regexp.MustCompile(`Duplicate entry '([^']*)'`)
	pgDupValue      = regexp.MustCompile(`\)=\(([^)]*)\)`)
	sqliteDupColumn = regexp.MustCompile(`UNIQUE constraint failed: ([\w.]+)`)
	quotedValue     = regexp.MustCompile(`"([^"]*)"`)
)

// DuplicateKey reports whether err is a unique-index violation and extracts
// the offending value from the driver's message when it can.
func DuplicateKey(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number != 1062 {
			return "", false
		}
		return firstMatch(mysqlDupValue, myErr.Message), true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return "", false
		}
		return firstMatch(pgDupValue, pgErr.Detail), true
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return firstMatch(sqliteDupColumn, msg), true
	}
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "Duplicate entry") {
		if v := firstMatch(mysqlDupValue, msg); v != "" {
			return v, true
		}
		return firstMatch(quotedValue, msg), true
	}
	return "", false
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
