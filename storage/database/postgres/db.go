// Package pgrepos implements the repositories on PostgreSQL with sqlx.
package pgrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// notFound maps a no-op write (0 rows affected) to notFoundErr.
func notFound(res interface{ RowsAffected() (int64, error) }, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}
