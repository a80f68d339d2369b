package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
)

// writeError is raised inside a write closure for input the database would accept but
// the aggregate must not; MapError turns it into a *domainagg.Error. Conflict and retry
// codes come from the driver errors below.
type writeError struct {
	code domainagg.ErrorCode
	msg  string
}

func (e writeError) Error() string { return e.msg }

func ValidationError(msg string) error {
	return writeError{code: domainagg.CodeValidation, msg: strings.TrimSpace(msg)}
}

var pgCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,  // unique_violation
	"23503": domainagg.CodeConflict,  // foreign_key_violation
	"40001": domainagg.CodeRetryable, // serialization_failure
	"40P01": domainagg.CodeRetryable, // deadlock_detected
	"55P03": domainagg.CodeRetryable, // lock_not_available
	"57014": domainagg.CodeRetryable, // query_canceled
}

// SQLite reports constraint and lock failures only through messages.
var messageCodes = []struct {
	code    domainagg.ErrorCode
	needles []string
}{
	{domainagg.CodeConflict, []string{"unique constraint failed", "duplicate key", "already exists"}},
	{domainagg.CodeRetryable, []string{"database is locked", "database table is locked", "deadlock", "serialization", "timeout", "temporar"}},
}

// MapError gives err an aggregate code. Errors that already carry one pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	return domainagg.NewError(codeFor(err), op, err.Error(), err)
}

func codeFor(err error) domainagg.ErrorCode {
	var we writeError
	if errors.As(err, &we) {
		return we.code
	}
	switch {
	case errors.Is(err, domainagg.ErrEmptySelection), errors.Is(err, domainagg.ErrInvalidTopics):
		return domainagg.CodeValidation
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.CodeConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.CodeRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, ok := pgCodes[strings.TrimSpace(pgErr.Code)]; ok {
			return code
		}
	}

	msg := strings.ToLower(err.Error())
	for _, mc := range messageCodes {
		for _, needle := range mc.needles {
			if strings.Contains(msg, needle) {
				return mc.code
			}
		}
	}
	return domainagg.CodeInternal
}
