package database

import (
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassTransient:
		return "transient"
	case ErrorClassDeadlock:
		return "deadlock"
	case ErrorClassSerialization:
		return "serialization"
	}
	return "permanent"
}

// pgClasses lists the Postgres SQLSTATE codes worth retrying. Anything
// missing, constraint violations included, is permanent.
var pgClasses = map[pq.ErrorCode]ErrorClass{
	"40001": ErrorClassSerialization,
	"40P01": ErrorClassDeadlock,
	"55P03": ErrorClassTransient, // lock_not_available
	"57P01": ErrorClassTransient, // admin_shutdown
	"08006": ErrorClassTransient, // connection_failure
}

// ClassifyError sorts a store failure from either driver into a retry class.
func ClassifyError(err error) ErrorClass {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if class, ok := pgClasses[pqErr.Code]; ok {
			return class
		}
		return ErrorClassPermanent
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// Extended result codes carry the primary code in the low byte.
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return ErrorClassTransient
		}
	}
	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	return ClassifyError(err) != ErrorClassPermanent
}

var (
	ErrNotFound         = errors.New("record not found")
	ErrUnsupportedStore = errors.New("unsupported store url")
	ErrUnknownDirection = errors.New("migration direction must be up or down")
)
