package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
	ErrPrecondition = errors.New("precondition failed")
	ErrNoData       = errors.New("no data matched")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}
