package dealstreak

import "errors"

// Error kinds. Entity specific errors wrap one of them so callers can
// classify with errors.Is without knowing every entity.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAuthentication  = errors.New("authentication failed")
	ErrExternalService = errors.New("external service failure")
	ErrQuotaExceeded   = errors.New("notification quota exceeded")
)

var (
	ErrActivityNotFound       = kindError(ErrNotFound, "activity not found")
	ErrUserNotFound           = kindError(ErrNotFound, "user not found")
	ErrGroupNotFound          = kindError(ErrNotFound, "group not registered")
	ErrGroupAlreadyRegistered = kindError(ErrConflict, "group already registered")
	ErrNotActivityOwner       = kindError(ErrValidation, "activity owned by another user")
	ErrInvalidSignature       = kindError(ErrAuthentication, "invalid signature")
)

type kindErr struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &kindErr{kind: kind, msg: msg}
}

func (e *kindErr) Error() string { return e.msg }

func (e *kindErr) Unwrap() error { return e.kind }
