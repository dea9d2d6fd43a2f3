// internal/app/system/lifecycle/errors.go
package lifecycle

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by lifecycle operations. Handlers map these to
// HTTP statuses with HTTPStatus.
var (
	// ErrAlreadyAffiliated means the requester already belongs to a gym.
	ErrAlreadyAffiliated = errors.New("user is already affiliated with a gym")
	// ErrDuplicatePending means an open request of the same kind already
	// exists for this user and gym.
	ErrDuplicatePending = errors.New("a pending request already exists")
	// ErrMissingDuration means a member request arrived without a duration.
	ErrMissingDuration = errors.New("membership duration is required")
	// ErrInvalidDuration means the duration is not one of the allowed codes.
	ErrInvalidDuration = errors.New("invalid membership duration")
	// ErrNotFound means the referenced gym, user or request does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the actor's role or gym does not permit the operation.
	ErrForbidden = errors.New("operation not permitted")
	// ErrAlreadyResolved means the request reached a terminal state first.
	ErrAlreadyResolved = errors.New("request has already been resolved")
	// ErrNotAffiliated means the target user does not belong to the gym.
	ErrNotAffiliated = errors.New("user is not affiliated with this gym")
)

// HTTPStatus maps a lifecycle error to the HTTP status a handler should
// respond with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingDuration), errors.Is(err, ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyAffiliated),
		errors.Is(err, ErrDuplicatePending),
		errors.Is(err, ErrAlreadyResolved),
		errors.Is(err, ErrNotAffiliated):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
