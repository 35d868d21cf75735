package moviecards

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mark-c-hall/moviecards/internal/rest"
)

// NotFoundError is returned when the service answers a lookup with a 4xx.
type NotFoundError struct {
	Resource string
	ID       int
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found: %v", e.Resource, e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// RemoteError covers server failures and anything else that kept a request
// from completing. StatusCode is 0 when no response was received.
type RemoteError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: remote returned %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func IsRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}

func newRemoteError(op string, err error) *RemoteError {
	remote := &RemoteError{Op: op, Err: err}
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		remote.StatusCode = statusErr.StatusCode
	}
	return remote
}

// lookupError maps a failed by-id call. notFound decides which statuses mean
// the entity is missing.
func lookupError(op, entity string, id int, err error, notFound func(*rest.StatusError) bool) error {
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) && notFound(statusErr) {
		return &NotFoundError{Resource: entity, ID: id, Err: err}
	}
	return newRemoteError(op, err)
}

func anyClientError(e *rest.StatusError) bool {
	return e.ClientError()
}

func onlyNotFound(e *rest.StatusError) bool {
	return e.StatusCode == http.StatusNotFound
}
