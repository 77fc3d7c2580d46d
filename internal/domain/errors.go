package domain

import "errors"

// Sentinel errors for remote and store operations
var (
	// ErrNetwork indicates a transient failure; retry by calling Ensure again
	ErrNetwork = errors.New("catalog server is unreachable")

	// ErrAuth indicates the session is not accepted by the server
	ErrAuth = errors.New("authentication token is invalid")

	// ErrNotFound indicates the requested title does not exist
	ErrNotFound = errors.New("title not found")

	// ErrNoContent indicates the server has nothing to feature
	ErrNoContent = errors.New("no featured title available")

	// ErrMutationInProgress indicates a favorite change for the same title is still in flight
	ErrMutationInProgress = errors.New("favorite change already in progress")
)

// ErrorKind classifies an error for display and retry decisions
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNetwork
	KindAuth
	KindNotFound
	KindNoContent
	KindMutationInProgress
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindNoContent:
		return "no_content"
	case KindMutationInProgress:
		return "mutation_in_progress"
	default:
		return "unknown"
	}
}

// Retryable reports whether re-invoking the operation may succeed
func (k ErrorKind) Retryable() bool {
	return k == KindNetwork || k == KindUnknown
}

// KindOf maps an error (possibly wrapped) to its ErrorKind
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoContent):
		return KindNoContent
	case errors.Is(err, ErrMutationInProgress):
		return KindMutationInProgress
	default:
		return KindUnknown
	}
}
