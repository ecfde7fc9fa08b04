package catalog

import (
	"errors"
	"fmt"
)

// AuthenticationError means the credential itself was rejected. Every
// later call would fail the same way, so this is fatal for the run.
type AuthenticationError struct {
	Status int
}

func (it *AuthenticationError) Error() string {
	if it.Status == 403 {
		return "catalog access forbidden: insufficient permissions"
	}
	return "catalog authentication failed: invalid API key"
}

// ConnectionError covers one failing call: transport trouble or an
// unexpected status. It is not fatal to sibling operations.
type ConnectionError struct {
	Operation string
	Status    int
	Detail    string
}

func (it *ConnectionError) Error() string {
	message := fmt.Sprintf("%s failed (status: %d)", it.Operation, it.Status)
	if len(it.Detail) > 0 {
		message += fmt.Sprintf(", response: %s", it.Detail)
	}
	return message
}

// CreationError means a create conflict could not be resolved by
// re-lookup. The ambiguous state is surfaced, never silently absorbed.
type CreationError struct {
	Name    string
	Version string
	Reason  string
}

func (it *CreationError) Error() string {
	return fmt.Sprintf("could not create project %s (version: %s): %s", it.Name, it.Version, it.Reason)
}

// Fatal tells whether an error poisons the whole run instead of just
// one node.
func Fatal(err error) bool {
	var authentication *AuthenticationError
	return errors.As(err, &authentication)
}
