package value

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound matches every *KeyNotFoundError.
	ErrKeyNotFound = errors.New("value: key not found")

	// ErrInvalidArgument matches every *InvalidArgumentError.
	ErrInvalidArgument = errors.New("value: invalid argument")

	// ErrNotObject is returned when a JSON or YAML document read into a Map is not an object.
	ErrNotObject = errors.New("value: document is not an object")
)

// KeyNotFoundError is returned by Map.Get for absent keys.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("value: key %q not found", e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// InvalidArgumentError reports misuse of the index-style accessors.
type InvalidArgumentError struct {
	Argument string
	Reason   string
	Count    int
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("value: invalid argument %s: %s (got %d)", e.Argument, e.Reason, e.Count)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
