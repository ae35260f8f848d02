package flat

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEnd indicates the token stream ended inside an object.
	ErrUnexpectedEnd = errors.New("flat: unexpected end of input")

	// ErrDuplicateKey indicates two leaves computed the same path.
	ErrDuplicateKey = errors.New("flat: duplicate key")

	// ErrMalformed indicates the input is not valid JSON.
	ErrMalformed = errors.New("flat: malformed JSON")

	// ErrNotObject indicates the decoded value is not a JSON object.
	ErrNotObject = errors.New("flat: not an object")
)

// DecodeError describes where decoding stopped.
type DecodeError struct {
	Path   string // path being built when the error occurred, may be empty
	Offset int64  // input offset when known, -1 otherwise
	Err    error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Path != "" && e.Offset >= 0:
		return fmt.Sprintf("%v at %q (offset %d)", e.Err, e.Path, e.Offset)
	case e.Path != "":
		return fmt.Sprintf("%v at %q", e.Err, e.Path)
	case e.Offset >= 0:
		return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
	default:
		return e.Err.Error()
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
