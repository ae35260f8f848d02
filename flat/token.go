package flat

import (
	"strconv"

	"github.com/jacoelho/esq/value"
)

// TokenKind identifies a structural or scalar token.
type TokenKind uint8

const (
	TokenObjectStart TokenKind = iota + 1
	TokenObjectEnd
	TokenArrayStart
	TokenArrayEnd
	TokenName
	TokenValue
)

func (k TokenKind) String() string {
	switch k {
	case TokenObjectStart:
		return "object-start"
	case TokenObjectEnd:
		return "object-end"
	case TokenArrayStart:
		return "array-start"
	case TokenArrayEnd:
		return "array-end"
	case TokenName:
		return "name"
	case TokenValue:
		return "value"
	default:
		return "token(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is one element of a token stream. Name is set for TokenName and
// Value for TokenValue.
type Token struct {
	Kind  TokenKind
	Name  string
	Value value.Value
}

// TokenReader yields tokens one at a time.
//
// Next returns io.EOF once the stream is exhausted. Depth reports the depth of
// the token most recently returned by Next: open and close tokens carry the
// depth of their container, everything inside it is one deeper.
type TokenReader interface {
	Next() (Token, error)
	Depth() int
}

// offsetReader is implemented by readers that know their input position.
type offsetReader interface {
	InputOffset() int64
}
