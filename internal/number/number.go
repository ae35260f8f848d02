package number

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumber is returned when a json.Number does not hold a JSON number.
var ErrNotNumber = errors.New("not a number")

// ToInt64 converts integer-typed values into int64.
// Unsigned values above math.MaxInt64 are rejected.
func ToInt64(value any) (int64, bool) {
	switch current := value.(type) {
	case int:
		return int64(current), true
	case int8:
		return int64(current), true
	case int16:
		return int64(current), true
	case int32:
		return int64(current), true
	case int64:
		return current, true
	case uint:
		return fromUnsigned(uint64(current))
	case uint8:
		return int64(current), true
	case uint16:
		return int64(current), true
	case uint32:
		return int64(current), true
	case uint64:
		return fromUnsigned(current)
	default:
		return 0, false
	}
}

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case uint64:
		return float64(current), true
	case uint:
		return float64(current), true
	}

	if i, ok := ToInt64(value); ok {
		return float64(i), true
	}

	return 0, false
}

// Classify splits a JSON number into its integer or floating form, keeping
// `1` and `1.0` apart. Integers that overflow int64 are returned as floats.
func Classify(n json.Number) (i int64, f float64, isInt bool, err error) {
	s := string(n)
	if s == "" {
		return 0, 0, false, ErrNotNumber
	}

	if !strings.ContainsAny(s, ".eE") {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return parsed, 0, true, nil
		}
		if !errors.Is(err, strconv.ErrRange) {
			return 0, 0, false, ErrNotNumber
		}
	}

	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, 0, false, ErrNotNumber
	}

	return 0, parsed, false, nil
}

func fromUnsigned(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}
