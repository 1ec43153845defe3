package converter

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrInvalidDigit = errors.New("invalid digit")
	ErrOverflow     = errors.New("value out of range")
)

// NumError records a failed conversion.
type NumError struct {
	Num string
	Err error
}

func (e *NumError) Error() string {
	return "parsing " + strconv.Quote(e.Num) + ": " + e.Err.Error()
}

func (e *NumError) Unwrap() error {
	return e.Err
}

// ParseNum converts an address or size argument. Numbers prefixed with "0x"
// are hexadecimal, anything else is decimal.
func ParseNum(s string) (uint64, error) {
	if s == "" {
		return 0, &NumError{s, ErrInvalidDigit}
	}

	digits := s
	radix := uint64(10)
	if len(s) > 2 && s[0] == '0' && s[1] == 'x' {
		digits = s[2:]
		radix = 16
	}

	var res uint64
	for i := 0; i < len(digits); i++ {
		d, ok := digitValue(digits[i], radix)
		if !ok {
			return 0, &NumError{s, ErrInvalidDigit}
		}
		if res > (math.MaxUint64-d)/radix {
			return 0, &NumError{s, ErrOverflow}
		}
		res = res*radix + d
	}
	return res, nil
}

func digitValue(c byte, radix uint64) (uint64, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0'), true
	case radix == 16 && c >= 'a' && c <= 'f':
		return uint64(c-'a') + 10, true
	case radix == 16 && c >= 'A' && c <= 'F':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}
