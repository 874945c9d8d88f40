// Package jsonx holds small decoding helpers for the loosely typed JSON the
// kitchen API returns: identifiers that arrive as numbers or strings and
// prices that arrive as numbers, numeric strings, or garbage.
package jsonx

import (
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ID is an identifier that may be encoded as a JSON string or number.
// It always marshals back as a string.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	v, err := DecodeID(jx.DecodeBytes(data))
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

// MarshalJSON always writes the identifier as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, string(id)), nil
}

// DecodeID reads the next value from d as an identifier string. Integral
// numbers are rendered without a fractional part, so 7 and 7.0 both become "7".
func DecodeID(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return formatNum(n)
	case jx.Null:
		return "", d.Null()
	default:
		return "", errors.Errorf("unexpected %s for identifier", d.Next())
	}
}

func formatNum(n jx.Num) (string, error) {
	f, err := n.Float64()
	if err != nil {
		return "", errors.Wrap(err, "parse number")
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
