// Package portid converts port-of-entry identifiers between their compact
// 6-8 digit form and the (prefix, port, suffix) parts CBP composes them from.
//
// The full identifier is always 8 digits: a 2-digit prefix, the 4-digit port
// of entry and a 2-digit crossing suffix, so that
//
//	value = prefix*10^6 + port*10^2 + suffix
package portid

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/abelzeko/border-wait/internal/entities"
)

// DefaultPrefix is prepended to 6-digit identifiers when the caller asks for it
const DefaultPrefix = "02"

// MaxValue is the largest identifier that fits in 8 digits
const MaxValue = 99999999

var (
	inputRe  = regexp.MustCompile(`^\d{6,8}$`)
	paddedRe = regexp.MustCompile(`^\d{7,8}$`)
	prefixRe = regexp.MustCompile(`^\d{2}$`)
)

// Parts is an identifier split into zero-padded strings: 2, 4 and 2 digits
type Parts struct {
	Prefix string
	Port   string
	Suffix string
}

// NumericParts is an identifier split into integers
type NumericParts struct {
	Prefix int // [0,99]
	Port   int // [0,9999]
	Suffix int // [0,99]
}

// Codec decodes identifiers, prefixing short ones with a configurable prefix
type Codec struct {
	defaultPrefix string
}

// NewCodec creates a codec. An empty prefix selects DefaultPrefix.
func NewCodec(defaultPrefix string) (*Codec, error) {
	if defaultPrefix == "" {
		defaultPrefix = DefaultPrefix
	}
	if !prefixRe.MatchString(defaultPrefix) {
		return nil, &entities.FormatError{Value: defaultPrefix, Expected: prefixRe.String()}
	}
	return &Codec{defaultPrefix: defaultPrefix}, nil
}

// StringToParts splits a 6-8 digit identifier.
// With assumePrefixIfShort a 6-digit id gets the default prefix; a 7-digit
// id is left-padded with a single zero.
func (c *Codec) StringToParts(id string, assumePrefixIfShort bool) (Parts, error) {
	if !inputRe.MatchString(id) {
		return Parts{}, &entities.FormatError{Value: id, Expected: inputRe.String()}
	}
	if len(id) == 6 && assumePrefixIfShort {
		id = c.defaultPrefix + id
	}
	if !paddedRe.MatchString(id) {
		return Parts{}, &entities.FormatError{Value: id, Expected: paddedRe.String()}
	}
	if len(id) == 7 {
		id = "0" + id
	}
	return Parts{Prefix: id[0:2], Port: id[2:6], Suffix: id[6:8]}, nil
}

// StringToNumericParts is StringToParts with integer output
func (c *Codec) StringToNumericParts(id string, assumePrefixIfShort bool) (NumericParts, error) {
	p, err := c.StringToParts(id, assumePrefixIfShort)
	if err != nil {
		return NumericParts{}, err
	}
	return p.Numeric()
}

// Decode accepts a string or any number type and returns string parts.
// Strings are decoded with the short-id prefix assumption. Floats must hold
// an integral value, which is what encoding/json and gjson hand back for
// numeric ids.
func (c *Codec) Decode(id any) (Parts, error) {
	switch v := id.(type) {
	case string:
		return c.StringToParts(v, true)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return Parts{}, &entities.FormatError{Value: v.String(), Expected: "integer"}
		}
		return NumberToStringParts(n)
	case int:
		return NumberToStringParts(int64(v))
	case int8:
		return NumberToStringParts(int64(v))
	case int16:
		return NumberToStringParts(int64(v))
	case int32:
		return NumberToStringParts(int64(v))
	case int64:
		return NumberToStringParts(v)
	case uint:
		return decodeUnsigned(uint64(v))
	case uint8:
		return decodeUnsigned(uint64(v))
	case uint16:
		return decodeUnsigned(uint64(v))
	case uint32:
		return decodeUnsigned(uint64(v))
	case uint64:
		return decodeUnsigned(v)
	case float32:
		return decodeFloat(float64(v))
	case float64:
		return decodeFloat(v)
	default:
		return Parts{}, &entities.TypeError{Value: id}
	}
}

func decodeUnsigned(v uint64) (Parts, error) {
	if v > MaxValue {
		return Parts{}, &entities.FormatError{Value: strconv.FormatUint(v, 10), Expected: rangeDesc}
	}
	return NumberToStringParts(int64(v))
}

func decodeFloat(v float64) (Parts, error) {
	if math.IsNaN(v) || v != math.Trunc(v) || v < 0 || v > MaxValue {
		return Parts{}, &entities.FormatError{Value: strconv.FormatFloat(v, 'g', -1, 64), Expected: rangeDesc}
	}
	return NumberToStringParts(int64(v))
}

const rangeDesc = "integer in [0, 99999999]"

// NumberToParts decomposes prefix*10^6 + port*10^2 + suffix
func NumberToParts(id int64) (NumericParts, error) {
	if id < 0 || id > MaxValue {
		return NumericParts{}, &entities.FormatError{Value: strconv.FormatInt(id, 10), Expected: rangeDesc}
	}
	suffix := id % 100
	port := (id / 100) % 10000
	prefix := (id/100 - port) / 10000
	n := NumericParts{Prefix: int(prefix), Port: int(port), Suffix: int(suffix)}
	if !n.Valid() {
		return NumericParts{}, &entities.FormatError{Value: strconv.FormatInt(id, 10), Expected: rangeDesc}
	}
	return n, nil
}

// NumberToStringParts is NumberToParts rendered with fixed widths
func NumberToStringParts(id int64) (Parts, error) {
	n, err := NumberToParts(id)
	if err != nil {
		return Parts{}, err
	}
	return n.Parts(), nil
}

// Numeric parses each part as a base-10 integer
func (p Parts) Numeric() (NumericParts, error) {
	if len(p.Prefix) != 2 || len(p.Port) != 4 || len(p.Suffix) != 2 {
		return NumericParts{}, &entities.FormatError{Value: p.Prefix + p.Port + p.Suffix, Expected: "2+4+2 digits"}
	}
	prefix, err := strconv.Atoi(p.Prefix)
	if err != nil {
		return NumericParts{}, &entities.FormatError{Value: p.Prefix, Expected: "2 digits"}
	}
	port, err := strconv.Atoi(p.Port)
	if err != nil {
		return NumericParts{}, &entities.FormatError{Value: p.Port, Expected: "4 digits"}
	}
	suffix, err := strconv.Atoi(p.Suffix)
	if err != nil {
		return NumericParts{}, &entities.FormatError{Value: p.Suffix, Expected: "2 digits"}
	}
	// Atoi accepts signs, so "-1" passes the width check above
	n := NumericParts{Prefix: prefix, Port: port, Suffix: suffix}
	if !n.Valid() {
		return NumericParts{}, &entities.FormatError{Value: p.String(), Expected: "2+4+2 digits"}
	}
	return n, nil
}

// String re-encodes the parts as the 8-digit identifier
func (p Parts) String() string {
	return p.Prefix + p.Port + p.Suffix
}

// PortNumber is the 6-digit CBP port_number: port followed by suffix
func (p Parts) PortNumber() string {
	return p.Port + p.Suffix
}

// Number re-encodes the parts as an integer
func (p Parts) Number() (int64, error) {
	n, err := p.Numeric()
	if err != nil {
		return 0, err
	}
	return n.Number(), nil
}

// Number re-encodes the parts as an integer
func (n NumericParts) Number() int64 {
	return int64(n.Prefix)*1_000_000 + int64(n.Port)*100 + int64(n.Suffix)
}

// Parts renders each part zero-padded to its fixed width
func (n NumericParts) Parts() Parts {
	return Parts{
		Prefix: fmt.Sprintf("%02d", n.Prefix),
		Port:   fmt.Sprintf("%04d", n.Port),
		Suffix: fmt.Sprintf("%02d", n.Suffix),
	}
}

// Valid reports whether every part is inside its range
func (n NumericParts) Valid() bool {
	return n.Prefix >= 0 && n.Prefix <= 99 &&
		n.Port >= 0 && n.Port <= 9999 &&
		n.Suffix >= 0 && n.Suffix <= 99
}
