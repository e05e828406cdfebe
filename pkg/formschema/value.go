package formschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"formfield.app/pkg/validation"
)

// ValueKind is the runtime shape of a stored answer.
type ValueKind int

const (
	KindEmpty    ValueKind = iota // null
	KindText                      // JSON string
	KindNumber                    // JSON integer; also a single choice index
	KindCurrency                  // JSON number with a fraction or exponent
	KindChoices                   // JSON array of integers
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindCurrency:
		return "currency"
	case KindChoices:
		return "choices"
	default:
		return "unknown"
	}
}

// ErrInvalidValue is returned when a JSON document is not a storable answer.
var ErrInvalidValue = errors.New("formschema: value must be null, a string, a number or a list of integers")

// Value is one stored answer. A single choice index shares the integer
// shape with Number, since both are persisted as a bare JSON integer.
type Value struct {
	kind     ValueKind
	text     string
	number   int64
	currency float64
	choices  []int
}

// Empty returns the null value.
func Empty() Value { return Value{} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns an integer value.
func Number(n int64) Value { return Value{kind: KindNumber, number: n} }

// Currency returns a floating point value.
func Currency(f float64) Value { return Value{kind: KindCurrency, currency: f} }

// ChoiceSingle returns a single option index.
func ChoiceSingle(index int) Value { return Number(int64(index)) }

// ChoiceMulti returns a list of option indexes. A nil list is stored as [].
func ChoiceMulti(indexes ...int) Value {
	return Value{kind: KindChoices, choices: append([]int{}, indexes...)}
}

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindEmpty }

// IsBlank reports whether v counts as "no answer": null or an empty list.
func (v Value) IsBlank() bool {
	return v.kind == KindEmpty || (v.kind == KindChoices && len(v.choices) == 0)
}

// Choices returns a copy of the indexes of a choices value.
func (v Value) Choices() ([]int, bool) {
	if v.kind != KindChoices {
		return nil, false
	}
	return append([]int{}, v.choices...), true
}

// Equal reports whether v and o have the same shape and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.number == o.number
	case KindCurrency:
		return v.currency == o.currency
	case KindChoices:
		if len(v.choices) != len(o.choices) {
			return false
		}
		for i := range v.choices {
			if v.choices[i] != o.choices[i] {
				return false
			}
		}
	}
	return true
}

// String renders v for logs.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}

// MarshalJSON encodes v. Currency values always carry a fraction so that
// they decode back as currency.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindEmpty:
		return []byte("null"), nil
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(strconv.FormatInt(v.number, 10)), nil
	case KindCurrency:
		if math.IsNaN(v.currency) || math.IsInf(v.currency, 0) {
			return nil, fmt.Errorf("formschema: cannot encode %v", v.currency)
		}
		s := strconv.FormatFloat(v.currency, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return []byte(s), nil
	case KindChoices:
		if v.choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.choices)
	default:
		return nil, fmt.Errorf("formschema: unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON decodes a stored or submitted answer by its JSON shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValue decodes raw JSON into a Value. Empty input is treated as null.
func ParseValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Empty(), nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Value{}, err
		}
		return Text(s), nil
	case '[':
		var raw []json.Number
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return Value{}, ErrInvalidValue
		}
		out := make([]int, 0, len(raw))
		for _, n := range raw {
			i, err := strconv.Atoi(n.String())
			if err != nil {
				return Value{}, ErrInvalidValue
			}
			out = append(out, i)
		}
		return Value{kind: KindChoices, choices: out}, nil
	default:
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return Value{}, ErrInvalidValue
		}
		lit := n.String()
		if !strings.ContainsAny(lit, ".eE") {
			if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
				return Number(i), nil
			}
		}
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return Value{}, ErrInvalidValue
		}
		return Currency(f), nil
	}
}

// DecodeValues parses a submitted answer map. Answers that are not valid
// values are reported under their key and left out of the result.
func DecodeValues(raw map[string]json.RawMessage, errs *validation.Errors) map[string]Value {
	out := make(map[string]Value, len(raw))
	for key, data := range raw {
		v, err := ParseValue(data)
		if err != nil {
			errs.Add(key, "The value is invalid.")
			continue
		}
		out[key] = v
	}
	return out
}
