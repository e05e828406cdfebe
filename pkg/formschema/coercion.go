package formschema

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericPattern accepts what a form user would type as a number: optional
// sign, digits with an optional fraction, optional exponent, surrounding
// whitespace.
var numericPattern = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)

// IsNumeric reports whether v is a number, or a string holding one.
func IsNumeric(v Value) bool {
	switch v.kind {
	case KindNumber, KindCurrency:
		return true
	case KindText:
		return numericPattern.MatchString(v.text)
	}
	return false
}

// coercion converts one value shape into the value shape of a target type.
// ok is false when the value's shape is not one the rule accepts.
type coercion func(v Value) (out Value, ok bool)

// coercions is the dispatch table: target type → rule. Targets of the same
// value class share a rule.
var coercions = map[FieldType]coercion{
	TypeNumber:   toNumber,
	TypeCurrency: toCurrency,
	TypeDropdown: toChoiceSingle,
	TypeRadio:    toChoiceSingle,
	TypeCheckbox: toChoiceMulti,
	TypeText:     toText,
	TypeTextarea: toText,
	TypeEmail:    toText,
	TypePhone:    toText,
	TypePassword: toText,
}

// Coerce converts v into the value domain of to. It returns v unchanged and
// true when v already has the target shape or is null. It returns v
// unchanged and false when v's shape cannot be converted.
func Coerce(v Value, to FieldType) (Value, bool) {
	if v.IsNull() {
		return v, true
	}
	rule, ok := coercions[to]
	if !ok {
		return v, false
	}
	return rule(v)
}

// Convert applies the conversion used when a field's type changes from
// `from` to `to`. Identical types leave the value alone.
func Convert(v Value, from, to FieldType) (Value, bool) {
	if from == to {
		return v, true
	}
	return Coerce(v, to)
}

// Normalize is Coerce for submitted answers. Values that cannot be coerced,
// or would lose part of their content, are kept as submitted.
func Normalize(v Value, to FieldType) Value {
	if !lossless(v, to) {
		return v
	}
	out, _ := Coerce(v, to)
	return out
}

// lossless reports whether coercing v toward to keeps all of v: a list only
// collapses to a scalar when it holds exactly one entry, and a fraction is
// never truncated.
func lossless(v Value, to FieldType) bool {
	multi := to.Domain() == DomainChoiceMulti
	switch v.kind {
	case KindChoices:
		return multi || len(v.choices) == 1
	case KindText:
		if to == TypeNumber || multi {
			_, err := strconv.ParseInt(strings.TrimSpace(v.text), 10, 64)
			return err == nil
		}
	case KindCurrency:
		if multi {
			return v.currency == math.Trunc(v.currency)
		}
	}
	return true
}

// --- rules ---

func toNumber(v Value) (Value, bool) {
	switch v.kind {
	case KindNumber:
		return v, true
	case KindText:
		n, ok := parseInt(v.text)
		if !ok {
			return v, false
		}
		return Number(n), true
	case KindChoices:
		if len(v.choices) == 0 {
			return Empty(), true
		}
		return Number(int64(v.choices[0])), true
	}
	return v, false
}

func toCurrency(v Value) (Value, bool) {
	switch v.kind {
	case KindCurrency, KindNumber:
		return v, true
	case KindText:
		if !numericPattern.MatchString(v.text) {
			return v, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsInf(f, 0) {
			return v, false
		}
		return Currency(f), true
	}
	return v, false
}

func toChoiceSingle(v Value) (Value, bool) {
	switch v.kind {
	case KindNumber:
		return v, true
	case KindChoices:
		if len(v.choices) == 0 {
			return Empty(), true
		}
		return ChoiceSingle(v.choices[0]), true
	}
	return v, false
}

func toChoiceMulti(v Value) (Value, bool) {
	switch v.kind {
	case KindChoices:
		return v, true
	case KindNumber:
		return ChoiceMulti(int(v.number)), true
	case KindCurrency:
		if !fitsInt(v.currency) {
			return v, false
		}
		return ChoiceMulti(int(v.currency)), true
	case KindText:
		n, ok := parseInt(v.text)
		if !ok || n > math.MaxInt || n < math.MinInt {
			return v, false
		}
		return ChoiceMulti(int(n)), true
	}
	return v, false
}

func toText(v Value) (Value, bool) {
	switch v.kind {
	case KindText:
		return v, true
	case KindNumber:
		return Text(strconv.FormatInt(v.number, 10)), true
	case KindCurrency:
		return Text(strconv.FormatFloat(v.currency, 'f', -1, 64)), true
	case KindChoices:
		if len(v.choices) == 0 {
			return Empty(), true
		}
		return Text(strconv.Itoa(v.choices[0])), true
	}
	return v, false
}

// parseInt reads a numeric string as an integer, truncating any fraction.
func parseInt(s string) (int64, bool) {
	if !numericPattern.MatchString(s) {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !fitsInt(f) {
		return 0, false
	}
	return int64(f), true
}

// fitsInt reports whether f truncates to a value of int.
func fitsInt(f float64) bool {
	return !math.IsNaN(f) && f < math.MaxInt && f >= math.MinInt
}
