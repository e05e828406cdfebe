package formschema

import (
	"strconv"

	"formfield.app/pkg/validation"
)

const (
	MsgFieldsMissing = "Some fields are missing or invalid."
	MsgFieldRequired = "This field is required."
)

// ValueKey is the error key of a field's answer.
func ValueKey(fieldID uint) string {
	return strconv.FormatUint(uint64(fieldID), 10)
}

// ValidateSubmission checks a new submission against the form's fields. The
// supplied keys must be exactly the form's field ids, and required fields
// must not be blank (null or an empty list). Values are not checked against
// the field's domain.
func ValidateSubmission(fields []FieldSpec, values map[string]Value, errs *validation.Errors) {
	matched := 0
	for _, f := range fields {
		if _, ok := values[ValueKey(f.ID)]; ok {
			matched++
		}
	}
	if matched != len(fields) || len(values) != len(fields) {
		errs.Add(validation.ListKey, MsgFieldsMissing)
	}

	for _, f := range fields {
		if !f.Required {
			continue
		}
		if v, ok := values[ValueKey(f.ID)]; !ok || v.IsBlank() {
			errs.Add(ValueKey(f.ID), MsgFieldRequired)
		}
	}
}

// ValidateSubmissionUpdate checks a partial edit of an existing submission.
// Every supplied key must name a field the submission already covers, and a
// required field may not be cleared.
func ValidateSubmissionUpdate(fields []FieldSpec, covered map[uint]bool, values map[string]Value, errs *validation.Errors) {
	byKey := make(map[string]FieldSpec, len(fields))
	for _, f := range fields {
		byKey[ValueKey(f.ID)] = f
	}

	invalid := false
	for key, v := range values {
		f, ok := byKey[key]
		if !ok || !covered[f.ID] {
			invalid = true
			continue
		}
		if f.Required && v.IsBlank() {
			errs.Add(key, MsgFieldRequired)
		}
	}
	if invalid || len(values) == 0 {
		errs.Add(validation.ListKey, MsgFieldsMissing)
	}
}
