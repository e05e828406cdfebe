// Package formschema holds the rules that govern user defined forms: which
// field definitions are valid, which submissions are complete, how stored
// answers are converted between value domains, and which schema changes may
// be applied to a form that already has answers.
//
// The package is pure. Callers load the current state, ask for a verdict or
// a plan, and persist the result themselves.
package formschema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldType is the input type of a form field.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeNumber   FieldType = "number"
	TypeEmail    FieldType = "email"
	TypePhone    FieldType = "phone"
	TypePassword FieldType = "password"
	TypeCurrency FieldType = "currency"
	TypeTextarea FieldType = "textarea"
	TypeDropdown FieldType = "dropdown"
	TypeCheckbox FieldType = "checkbox"
	TypeRadio    FieldType = "radio"
)

// FieldTypes lists every known type in declaration order.
var FieldTypes = []FieldType{
	TypeText, TypeNumber, TypeEmail, TypePhone, TypePassword,
	TypeCurrency, TypeTextarea, TypeDropdown, TypeCheckbox, TypeRadio,
}

// Domain groups field types by the shape of the value they hold.
type Domain int

const (
	DomainUnknown      Domain = iota
	DomainScalar              // one string or number
	DomainChoiceSingle        // one option index
	DomainChoiceMulti         // list of option indexes
)

func (d Domain) String() string {
	switch d {
	case DomainScalar:
		return "scalar"
	case DomainChoiceSingle:
		return "choice-single"
	case DomainChoiceMulti:
		return "choice-multi"
	default:
		return "unknown"
	}
}

var typeDomains = map[FieldType]Domain{
	TypeText:     DomainScalar,
	TypeNumber:   DomainScalar,
	TypeEmail:    DomainScalar,
	TypePhone:    DomainScalar,
	TypePassword: DomainScalar,
	TypeCurrency: DomainScalar,
	TypeTextarea: DomainScalar,
	TypeDropdown: DomainChoiceSingle,
	TypeRadio:    DomainChoiceSingle,
	TypeCheckbox: DomainChoiceMulti,
}

// Valid reports whether t is one of the known types.
func (t FieldType) Valid() bool {
	_, ok := typeDomains[t]
	return ok
}

// Domain returns the value domain of t.
func (t FieldType) Domain() Domain {
	return typeDomains[t]
}

// IsChoice reports whether t selects from an options list.
func (t FieldType) IsChoice() bool {
	d := t.Domain()
	return d == DomainChoiceSingle || d == DomainChoiceMulti
}

// FieldCategory is a descriptive tag on a field. It carries no rules.
type FieldCategory string

const (
	CategoryGeneral     FieldCategory = "general"
	CategoryIdentity    FieldCategory = "identity"
	CategoryBankRelated FieldCategory = "bank-related"
)

// FieldCategories lists every known category.
var FieldCategories = []FieldCategory{CategoryGeneral, CategoryIdentity, CategoryBankRelated}

// Valid reports whether c is one of the known categories.
func (c FieldCategory) Valid() bool {
	for _, known := range FieldCategories {
		if c == known {
			return true
		}
	}
	return false
}

// MinOptions is the smallest options list a choice field may carry.
const MinOptions = 2

// MaxNameLength bounds field and form names.
const MaxNameLength = 255

// FieldSpec is a stored field definition.
type FieldSpec struct {
	ID       uint
	Name     string
	Category FieldCategory
	Type     FieldType
	Order    int
	Required bool
	Options  []string // nil unless Type.IsChoice()
}

// FieldInput is a candidate field definition as received from a client.
// Pointer members distinguish "absent" from the zero value. A nil ID marks a
// new field.
type FieldInput struct {
	ID       *uint    `json:"id,omitempty"`
	Name     *string  `json:"name" validate:"required,max=255"`
	Category *string  `json:"category" validate:"required,oneof=general identity bank-related"`
	Order    *int     `json:"order" validate:"required"`
	Type     *string  `json:"type" validate:"required,oneof=text number email phone password currency textarea dropdown checkbox radio"`
	Required *bool    `json:"required" validate:"required"`
	Options  []string `json:"options,omitempty" validate:"omitempty,dive,required"`

	// attribute → message, for attributes whose JSON type was wrong
	shapeErrors map[string]string
}

// Messages for attributes of the wrong JSON type.
const (
	MsgNotObject  = "The field entry must be an object."
	MsgNotString  = "The %s field must be a string."
	MsgNotInteger = "The %s field must be an integer."
	MsgNotBoolean = "The %s field must be true or false."
	MsgNotStrings = "The options field must be a list of strings."
)

// UnmarshalJSON decodes each attribute on its own. An attribute of the wrong
// JSON type is left unset and reported by ValidateField, so one bad entry
// does not fail the whole request body.
func (in *FieldInput) UnmarshalJSON(data []byte) error {
	*in = FieldInput{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		in.shapeError("", MsgNotObject)
		return nil
	}

	decode := func(attr string, dst any, msg string) {
		value, ok := raw[attr]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return
		}
		if err := json.Unmarshal(value, dst); err != nil {
			in.shapeError(attr, msg)
		}
	}
	decode("id", &in.ID, fmt.Sprintf(MsgNotInteger, "id"))
	decode("name", &in.Name, fmt.Sprintf(MsgNotString, "name"))
	decode("category", &in.Category, fmt.Sprintf(MsgNotString, "category"))
	decode("order", &in.Order, fmt.Sprintf(MsgNotInteger, "order"))
	decode("type", &in.Type, fmt.Sprintf(MsgNotString, "type"))
	decode("required", &in.Required, fmt.Sprintf(MsgNotBoolean, "required"))
	decode("options", &in.Options, MsgNotStrings)

	// A partly decoded attribute is not kept.
	for attr := range in.shapeErrors {
		switch attr {
		case "id":
			in.ID = nil
		case "name":
			in.Name = nil
		case "category":
			in.Category = nil
		case "order":
			in.Order = nil
		case "type":
			in.Type = nil
		case "required":
			in.Required = nil
		case "options":
			in.Options = nil
		}
	}
	return nil
}

func (in *FieldInput) shapeError(attr, msg string) {
	if in.shapeErrors == nil {
		in.shapeErrors = make(map[string]string)
	}
	in.shapeErrors[attr] = msg
}

// Spec converts a validated input into a FieldSpec. Options are dropped for
// non-choice types. Callers must only use it on inputs that passed
// ValidateField.
func (in FieldInput) Spec() FieldSpec {
	spec := FieldSpec{
		Name:     deref(in.Name),
		Category: FieldCategory(deref(in.Category)),
		Type:     FieldType(deref(in.Type)),
	}
	if in.ID != nil {
		spec.ID = *in.ID
	}
	if in.Order != nil {
		spec.Order = *in.Order
	}
	if in.Required != nil {
		spec.Required = *in.Required
	}
	if spec.Type.IsChoice() && len(in.Options) > 0 {
		spec.Options = append([]string(nil), in.Options...)
	}
	return spec
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
