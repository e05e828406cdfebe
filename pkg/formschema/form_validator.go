package formschema

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"formfield.app/pkg/validation"
)

const MsgCountryInvalid = "The selected country code is invalid."

// FormInput is a requested form schema as received from a client. On update
// RemovedFields lists the ids of fields to delete.
type FormInput struct {
	Name          *string      `json:"name" validate:"required,max=255"`
	CountryCode   *string      `json:"country_code" validate:"required,len=2"`
	Fields        []FieldInput `json:"fields" validate:"-"`
	RemovedFields []uint       `json:"removed_fields,omitempty" validate:"-"`
}

// ValidateForm checks the form's own attributes, recording failures under
// "name" and "country_code". Fields are checked by ValidateFields or
// PlanMigration. Whether the country exists is left to the caller.
func ValidateForm(in FormInput, errs *validation.Errors) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		errs.Add("name", "The name field is required.")
	}
	if in.CountryCode != nil && strings.TrimSpace(*in.CountryCode) == "" {
		errs.Add("country_code", "The country code field is required.")
	}

	err := structValidator().Struct(in)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("form", err.Error())
		return
	}
	for _, fe := range verrs {
		key := fe.Field()
		if errs.Has(key) {
			continue
		}
		if key == "country_code" && fe.Tag() == "len" {
			errs.Add(key, MsgCountryInvalid)
			continue
		}
		errs.Add(key, strings.Replace(fieldMessage(fe), "country_code", "country code", 1))
	}
}

// FormName returns the trimmed name of a validated input.
func (in FormInput) FormName() string { return strings.TrimSpace(deref(in.Name)) }

// Country returns the upper-cased country code of a validated input.
func (in FormInput) Country() string {
	return strings.ToUpper(strings.TrimSpace(deref(in.CountryCode)))
}
