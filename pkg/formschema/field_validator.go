package formschema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"formfield.app/pkg/validation"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the shared validator. Field errors are reported
// under their json names.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// FieldKey returns the error key of attribute attr of the candidate at index.
func FieldKey(index int, attr string) string {
	if attr == "" {
		return fmt.Sprintf("%s.%d", validation.ListKey, index)
	}
	return fmt.Sprintf("%s.%d.%s", validation.ListKey, index, attr)
}

// shapeOrder is the order in which wrong-typed attributes are reported.
var shapeOrder = []string{"id", "name", "category", "order", "type", "required", "options"}

// ValidateField checks one candidate field definition and records every
// failure in errs under "fields.<index>.<attribute>". It reports whether the
// candidate is valid.
func ValidateField(index int, in FieldInput, errs *validation.Errors) bool {
	before := errs.Len()

	if msg, ok := in.shapeErrors[""]; ok {
		errs.Add(FieldKey(index, ""), msg)
		return false
	}
	for _, attr := range shapeOrder {
		if msg, ok := in.shapeErrors[attr]; ok {
			errs.Add(FieldKey(index, attr), msg)
		}
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		errs.Add(FieldKey(index, "name"), "The name field is required.")
	}

	if err := structValidator().Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs.Add(FieldKey(index, ""), err.Error())
		}
		for _, fe := range verrs {
			attr := fe.Field()
			if _, bad := in.shapeErrors[attr]; bad {
				continue
			}
			if strings.HasPrefix(attr, "options[") {
				// options[1] → options.1
				attr = "options." + strings.TrimSuffix(strings.TrimPrefix(attr, "options["), "]")
			}
			errs.Add(FieldKey(index, attr), fieldMessage(fe))
		}
	}

	_, badOptions := in.shapeErrors["options"]
	if !badOptions && in.Type != nil && FieldType(*in.Type).IsChoice() && len(in.Options) < MinOptions {
		errs.Addf(FieldKey(index, "options"),
			"The options field is required for %s fields and must contain at least %d options.", *in.Type, MinOptions)
	}

	return errs.Len() == before
}

func fieldMessage(fe validator.FieldError) string {
	attr := fe.Field()
	if i := strings.IndexByte(attr, '['); i >= 0 {
		attr = attr[:i] + " entry"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", attr, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", attr)
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}
