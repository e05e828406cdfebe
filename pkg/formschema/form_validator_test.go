package formschema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"formfield.app/pkg/validation"
)

func TestValidateForm(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		errs := validation.New()
		in := FormInput{Name: ptr(" Onboarding "), CountryCode: ptr("de")}
		ValidateForm(in, errs)
		assert.True(t, errs.Empty(), errs.Error())
		assert.Equal(t, "Onboarding", in.FormName())
		assert.Equal(t, "DE", in.Country())
	})
	t.Run("missing", func(t *testing.T) {
		errs := validation.New()
		ValidateForm(FormInput{}, errs)
		assert.Equal(t, []string{"The name field is required."}, errs.Get("name"))
		assert.Equal(t, []string{"The country code field is required."}, errs.Get("country_code"))
	})
	t.Run("blank name", func(t *testing.T) {
		errs := validation.New()
		ValidateForm(FormInput{Name: ptr("  "), CountryCode: ptr("DE")}, errs)
		assert.Equal(t, []string{"The name field is required."}, errs.Get("name"))
	})
	t.Run("too long and malformed", func(t *testing.T) {
		errs := validation.New()
		ValidateForm(FormInput{Name: ptr(strings.Repeat("x", 256)), CountryCode: ptr("DEU")}, errs)
		assert.Equal(t, []string{"The name field must not be greater than 255 characters."}, errs.Get("name"))
		assert.Equal(t, []string{MsgCountryInvalid}, errs.Get("country_code"))
	})
}
