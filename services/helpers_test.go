package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"formfield.app/internal/testdb"
	"formfield.app/models"
	"formfield.app/pkg/formschema"
	"formfield.app/pkg/validation"
)

const owner uint = 7

func setup(t *testing.T) (*gorm.DB, IFormService, ISubmissionService) {
	t.Helper()
	db := testdb.Open(t)
	return db, NewFormService(), NewSubmissionService()
}

func ptr[T any](v T) *T { return &v }

func input(name string, order int, typ formschema.FieldType, required bool, options ...string) formschema.FieldInput {
	return formschema.FieldInput{
		Name:     ptr(name),
		Category: ptr(string(formschema.CategoryGeneral)),
		Order:    ptr(order),
		Type:     ptr(string(typ)),
		Required: ptr(required),
		Options:  options,
	}
}

// existing turns a stored field back into an update candidate.
func existing(f models.Field) formschema.FieldInput {
	spec := f.Spec()
	in := input(spec.Name, spec.Order, spec.Type, spec.Required, spec.Options...)
	in.ID = ptr(f.ID)
	in.Category = ptr(string(spec.Category))
	return in
}

func formInput(name string, fields ...formschema.FieldInput) formschema.FormInput {
	return formschema.FormInput{Name: ptr(name), CountryCode: ptr("US"), Fields: fields}
}

func createForm(t *testing.T, svc IFormService, fields ...formschema.FieldInput) *models.Form {
	t.Helper()
	form, err := svc.CreateForm(context.Background(), owner, formInput("Survey", fields...))
	require.NoError(t, err)
	return form
}

func fieldNamed(t *testing.T, form *models.Form, name string) models.Field {
	t.Helper()
	for _, f := range form.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("form %d has no field %q", form.ID, name)
	return models.Field{}
}

// answers builds a submission body keyed by field id.
func answers(t *testing.T, values map[uint]any) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage, len(values))
	for id, v := range values {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		out[formschema.ValueKey(id)] = b
	}
	return out
}

func submit(t *testing.T, svc ISubmissionService, formID uint, submitter *uint, values map[uint]any) *SubmissionDetail {
	t.Helper()
	d, err := svc.RecordSubmission(context.Background(), formID, submitter, answers(t, values))
	require.NoError(t, err)
	return d
}

func validationErrors(t *testing.T, err error) *validation.Errors {
	t.Helper()
	var verrs *validation.Errors
	require.ErrorAs(t, err, &verrs)
	return verrs
}

func storedValue(t *testing.T, db *gorm.DB, submissionID, fieldID uint) formschema.Value {
	t.Helper()
	var row models.SubmissionValue
	require.NoError(t, db.Where("submission_id = ? AND field_id = ?", submissionID, fieldID).First(&row).Error)
	v, err := row.Decode()
	require.NoError(t, err)
	return v
}
