package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formfield.app/models"
	"formfield.app/pkg/formschema"
	"formfield.app/pkg/queryparams"
	"formfield.app/pkg/validation"
)

func TestCreateForm(t *testing.T) {
	_, forms, _ := setup(t)
	ctx := context.Background()

	form, err := forms.CreateForm(ctx, owner, formschema.FormInput{
		Name:        ptr(" Onboarding "),
		CountryCode: ptr("fr"),
		Fields: []formschema.FieldInput{
			input("color", 2, formschema.TypeDropdown, false, "red", "blue"),
			input("name", 1, formschema.TypeText, true, "ignored", "options"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Onboarding", form.Name)
	assert.Equal(t, "FR", form.CountryCode)
	assert.Equal(t, "EUR", form.Country.CurrencyCode)
	require.Len(t, form.Fields, 2)
	assert.Equal(t, "name", form.Fields[0].Name, "fields come back in display order")
	assert.Nil(t, form.Fields[0].Spec().Options)
	assert.Equal(t, []string{"red", "blue"}, form.Fields[1].Spec().Options)

	ok, err := forms.IsOwner(ctx, form.ID, owner)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = forms.IsOwner(ctx, form.ID, owner+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateForm_ValidationAccumulates(t *testing.T) {
	db, forms, _ := setup(t)

	_, err := forms.CreateForm(context.Background(), owner, formschema.FormInput{
		Name:        ptr(""),
		CountryCode: ptr("ZZ"),
		Fields: []formschema.FieldInput{
			input("a", 1, formschema.TypeText, false),
			input("a", 1, formschema.TypeRadio, false, "only"),
		},
	})
	verrs := validationErrors(t, err)

	assert.True(t, verrs.Has("name"))
	assert.Equal(t, []string{formschema.MsgCountryInvalid}, verrs.Get("country_code"))
	assert.True(t, verrs.Has(formschema.FieldKey(1, "options")))
	assert.ElementsMatch(t, []string{formschema.MsgOrderNotUnique, formschema.MsgNameNotUnique}, verrs.Get(validation.ListKey))

	var count int64
	require.NoError(t, db.Model(&models.Form{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateForm_NoFields(t *testing.T) {
	_, forms, _ := setup(t)
	_, err := forms.CreateForm(context.Background(), owner, formInput("Empty"))
	assert.Equal(t, []string{formschema.MsgFieldsRequired}, validationErrors(t, err).Get(validation.ListKey))
}

func TestGetFormsForUser(t *testing.T) {
	_, forms, _ := setup(t)
	ctx := context.Background()
	for _, name := range []string{"Alpha survey", "Beta poll", "Gamma survey"} {
		_, err := forms.CreateForm(ctx, owner, formInput(name, input("q", 1, formschema.TypeText, false)))
		require.NoError(t, err)
	}
	_, err := forms.CreateForm(ctx, owner+1, formInput("Other survey", input("q", 1, formschema.TypeText, false)))
	require.NoError(t, err)

	params := queryparams.DefaultListParams("name")
	params.OrderBy = "asc"
	params.Name = "SURVEY"
	res, err := forms.GetFormsForUser(ctx, owner, params)
	require.NoError(t, err)

	list := res.Data.([]models.Form)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha survey", list[0].Name)
	assert.Equal(t, "Gamma survey", list[1].Name)
	assert.Equal(t, int64(2), res.Meta.TotalItems)
}

func TestMigrateForm_Forbidden(t *testing.T) {
	_, forms, _ := setup(t)
	form := createForm(t, forms, input("q", 1, formschema.TypeText, false))

	// Authorization is checked before anything else, even an invalid body.
	_, err := forms.MigrateForm(context.Background(), form.ID, false, formschema.FormInput{})
	assert.ErrorIs(t, err, ErrFormForbidden)
}

func TestMigrateForm_NotFound(t *testing.T) {
	_, forms, _ := setup(t)
	_, err := forms.MigrateForm(context.Background(), 999, true, formInput("x", input("q", 1, formschema.TypeText, false)))
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestMigrateForm_RequiredEscalation(t *testing.T) {
	db, forms, subs := setup(t)
	ctx := context.Background()
	form := createForm(t, forms, input("nickname", 1, formschema.TypeText, false))
	nickname := form.Fields[0]
	submitter := ptr(uint(42))
	sub := submit(t, subs, form.ID, submitter, map[uint]any{nickname.ID: nil})

	escalate := existing(nickname)
	escalate.Required = ptr(true)

	_, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", escalate))
	assert.Equal(t, []string{formschema.MsgCannotRequire}, validationErrors(t, err).Get(formschema.ValueKey(nickname.ID)))

	_, err = subs.UpdateSubmission(ctx, sub.Submission.ID, *submitter, answers(t, map[uint]any{nickname.ID: "Ada"}))
	require.NoError(t, err)

	res, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", escalate))
	require.NoError(t, err)
	assert.True(t, res.Form.Fields[0].Required)
	assert.Equal(t, formschema.Text("Ada"), storedValue(t, db, sub.Submission.ID, nickname.ID))
}

func TestMigrateForm_ChoiceImmutability(t *testing.T) {
	_, forms, subs := setup(t)
	ctx := context.Background()

	t.Run("with values", func(t *testing.T) {
		form := createForm(t, forms, input("color", 1, formschema.TypeDropdown, false, "red", "blue"))
		color := form.Fields[0]
		submit(t, subs, form.ID, nil, map[uint]any{color.ID: 1})

		retyped := existing(color)
		retyped.Type = ptr(string(formschema.TypeText))
		_, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", retyped))
		assert.Equal(t, []string{formschema.MsgCannotChangeType}, validationErrors(t, err).Get(formschema.ValueKey(color.ID)))
	})

	t.Run("without submissions", func(t *testing.T) {
		form := createForm(t, forms, input("color", 1, formschema.TypeDropdown, false, "red", "blue"))
		retyped := existing(form.Fields[0])
		retyped.Type = ptr(string(formschema.TypeText))
		res, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", retyped))
		require.NoError(t, err)
		assert.Equal(t, string(formschema.TypeText), res.Form.Fields[0].Type)
		assert.Nil(t, res.Form.Fields[0].Spec().Options)
	})
}

func TestMigrateForm_TextToNumber(t *testing.T) {
	db, forms, subs := setup(t)
	ctx := context.Background()

	t.Run("numeric values convert", func(t *testing.T) {
		form := createForm(t, forms, input("age", 1, formschema.TypeText, false))
		age := form.Fields[0]
		a := submit(t, subs, form.ID, nil, map[uint]any{age.ID: "42"})
		b := submit(t, subs, form.ID, nil, map[uint]any{age.ID: nil})

		retyped := existing(age)
		retyped.Type = ptr(string(formschema.TypeNumber))
		res, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", retyped))
		require.NoError(t, err)

		assert.Equal(t, 1, res.Converted)
		assert.Empty(t, res.Skipped)
		assert.Equal(t, formschema.Number(42), storedValue(t, db, a.Submission.ID, age.ID))
		assert.True(t, storedValue(t, db, b.Submission.ID, age.ID).IsNull())
	})

	t.Run("non-numeric values block", func(t *testing.T) {
		form := createForm(t, forms, input("age", 1, formschema.TypeText, false))
		age := form.Fields[0]
		sub := submit(t, subs, form.ID, nil, map[uint]any{age.ID: "abc"})

		retyped := existing(age)
		retyped.Type = ptr(string(formschema.TypeCurrency))
		_, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", retyped))
		assert.Equal(t, []string{formschema.MsgCannotChangeType}, validationErrors(t, err).Get(formschema.ValueKey(age.ID)))
		assert.Equal(t, formschema.Text("abc"), storedValue(t, db, sub.Submission.ID, age.ID))
	})
}

func TestMigrateForm_CheckboxToDropdown(t *testing.T) {
	db, forms, subs := setup(t)
	ctx := context.Background()

	t.Run("single selections convert", func(t *testing.T) {
		form := createForm(t, forms, input("tags", 1, formschema.TypeCheckbox, false, "a", "b", "c"))
		tags := form.Fields[0]
		sub := submit(t, subs, form.ID, nil, map[uint]any{tags.ID: []int{2}})

		retyped := existing(tags)
		retyped.Type = ptr(string(formschema.TypeDropdown))
		_, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", retyped))
		require.NoError(t, err)
		assert.Equal(t, formschema.ChoiceSingle(2), storedValue(t, db, sub.Submission.ID, tags.ID))
	})

	t.Run("multiple selections block", func(t *testing.T) {
		form := createForm(t, forms, input("tags", 1, formschema.TypeCheckbox, false, "a", "b", "c"))
		tags := form.Fields[0]
		submit(t, subs, form.ID, nil, map[uint]any{tags.ID: []int{0, 1}})

		retyped := existing(tags)
		retyped.Type = ptr(string(formschema.TypeRadio))
		_, err := forms.MigrateForm(ctx, form.ID, true, formInput("Survey", retyped))
		assert.Equal(t, []string{formschema.MsgCannotChangeType}, validationErrors(t, err).Get(formschema.ValueKey(tags.ID)))
	})
}

func TestMigrateForm_RemovalCascades(t *testing.T) {
	db, forms, subs := setup(t)
	form := createForm(t, forms,
		input("keep", 1, formschema.TypeText, false),
		input("drop", 2, formschema.TypeText, true),
	)
	keep, drop := fieldNamed(t, form, "keep"), fieldNamed(t, form, "drop")
	submit(t, subs, form.ID, nil, map[uint]any{keep.ID: "k", drop.ID: "d"})

	in := formInput("Survey", existing(keep), input("added", 2, formschema.TypeNumber, false))
	in.RemovedFields = []uint{drop.ID}
	res, err := forms.MigrateForm(context.Background(), form.ID, true, in)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Form.Fields, 2)
	assert.Equal(t, "added", res.Form.Fields[1].Name, "the freed order can be reused")

	var count int64
	require.NoError(t, db.Model(&models.SubmissionValue{}).Where("field_id = ?", drop.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.SubmissionValue{}).Where("field_id = ?", res.Form.Fields[1].ID).Count(&count).Error)
	assert.Zero(t, count, "new fields are not backfilled")
}

func TestMigrateForm_AllOrNothing(t *testing.T) {
	db, forms, subs := setup(t)
	form := createForm(t, forms,
		input("title", 1, formschema.TypeText, false),
		input("note", 2, formschema.TypeText, false),
	)
	title, note := fieldNamed(t, form, "title"), fieldNamed(t, form, "note")
	submit(t, subs, form.ID, nil, map[uint]any{title.ID: "t", note.ID: nil})

	renamed := existing(title)
	renamed.Name = ptr("headline")
	escalated := existing(note)
	escalated.Required = ptr(true)

	in := formInput("Renamed survey", renamed, escalated, input("extra", 3, formschema.TypeText, false))
	_, err := forms.MigrateForm(context.Background(), form.ID, true, in)
	validationErrors(t, err)

	var reloaded models.Form
	require.NoError(t, db.Preload("Fields").First(&reloaded, form.ID).Error)
	assert.Equal(t, "Survey", reloaded.Name)
	require.Len(t, reloaded.Fields, 2)
	for _, f := range reloaded.Fields {
		assert.NotEqual(t, "headline", f.Name)
	}
}

func TestMigrateForm_SwapOrders(t *testing.T) {
	_, forms, _ := setup(t)
	form := createForm(t, forms,
		input("first", 1, formschema.TypeText, false),
		input("second", 2, formschema.TypeText, false),
	)
	first, second := existing(fieldNamed(t, form, "first")), existing(fieldNamed(t, form, "second"))
	first.Order, second.Order = ptr(2), ptr(1)

	res, err := forms.MigrateForm(context.Background(), form.ID, true, formInput("Survey", first, second))
	require.NoError(t, err)
	assert.Equal(t, "second", res.Form.Fields[0].Name)
	assert.Equal(t, "first", res.Form.Fields[1].Name)
}

func TestMigrateForm_UnknownIDs(t *testing.T) {
	_, forms, _ := setup(t)
	form := createForm(t, forms, input("q", 1, formschema.TypeText, false))
	other := createForm(t, forms, input("q", 1, formschema.TypeText, false))

	foreign := existing(other.Fields[0])
	in := formInput("Survey", foreign)
	in.RemovedFields = []uint{other.Fields[0].ID}
	_, err := forms.MigrateForm(context.Background(), form.ID, true, in)

	verrs := validationErrors(t, err)
	assert.Equal(t, []string{formschema.MsgUnknownField}, verrs.Get(formschema.FieldKey(0, "id")))
	assert.Equal(t, []string{formschema.MsgUnknownField}, verrs.Get(formschema.RemovedKey(0)))
}

func TestDeleteForm(t *testing.T) {
	db, forms, subs := setup(t)
	ctx := context.Background()
	form := createForm(t, forms, input("q", 1, formschema.TypeText, false))
	submit(t, subs, form.ID, nil, map[uint]any{form.Fields[0].ID: "a"})

	assert.ErrorIs(t, forms.DeleteForm(ctx, form.ID, false), ErrFormForbidden)
	require.NoError(t, forms.DeleteForm(ctx, form.ID, true))
	assert.ErrorIs(t, forms.DeleteForm(ctx, form.ID, true), ErrFormNotFound)

	for _, model := range []any{&models.Form{}, &models.Field{}, &models.Submission{}, &models.SubmissionValue{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}
}
