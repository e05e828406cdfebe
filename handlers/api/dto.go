package api

import (
	"encoding/json"
	"time"

	"formfield.app/models"
	"formfield.app/pkg/formschema"
	"formfield.app/services"
)

// CountryResponse is a country as listed to clients.
type CountryResponse struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code"`
	PhoneCode    string `json:"phone_code"`
}

// FieldResponse is a field definition.
type FieldResponse struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Order    int      `json:"order"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// FormResponse is a form with its fields in display order.
type FormResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	CountryCode   string          `json:"country_code"`
	Country       CountryResponse `json:"country"`
	EditPermitted bool            `json:"edit_permitted"`
	Fields        []FieldResponse `json:"fields"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FormSummary is a form in a listing.
type FormSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	CountryCode string    `json:"country_code"`
	FieldCount  int       `json:"field_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConversionWarning is a stored answer a schema change left as it was.
type ConversionWarning struct {
	SubmissionID uint             `json:"submission_id"`
	FieldID      uint             `json:"field_id"`
	From         string           `json:"from"`
	To           string           `json:"to"`
	Value        formschema.Value `json:"value"`
}

// MigrationResponse is the result of a schema change.
type MigrationResponse struct {
	Form      FormResponse        `json:"form"`
	Removed   int                 `json:"removed"`
	Updated   int                 `json:"updated"`
	Created   int                 `json:"created"`
	Converted int                 `json:"converted"`
	Warnings  []ConversionWarning `json:"warnings"`
}

// SubmissionField is a field with the submission's answer.
type SubmissionField struct {
	FieldResponse
	Value formschema.Value `json:"value"`
}

// SubmissionResponse is a submission read against its form's current
// fields.
type SubmissionResponse struct {
	ID            uint              `json:"id"`
	FormID        uint              `json:"form_id"`
	FormName      string            `json:"form_name"`
	UserID        *uint             `json:"user_id"`
	Country       CountryResponse   `json:"country"`
	EditPermitted bool              `json:"edit_permitted"`
	Fields        []SubmissionField `json:"fields"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SubmissionSummary is a submission in a listing.
type SubmissionSummary struct {
	ID        uint      `json:"id"`
	FormID    uint      `json:"form_id"`
	FormName  string    `json:"form_name"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmissionRequest is the body of a new or edited submission: answers keyed
// by field id.
type SubmissionRequest struct {
	Fields map[string]json.RawMessage `json:"fields"`
}

// --- conversions ---

func toCountry(c models.Country) CountryResponse {
	return CountryResponse{Code: c.Code, Name: c.Name, CurrencyCode: c.CurrencyCode, PhoneCode: c.PhoneCode}
}

func toField(f models.Field) FieldResponse {
	spec := f.Spec()
	return FieldResponse{
		ID:       spec.ID,
		Name:     spec.Name,
		Category: string(spec.Category),
		Type:     string(spec.Type),
		Order:    spec.Order,
		Required: spec.Required,
		Options:  spec.Options,
	}
}

func toForm(form *models.Form, viewerID uint) FormResponse {
	out := FormResponse{
		ID:            form.ID,
		Name:          form.Name,
		CountryCode:   form.CountryCode,
		Country:       toCountry(form.Country),
		EditPermitted: viewerID != 0 && viewerID == form.UserID,
		Fields:        make([]FieldResponse, len(form.Fields)),
		CreatedAt:     form.CreatedAt,
		UpdatedAt:     form.UpdatedAt,
	}
	for i, f := range form.Fields {
		out.Fields[i] = toField(f)
	}
	return out
}

func toFormSummaries(forms []models.Form) []FormSummary {
	out := make([]FormSummary, len(forms))
	for i, f := range forms {
		out[i] = FormSummary{ID: f.ID, Name: f.Name, CountryCode: f.CountryCode, FieldCount: len(f.Fields), CreatedAt: f.CreatedAt}
	}
	return out
}

func toMigration(res *services.MigrationResult, viewerID uint) MigrationResponse {
	out := MigrationResponse{
		Form:      toForm(res.Form, viewerID),
		Removed:   res.Removed,
		Updated:   res.Updated,
		Created:   res.Created,
		Converted: res.Converted,
		Warnings:  make([]ConversionWarning, len(res.Skipped)),
	}
	for i, sk := range res.Skipped {
		out.Warnings[i] = ConversionWarning{
			SubmissionID: sk.SubmissionID,
			FieldID:      sk.FieldID,
			From:         string(sk.From),
			To:           string(sk.To),
			Value:        sk.Value,
		}
	}
	return out
}

func toSubmission(d *services.SubmissionDetail, viewerID uint) SubmissionResponse {
	s := d.Submission
	out := SubmissionResponse{
		ID:            s.ID,
		FormID:        s.FormID,
		FormName:      d.Form.Name,
		UserID:        s.UserID,
		Country:       toCountry(d.Form.Country),
		EditPermitted: s.UserID != nil && viewerID != 0 && *s.UserID == viewerID,
		Fields:        make([]SubmissionField, len(d.Form.Fields)),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	for i, f := range d.Form.Fields {
		out.Fields[i] = SubmissionField{FieldResponse: toField(f), Value: d.Values[f.ID]}
	}
	return out
}

func toSubmissionSummaries(subs []models.Submission) []SubmissionSummary {
	out := make([]SubmissionSummary, len(subs))
	for i, s := range subs {
		out[i] = SubmissionSummary{ID: s.ID, FormID: s.FormID, FormName: s.Form.Name, CreatedAt: s.CreatedAt}
	}
	return out
}
