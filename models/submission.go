package models

import (
	"gorm.io/datatypes"

	"formfield.app/pkg/formschema"
)

// Submission is one filled-in form. UserID is nil for anonymous submitters.
type Submission struct {
	BaseModel
	FormID uint  `gorm:"index;not null" json:"form_id"`
	UserID *uint `gorm:"index" json:"user_id"`

	// GORM relations
	Form   Form              `gorm:"foreignKey:FormID" json:"-"`
	Values []SubmissionValue `gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// SubmissionValue is the answer of a submission for one field. A row exists
// for every field the submission covers, including null answers.
type SubmissionValue struct {
	SubmissionID uint           `gorm:"primaryKey;autoIncrement:false"`
	FieldID      uint           `gorm:"primaryKey;autoIncrement:false;index"`
	Value        datatypes.JSON `gorm:"not null"`

	Field Field `gorm:"foreignKey:FieldID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName overrides the table name.
func (SubmissionValue) TableName() string { return "field_submission" }

// Decode parses the stored answer.
func (v SubmissionValue) Decode() (formschema.Value, error) {
	return formschema.ParseValue(v.Value)
}

// Encode stores an answer.
func (v *SubmissionValue) Encode(value formschema.Value) error {
	b, err := value.MarshalJSON()
	if err != nil {
		return err
	}
	v.Value = datatypes.JSON(b)
	return nil
}
