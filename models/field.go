package models

import (
	"encoding/json"

	"gorm.io/datatypes"

	"formfield.app/pkg/formschema"
)

// Field is one field definition of a form.
type Field struct {
	BaseModel
	FormID   uint           `gorm:"index;not null" json:"form_id"`
	Name     string         `gorm:"type:varchar(255);not null" json:"name"`
	Category string         `gorm:"type:varchar(32);not null" json:"category"`
	Type     string         `gorm:"type:varchar(32);not null" json:"type"`
	Order    int            `gorm:"column:sort_order;not null" json:"order"`
	Required bool           `gorm:"not null;default:false" json:"required"`
	Options  datatypes.JSON `json:"options,omitempty"`
}

// Spec converts the row to its schema definition. Undecodable options are
// treated as none.
func (f Field) Spec() formschema.FieldSpec {
	spec := formschema.FieldSpec{
		ID:       f.ID,
		Name:     f.Name,
		Category: formschema.FieldCategory(f.Category),
		Type:     formschema.FieldType(f.Type),
		Order:    f.Order,
		Required: f.Required,
	}
	if len(f.Options) > 0 {
		var opts []string
		if err := json.Unmarshal(f.Options, &opts); err == nil {
			spec.Options = opts
		}
	}
	return spec
}

// Apply copies a schema definition onto the row. ID and FormID are left
// alone.
func (f *Field) Apply(spec formschema.FieldSpec) error {
	f.Name = spec.Name
	f.Category = string(spec.Category)
	f.Type = string(spec.Type)
	f.Order = spec.Order
	f.Required = spec.Required
	f.Options = nil
	if spec.Options != nil {
		b, err := json.Marshal(spec.Options)
		if err != nil {
			return err
		}
		f.Options = datatypes.JSON(b)
	}
	return nil
}

// FieldSpecs converts rows to schema definitions, keeping their order.
func FieldSpecs(fields []Field) []formschema.FieldSpec {
	specs := make([]formschema.FieldSpec, len(fields))
	for i, f := range fields {
		specs[i] = f.Spec()
	}
	return specs
}
