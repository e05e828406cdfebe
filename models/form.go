package models

// Form is a form schema owned by a user.
type Form struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	CountryCode string `gorm:"type:varchar(2);index;not null" json:"country_code"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`

	// GORM relations
	Country     Country      `gorm:"foreignKey:CountryCode;references:Code" json:"-"`
	Fields      []Field      `gorm:"foreignKey:FormID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"fields,omitempty"`
	Submissions []Submission `gorm:"foreignKey:FormID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
