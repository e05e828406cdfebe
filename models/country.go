package models

// Country is reference data a form is bound to.
type Country struct {
	BaseModel
	Code         string `gorm:"type:varchar(2);uniqueIndex;not null" json:"code"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	CurrencyCode string `gorm:"type:varchar(3);not null" json:"currency_code"`
	PhoneCode    string `gorm:"type:varchar(8);not null" json:"phone_code"`
}
