package models

import "gorm.io/gorm"

type Order struct {
	gorm.Model
	Login string       `gorm:"index;not null"`
	Paid  bool         `gorm:"not null;default:false"`
	Total uint         `gorm:"not null"`
	Items []ItemStatus `gorm:"foreignKey:OrderID"`
}
