package models

import "gorm.io/gorm"

type MenuItem struct {
	gorm.Model
	Name        string `gorm:"unique;size:100;not null"`
	Type        string `gorm:"index;not null"`
	Price       uint   `gorm:"not null"`
	Description string
	ImageRef    string
}
