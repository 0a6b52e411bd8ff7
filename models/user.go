package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Login         string  `gorm:"unique;not null"`
	Password      string  `gorm:"not null"`
	PhoneNumber   string  `gorm:"size:13"`
	FavoriteItems string  `gorm:"size:400"`
	Orders        []Order `gorm:"foreignKey:Login;references:Login"`
	LoginTokens   []LoginToken
	Role          Role `gorm:"not null"`
}
