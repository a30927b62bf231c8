package models

import (
	"time"
)

type Role string

// Valeurs possibles pour le rôle utilisateur
const (
	AdminRole Role = "ADMIN"
	UserRole  Role = "USER"
)

type User struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email          string     `json:"email" binding:"required,email" gorm:"uniqueIndex"`
	Password       string     `json:"password,omitempty" binding:"required,min=6"`
	UserName       string     `json:"username"`
	Role           Role       `json:"role" gorm:"type:varchar(20);default:'USER'"`
	Entreprise     string     `json:"entreprise"`
	Telephone      string     `json:"telephone"`
	Adresse        string     `json:"adresse"`
	CodePostal     string     `json:"codePostal"`
	Ville          string     `json:"ville"`
	Pays           string     `json:"pays"`
	Enable         bool       `json:"enable" gorm:"default:true"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty" gorm:"index"`
}

type UserCreate struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	UserName string `json:"username"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (User) TableName() string {
	return "users"
}
