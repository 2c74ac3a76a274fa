package models

import (
	"time"

	"gorm.io/datatypes"
)

type Class struct {
	ID       uint                        `json:"id" gorm:"primaryKey"`
	Name     string                      `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Sections datatypes.JSONSlice[string] `json:"sections" gorm:"type:jsonb"` // set semantics, e.g. ["A","B"]
}

func (Class) TableName() string {
	return "classes"
}

// HasSection reports whether section is already present; AddSection on the
// service layer is idempotent through this check.
func (c *Class) HasSection(section string) bool {
	for _, s := range c.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Resource is a moderator-curated study resource scoped to a class/section.
type Resource struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:300"`
	Description string    `json:"description" gorm:"type:text"`
	File        string    `json:"file" gorm:"size:500"` // object storage URL
	Link        string    `json:"link" gorm:"size:500"`
	Class       string    `json:"class" gorm:"size:50;index"`
	Section     string    `json:"section" gorm:"size:50"`
	Group       string    `json:"group" gorm:"size:50"`
	ModeratorID uint      `json:"moderator" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	Moderator User `json:"-" gorm:"foreignKey:ModeratorID"`
}

func (Resource) TableName() string {
	return "resources"
}

// Book is a moderator-curated book listing scoped to a class/section.
type Book struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:300"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price"`
	Image       string    `json:"image" gorm:"size:500"` // object storage URL
	Class       string    `json:"class" gorm:"size:50;index"`
	Section     string    `json:"section" gorm:"size:50"`
	Group       string    `json:"group" gorm:"size:50"`
	ModeratorID uint      `json:"moderator" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	Moderator User `json:"-" gorm:"foreignKey:ModeratorID"`
}

func (Book) TableName() string {
	return "books"
}
