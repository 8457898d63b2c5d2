package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels recipes. The slug is the stable filter key used by the
// recipe list endpoint.
type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Color string    `gorm:"size:50;uniqueIndex;not null" json:"color"`
	Slug  string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
