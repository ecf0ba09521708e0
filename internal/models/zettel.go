package models

import (
	"time"
)

// Zettel is a single markdown note. Its name is unique among the zettels of
// the same folder; files in that folder live in their own namespace.
type Zettel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_zettels_scope_name"`
	FolderID  uint      `json:"folder_id" gorm:"not null;uniqueIndex:idx_zettels_scope_name;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null;uniqueIndex:idx_zettels_scope_name;index"`
	Content   string    `json:"content" gorm:"type:text"`
	IsPublic  bool      `json:"is_public" gorm:"not null;default:false"`
	Tags      []Tag     `json:"tags,omitempty" gorm:"many2many:zettel_tags;"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

type Tag struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Zettels   []Zettel  `json:"-" gorm:"many2many:zettel_tags;"`
}
