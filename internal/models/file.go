package models

import (
	"time"
)

// File is a binary attachment inside a folder. The row holds metadata only;
// the content lives in the blob store under BlobKey.
type File struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_files_scope_name"`
	FolderID  uint      `json:"folder_id" gorm:"not null;uniqueIndex:idx_files_scope_name;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null;uniqueIndex:idx_files_scope_name;index"`
	BlobKey   string    `json:"-" gorm:"not null"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}
