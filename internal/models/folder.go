package models

import (
	"time"
)

// Folder is one node of a user's tree. Folders form a forest per author:
// exactly one root with a nil parent, every other folder hangs off a parent
// owned by the same author.
//
// (author_id, parent_id, name) carries a unique index so sibling names
// cannot collide. RootFor is set to the author id on the root folder only;
// NULLs are distinct in a unique index, so non-root folders never conflict
// while two concurrent roots for the same author cannot both commit.
type Folder struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_folders_scope_name"`
	ParentID  *uint     `json:"parent_id" gorm:"uniqueIndex:idx_folders_scope_name;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null;uniqueIndex:idx_folders_scope_name;index"`
	IsRoot    bool      `json:"is_root" gorm:"not null;default:false"`
	RootFor   *uint     `json:"-" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// RootFolderName is the fixed name of every user's top-level folder.
const RootFolderName = "root"
