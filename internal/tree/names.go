package tree

import (
	"errors"
	"fmt"

	"go-zettelkasten/internal/models"

	"gorm.io/gorm"
)

const (
	defaultFolderPrefix = "new-folder"
	defaultZettelPrefix = "new-zettel"

	// Upper bound on insert attempts per allocation. Each attempt is one
	// constraint-checked insert, so a concurrent allocator in the same
	// scope costs at most one extra round per collision.
	maxNameAttempts = 1000
)

// allocateFolder finds the smallest n such that "{prefix}-{n}" is free in
// the parent scope. The name is claimed by attempting the insert and
// retrying on a uniqueness violation, never by a read-then-write check,
// which would hand the same n to two concurrent callers.
func (s *Store) allocateFolder(userID, parentID uint, prefix string) (*models.Folder, error) {
	for n := 0; n < maxNameAttempts; n++ {
		folder := models.Folder{
			Name:     fmt.Sprintf("%s-%d", prefix, n),
			ParentID: &parentID,
			AuthorID: userID,
		}
		err := s.db.Create(&folder).Error
		if err == nil {
			return &folder, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: no free name for prefix %q", ErrConflict, prefix)
}

func (s *Store) allocateZettel(userID, folderID uint, prefix, content string, isPublic bool) (*models.Zettel, error) {
	for n := 0; n < maxNameAttempts; n++ {
		zettel := models.Zettel{
			Name:     fmt.Sprintf("%s-%d", prefix, n),
			FolderID: folderID,
			AuthorID: userID,
			Content:  content,
			IsPublic: isPublic,
		}
		err := s.db.Create(&zettel).Error
		if err == nil {
			return &zettel, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: no free name for prefix %q", ErrConflict, prefix)
}

// DuplicateZettel copies a note within its folder under the first free
// "{name}-copy-{n}", same retry scheme as the default-name allocator.
func (s *Store) DuplicateZettel(userID, id uint) (*models.Zettel, error) {
	original, err := s.GetZettel(userID, id)
	if err != nil {
		return nil, err
	}
	for n := 0; n < maxNameAttempts; n++ {
		copy := models.Zettel{
			Name:     fmt.Sprintf("%s-copy-%d", original.Name, n),
			FolderID: original.FolderID,
			AuthorID: userID,
			Content:  original.Content,
			IsPublic: false,
		}
		err := s.db.Create(&copy).Error
		if err == nil {
			return &copy, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: no free copy name for %q", ErrConflict, original.Name)
}
