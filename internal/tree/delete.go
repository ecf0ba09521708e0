package tree

import (
	"fmt"

	"go-zettelkasten/internal/models"

	"gorm.io/gorm"
)

// DeleteItem removes an item. Folders cascade over all descendants;
// deleting the root folder wipes the user's entire tree. Row deletes for a
// cascade run in one transaction, so a delete is never silently partial.
// Blob deletes happen after commit and are best effort: an unreachable
// blob store must not leave the row cascade half-applied.
func (s *Store) DeleteItem(userID uint, kind ItemKind, id uint) error {
	switch kind {
	case KindZettel:
		return s.DeleteZettel(userID, id)
	case KindFile:
		return s.DeleteFile(userID, id)
	case KindFolder:
		return s.DeleteFolder(userID, id)
	}
	return fmt.Errorf("%w: unknown item kind %q", ErrValidation, kind)
}

func (s *Store) DeleteZettel(userID, id uint) error {
	zettel, err := s.GetZettel(userID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM zettel_tags WHERE zettel_id = ?", zettel.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Zettel{}, zettel.ID).Error
	})
}

func (s *Store) DeleteFile(userID, id uint) error {
	file, err := s.GetFile(userID, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.File{}, file.ID).Error; err != nil {
		return err
	}
	s.blobs.Delete(file.BlobKey)
	return nil
}

func (s *Store) DeleteFolder(userID, id uint) error {
	folder, err := s.GetFolder(userID, id)
	if err != nil {
		return err
	}
	if folder.IsRoot {
		return s.wipeUser(userID)
	}

	var blobKeys []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		folderIDs, err := descendantFolderIDs(tx, userID, folder.ID)
		if err != nil {
			return err
		}
		folderIDs = append(folderIDs, folder.ID)

		if err := tx.Model(&models.File{}).
			Where("author_id = ? AND folder_id IN ?", userID, folderIDs).
			Pluck("blob_key", &blobKeys).Error; err != nil {
			return err
		}

		var zettelIDs []uint
		if err := tx.Model(&models.Zettel{}).
			Where("author_id = ? AND folder_id IN ?", userID, folderIDs).
			Pluck("id", &zettelIDs).Error; err != nil {
			return err
		}
		if len(zettelIDs) > 0 {
			if err := tx.Exec("DELETE FROM zettel_tags WHERE zettel_id IN ?", zettelIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("author_id = ? AND folder_id IN ?", userID, folderIDs).Delete(&models.Zettel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ? AND folder_id IN ?", userID, folderIDs).Delete(&models.File{}).Error; err != nil {
			return err
		}
		return tx.Where("author_id = ? AND id IN ?", userID, folderIDs).Delete(&models.Folder{}).Error
	})
	if err != nil {
		return err
	}

	for _, key := range blobKeys {
		s.blobs.Delete(key)
	}
	return nil
}

// wipeUser is the full-tenant wipe triggered by deleting the root folder.
// The root is recreated empty on the user's next EnsureRootFolder call.
func (s *Store) wipeUser(userID uint) error {
	var blobKeys []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.File{}).
			Where("author_id = ?", userID).
			Pluck("blob_key", &blobKeys).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM zettel_tags WHERE zettel_id IN (SELECT id FROM zettels WHERE author_id = ?)", userID).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Zettel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.File{}).Error; err != nil {
			return err
		}
		return tx.Where("author_id = ?", userID).Delete(&models.Folder{}).Error
	})
	if err != nil {
		return err
	}

	for _, key := range blobKeys {
		s.blobs.Delete(key)
	}
	return nil
}

// descendantFolderIDs collects every folder below rootID breadth-first. The
// walk shares the cascade's transaction and is depth-bounded like every
// other ancestry traversal.
func descendantFolderIDs(tx *gorm.DB, userID, rootID uint) ([]uint, error) {
	var all []uint
	frontier := []uint{rootID}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("%w: folder %d has descendants deeper than %d", ErrIntegrity, rootID, maxTreeDepth)
		}
		var next []uint
		if err := tx.Model(&models.Folder{}).
			Where("author_id = ? AND parent_id IN ?", userID, frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}
