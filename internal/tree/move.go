package tree

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Move re-parents an item into targetID. Zettels and files just get their
// folder reassigned. A folder move additionally walks the target's ancestor
// chain: if the moved folder shows up there (or the target is the folder
// itself) the move would create a cycle and is rejected with the tree
// untouched. Reassigning the parent is the only mutation; paths are
// derived on demand, so nothing else needs recomputing.
func (s *Store) Move(userID uint, kind ItemKind, id, targetID uint) error {
	target, err := s.GetFolder(userID, targetID)
	if err != nil {
		return err
	}

	switch kind {
	case KindZettel:
		zettel, err := s.GetZettel(userID, id)
		if err != nil {
			return err
		}
		err = s.db.Model(zettel).Update("folder_id", target.ID).Error
		return moveError(err, zettel.Name)
	case KindFile:
		file, err := s.GetFile(userID, id)
		if err != nil {
			return err
		}
		err = s.db.Model(file).Update("folder_id", target.ID).Error
		return moveError(err, file.Name)
	case KindFolder:
		folder, err := s.GetFolder(userID, id)
		if err != nil {
			return err
		}
		if folder.IsRoot {
			return fmt.Errorf("%w: the root folder cannot be moved", ErrValidation)
		}
		if folder.ID == target.ID {
			return fmt.Errorf("%w: cannot move folder %q into itself", ErrCycle, folder.Name)
		}
		chain, err := s.ancestorIDs(userID, target)
		if err != nil {
			return err
		}
		for _, ancestorID := range chain {
			if ancestorID == folder.ID {
				return fmt.Errorf("%w: folder %q is an ancestor of the target", ErrCycle, folder.Name)
			}
		}
		err = s.db.Model(folder).Update("parent_id", target.ID).Error
		return moveError(err, folder.Name)
	}
	return fmt.Errorf("%w: unknown item kind %q", ErrValidation, kind)
}

func moveError(err error, name string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %q already exists in the target folder", ErrConflict, name)
	}
	return err
}
