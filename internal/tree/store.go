package tree

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-zettelkasten/internal/models"
	"go-zettelkasten/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the tree engine: every folder/zettel/file mutation goes through
// it. It holds no state besides the database handle and the blob store, so
// it is safe to construct per request. Transaction isolation plus the
// unique indexes on the models are the only concurrency mechanism; there is
// no in-process locking because several server processes may share the
// database.
type Store struct {
	db    *gorm.DB
	blobs storage.Storage
}

func NewStore(db *gorm.DB, blobs storage.Storage) *Store {
	return &Store{db: db, blobs: blobs}
}

// ItemKind discriminates the three entity types in mixed-kind operations
// (rename, move, delete).
type ItemKind string

const (
	KindFolder ItemKind = "folder"
	KindZettel ItemKind = "zettel"
	KindFile   ItemKind = "file"
)

func ParseKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case KindFolder, KindZettel, KindFile:
		return ItemKind(s), nil
	}
	return "", fmt.Errorf("%w: unknown item kind %q", ErrValidation, s)
}

// normalizeName is the single place user-supplied names get cleaned up:
// surrounding whitespace dropped, lowercased. Zettel names additionally
// lose a literal trailing ".md". Import paths intentionally bypass this;
// folder reuse during import is exact, case-sensitive matching.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeZettelName(name string) string {
	return strings.TrimSuffix(normalizeName(name), ".md")
}

// validName rejects names that would corrupt derived paths and archive
// entries. "/" is the path separator everywhere a name is joined.
func validName(name string) error {
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: name must not contain %q", ErrValidation, "/")
	}
	return nil
}

// EnsureRootFolder returns the user's root folder, creating it on first
// call. Idempotent and race-safe: if two requests create the root
// concurrently, the unique index on RootFor rejects one of them and that
// request re-reads the winner.
func (s *Store) EnsureRootFolder(userID uint) (*models.Folder, error) {
	var root models.Folder
	err := s.db.Where("author_id = ? AND is_root = ?", userID, true).First(&root).Error
	if err == nil {
		return &root, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	owner := userID
	root = models.Folder{
		Name:     models.RootFolderName,
		AuthorID: userID,
		IsRoot:   true,
		RootFor:  &owner,
	}
	if err := s.db.Create(&root).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; the other request's root is the one.
			if err := s.db.Where("author_id = ? AND is_root = ?", userID, true).First(&root).Error; err != nil {
				return nil, err
			}
			return &root, nil
		}
		return nil, err
	}
	return &root, nil
}

// resolveFolder loads a folder owned by the user, defaulting to the root
// when id is nil.
func (s *Store) resolveFolder(userID uint, id *uint) (*models.Folder, error) {
	if id == nil {
		return s.EnsureRootFolder(userID)
	}
	return s.GetFolder(userID, *id)
}

func (s *Store) GetFolder(userID, id uint) (*models.Folder, error) {
	var folder models.Folder
	if err := s.db.Where("id = ? AND author_id = ?", id, userID).First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: folder %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &folder, nil
}

func (s *Store) GetZettel(userID, id uint) (*models.Zettel, error) {
	var zettel models.Zettel
	if err := s.db.Preload("Tags").Where("id = ? AND author_id = ?", id, userID).First(&zettel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: zettel %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &zettel, nil
}

func (s *Store) GetFile(userID, id uint) (*models.File, error) {
	var file models.File
	if err := s.db.Where("id = ? AND author_id = ?", id, userID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: file %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &file, nil
}

// CreateFolder creates a named folder under parentID (root when nil). An
// empty name asks the allocator for the next free "new-folder-N".
func (s *Store) CreateFolder(userID uint, parentID *uint, name string) (*models.Folder, error) {
	parent, err := s.resolveFolder(userID, parentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return s.allocateFolder(userID, parent.ID, defaultFolderPrefix)
	}
	name = normalizeName(name)
	if err := validName(name); err != nil {
		return nil, err
	}

	folder := models.Folder{Name: name, ParentID: &parent.ID, AuthorID: userID}
	if err := s.db.Create(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: folder %q already exists here", ErrConflict, name)
		}
		return nil, err
	}
	return &folder, nil
}

// CreateZettel creates a note in folderID (root when nil). An empty name
// asks the allocator for the next free "new-zettel-N".
func (s *Store) CreateZettel(userID uint, folderID *uint, name, content string, isPublic bool) (*models.Zettel, error) {
	folder, err := s.resolveFolder(userID, folderID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return s.allocateZettel(userID, folder.ID, defaultZettelPrefix, content, isPublic)
	}
	name = normalizeZettelName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty zettel name", ErrValidation)
	}
	if err := validName(name); err != nil {
		return nil, err
	}

	zettel := models.Zettel{
		Name:     name,
		FolderID: folder.ID,
		AuthorID: userID,
		Content:  content,
		IsPublic: isPublic,
	}
	if err := s.db.Create(&zettel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: zettel %q already exists here", ErrConflict, name)
		}
		return nil, err
	}
	return &zettel, nil
}

// CreateFile stores the blob first and the row second; if the row insert
// fails the blob is removed so storage does not accumulate orphans.
func (s *Store) CreateFile(userID uint, folderID *uint, name string, data []byte) (*models.File, error) {
	folder, err := s.resolveFolder(userID, folderID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrValidation)
	}
	if err := validName(name); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d/%s", userID, uuid.NewString())
	if err := s.blobs.UploadBytes(data, key); err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	file := models.File{
		Name:     name,
		FolderID: folder.ID,
		AuthorID: userID,
		BlobKey:  key,
		MimeType: detectMimeType(data),
		Size:     int64(len(data)),
	}
	if err := s.db.Create(&file).Error; err != nil {
		s.blobs.Delete(key)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: file %q already exists here", ErrConflict, name)
		}
		return nil, err
	}
	return &file, nil
}

// OpenFileBlob returns the file row plus a reader over its stored content.
// The caller owns closing the reader.
func (s *Store) OpenFileBlob(userID, id uint) (*models.File, io.ReadCloser, error) {
	file, err := s.GetFile(userID, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.blobs.Download(file.BlobKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return file, reader, nil
}

// Rename re-validates uniqueness in the entity's current scope. The root
// folder keeps its fixed name. Each kind normalizes the way its create
// does: zettels lose a trailing ".md" and are lowercased, folders are
// lowercased, file names are trimmed but keep their case.
func (s *Store) Rename(userID uint, kind ItemKind, id uint, newName string) (string, error) {
	var name string
	switch kind {
	case KindZettel:
		name = normalizeZettelName(newName)
	case KindFile:
		name = strings.TrimSpace(newName)
	default:
		name = normalizeName(newName)
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrValidation)
	}
	if err := validName(name); err != nil {
		return "", err
	}

	var err error
	switch kind {
	case KindFolder:
		var folder *models.Folder
		if folder, err = s.GetFolder(userID, id); err != nil {
			return "", err
		}
		if folder.IsRoot {
			return "", fmt.Errorf("%w: the root folder cannot be renamed", ErrValidation)
		}
		err = s.db.Model(folder).Update("name", name).Error
	case KindZettel:
		var zettel *models.Zettel
		if zettel, err = s.GetZettel(userID, id); err != nil {
			return "", err
		}
		err = s.db.Model(zettel).Update("name", name).Error
	case KindFile:
		var file *models.File
		if file, err = s.GetFile(userID, id); err != nil {
			return "", err
		}
		err = s.db.Model(file).Update("name", name).Error
	default:
		return "", fmt.Errorf("%w: unknown item kind %q", ErrValidation, kind)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", fmt.Errorf("%w: %q already exists here", ErrConflict, name)
		}
		return "", err
	}
	return name, nil
}

// ZettelUpdate carries the optional fields of an update; nil means leave
// unchanged. Tags, when present, replace the whole tag set.
type ZettelUpdate struct {
	Content  *string
	IsPublic *bool
	Tags     []string
}

func (s *Store) UpdateZettel(userID, id uint, update ZettelUpdate) (*models.Zettel, error) {
	zettel, err := s.GetZettel(userID, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if update.Content != nil {
			updates["content"] = *update.Content
		}
		if update.IsPublic != nil {
			updates["is_public"] = *update.IsPublic
		}
		if len(updates) > 0 {
			if err := tx.Model(zettel).Updates(updates).Error; err != nil {
				return err
			}
		}
		if update.Tags != nil {
			tags := make([]models.Tag, 0, len(update.Tags))
			for _, tagName := range update.Tags {
				tagName = normalizeName(tagName)
				if tagName == "" {
					continue
				}
				var tag models.Tag
				if err := tx.Where("name = ?", tagName).FirstOrCreate(&tag, models.Tag{Name: tagName}).Error; err != nil {
					return err
				}
				tags = append(tags, tag)
			}
			if err := tx.Model(zettel).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetZettel(userID, id)
}

// PublicZettels lists published notes across all users, newest first, for
// the public post pages.
func (s *Store) PublicZettels(page, limit int) ([]models.Zettel, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	query := s.db.Model(&models.Zettel{}).Where("is_public = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var zettels []models.Zettel
	if err := query.Preload("Tags").
		Offset((page - 1) * limit).Limit(limit).
		Order("created_at DESC").
		Find(&zettels).Error; err != nil {
		return nil, 0, err
	}
	return zettels, total, nil
}

// PublicZettel fetches one published note without an ownership check.
func (s *Store) PublicZettel(id uint) (*models.Zettel, error) {
	var zettel models.Zettel
	if err := s.db.Preload("Tags").Where("id = ? AND is_public = ?", id, true).First(&zettel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &zettel, nil
}

func detectMimeType(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}
