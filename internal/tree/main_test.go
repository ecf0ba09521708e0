package tree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-zettelkasten/internal/models"
	"go-zettelkasten/internal/storage"
)

// newTestStore opens a throwaway sqlite database and a local blob store
// under the test's temp directory. TranslateError is on so uniqueness
// violations surface as gorm.ErrDuplicatedKey exactly as they do against
// postgres.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.sqlite")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.Zettel{},
		&models.File{},
		&models.Tag{},
	))

	blobs, err := storage.NewLocalStorage(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	return NewStore(db, blobs)
}

func mustRoot(t *testing.T, s *Store, userID uint) *models.Folder {
	t.Helper()
	root, err := s.EnsureRootFolder(userID)
	require.NoError(t, err)
	return root
}

func mustFolder(t *testing.T, s *Store, userID uint, parentID *uint, name string) *models.Folder {
	t.Helper()
	folder, err := s.CreateFolder(userID, parentID, name)
	require.NoError(t, err)
	return folder
}

func mustZettel(t *testing.T, s *Store, userID uint, folderID *uint, name, content string) *models.Zettel {
	t.Helper()
	zettel, err := s.CreateZettel(userID, folderID, name, content, false)
	require.NoError(t, err)
	return zettel
}
