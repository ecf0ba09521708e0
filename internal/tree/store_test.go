package tree

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-zettelkasten/internal/models"
)

func TestStore_EnsureRootFolder(t *testing.T) {
	s := newTestStore(t)

	first, err := s.EnsureRootFolder(1)
	require.NoError(t, err)
	assert.Equal(t, models.RootFolderName, first.Name)
	assert.True(t, first.IsRoot)
	assert.Nil(t, first.ParentID)

	second, err := s.EnsureRootFolder(1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := s.EnsureRootFolder(2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestStore_CreateFolder(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, 1)

	folder, err := s.CreateFolder(1, nil, "  Projects  ")
	require.NoError(t, err)
	assert.Equal(t, "projects", folder.Name)
	assert.Equal(t, root.ID, *folder.ParentID)

	_, err = s.CreateFolder(1, nil, "PROJECTS")
	assert.ErrorIs(t, err, ErrConflict)

	// Same name is fine in a different parent.
	_, err = s.CreateFolder(1, &folder.ID, "projects")
	assert.NoError(t, err)

	// And in a different user's tree.
	_, err = s.CreateFolder(2, nil, "projects")
	assert.NoError(t, err)
}

func TestStore_CreateFolder_defaultNames(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)

	var created []*models.Folder
	for i := 0; i < 3; i++ {
		folder, err := s.CreateFolder(1, nil, "")
		require.NoError(t, err)
		created = append(created, folder)
	}
	assert.Equal(t, "new-folder-0", created[0].Name)
	assert.Equal(t, "new-folder-1", created[1].Name)
	assert.Equal(t, "new-folder-2", created[2].Name)

	// Deleting frees the name for the next allocation.
	require.NoError(t, s.DeleteFolder(1, created[1].ID))
	folder, err := s.CreateFolder(1, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "new-folder-1", folder.Name)
}

func TestStore_CreateZettel(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)

	zettel, err := s.CreateZettel(1, nil, "My Note.md", "# hi", false)
	require.NoError(t, err)
	assert.Equal(t, "my note", zettel.Name)

	_, err = s.CreateZettel(1, nil, "my note", "other", false)
	assert.ErrorIs(t, err, ErrConflict)

	// ".md" alone normalizes to nothing.
	_, err = s.CreateZettel(1, nil, ".md", "", false)
	assert.ErrorIs(t, err, ErrValidation)

	empty, err := s.CreateZettel(1, nil, "", "", false)
	require.NoError(t, err)
	assert.Equal(t, "new-zettel-0", empty.Name)
}

func TestStore_ZettelAndFileNamespacesAreSeparate(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)

	_, err := s.CreateZettel(1, nil, "report", "text", false)
	require.NoError(t, err)
	_, err = s.CreateFile(1, nil, "report", []byte{1, 2, 3})
	require.NoError(t, err)

	_, err = s.CreateFile(1, nil, "report", []byte{4})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestStore_CreateFile(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)

	data := []byte("hello, file")
	file, err := s.CreateFile(1, nil, "readme.txt", data)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), file.Size)
	assert.NotEmpty(t, file.BlobKey)

	got, reader, err := s.OpenFileBlob(1, file.ID)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, file.ID, got.ID)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, content)

	// Another user cannot reach it.
	_, _, err = s.OpenFileBlob(2, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FileNamesKeepCase(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)

	file, err := s.CreateFile(1, nil, "  Pic.PNG ", []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "Pic.PNG", file.Name)

	// Rename trims like create does; it never changes the case.
	name, err := s.Rename(1, KindFile, file.ID, "  Photo.JPG ")
	require.NoError(t, err)
	assert.Equal(t, "Photo.JPG", name)
}

func TestStore_NamesRejectPathSeparator(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	folder := mustFolder(t, s, 1, nil, "a")
	zettel := mustZettel(t, s, 1, nil, "note", "")

	_, err := s.CreateFolder(1, nil, "x/y")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.CreateZettel(1, nil, "a/b", "", false)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.CreateFile(1, nil, "a/b.png", []byte{1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Rename(1, KindFolder, folder.ID, "x/y")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.Rename(1, KindZettel, zettel.ID, "a/b")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStore_Rename(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, 1)
	folder := mustFolder(t, s, 1, nil, "drafts")
	mustFolder(t, s, 1, nil, "published")
	zettel := mustZettel(t, s, 1, nil, "idea", "")

	name, err := s.Rename(1, KindFolder, folder.ID, "  Archive ")
	require.NoError(t, err)
	assert.Equal(t, "archive", name)

	_, err = s.Rename(1, KindFolder, folder.ID, "published")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.Rename(1, KindFolder, root.ID, "anything")
	assert.ErrorIs(t, err, ErrValidation)

	name, err = s.Rename(1, KindZettel, zettel.ID, "Plan.md")
	require.NoError(t, err)
	assert.Equal(t, "plan", name)

	_, err = s.Rename(1, KindZettel, zettel.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Rename(1, KindZettel, 9999, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Path(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, 1)
	a := mustFolder(t, s, 1, nil, "a")
	b := mustFolder(t, s, 1, &a.ID, "b")
	zettel := mustZettel(t, s, 1, &b.ID, "note", "")
	file, err := s.CreateFile(1, &b.ID, "pic.png", []byte{1})
	require.NoError(t, err)

	testCases := []struct {
		kind ItemKind
		id   uint
		want string
	}{
		{KindFolder, root.ID, "/"},
		{KindFolder, a.ID, "a/"},
		{KindFolder, b.ID, "a/b/"},
		{KindZettel, zettel.ID, "a/b/note"},
		{KindFile, file.ID, "a/b/pic.png"},
	}
	for _, tc := range testCases {
		path, err := s.Path(1, tc.kind, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, path)
	}
}

func TestStore_Path_corruptAncestry(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	a := mustFolder(t, s, 1, nil, "a")
	b := mustFolder(t, s, 1, &a.ID, "b")

	// Force a parent cycle behind the store's back.
	require.NoError(t, s.db.Model(&models.Folder{}).Where("id = ?", a.ID).Update("parent_id", b.ID).Error)

	_, err := s.Path(1, KindFolder, b.ID)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestStore_Tree(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	b := mustFolder(t, s, 1, nil, "b")
	mustFolder(t, s, 1, nil, "a")
	mustZettel(t, s, 1, &b.ID, "note", "")
	_, err := s.CreateFile(1, &b.ID, "data.bin", []byte{0})
	require.NoError(t, err)

	tree, err := s.Tree(1)
	require.NoError(t, err)
	assert.True(t, tree.IsRoot)
	require.Len(t, tree.Children, 2)
	// Children are ordered by name.
	assert.Equal(t, "a", tree.Children[0].Name)
	assert.Equal(t, "b", tree.Children[1].Name)

	sub := tree.Children[1]
	require.Len(t, sub.Zettels, 1)
	assert.Equal(t, "note", sub.Zettels[0].Name)
	require.Len(t, sub.Files, 1)
	assert.Equal(t, "data.bin", sub.Files[0].Name)

	// Empty collections serialize as [] not null.
	empty := tree.Children[0]
	assert.NotNil(t, empty.Children)
	assert.NotNil(t, empty.Zettels)
	assert.NotNil(t, empty.Files)
}

func TestStore_Move(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, 1)
	a := mustFolder(t, s, 1, nil, "a")
	b := mustFolder(t, s, 1, &a.ID, "b")
	c := mustFolder(t, s, 1, &b.ID, "c")
	zettel := mustZettel(t, s, 1, nil, "note", "")

	require.NoError(t, s.Move(1, KindZettel, zettel.ID, c.ID))
	path, err := s.Path(1, KindZettel, zettel.ID)
	require.NoError(t, err)
	assert.Equal(t, "a/b/c/note", path)

	// Moving a folder into its own descendant would cut the subtree loose.
	err = s.Move(1, KindFolder, a.ID, c.ID)
	assert.ErrorIs(t, err, ErrCycle)
	err = s.Move(1, KindFolder, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrCycle)

	// The rejected moves left the tree untouched.
	got, err := s.GetFolder(1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *got.ParentID)

	err = s.Move(1, KindFolder, root.ID, a.ID)
	assert.ErrorIs(t, err, ErrValidation)

	// A legal re-parent.
	require.NoError(t, s.Move(1, KindFolder, c.ID, a.ID))
	path, err = s.Path(1, KindFolder, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "a/c/", path)
}

func TestStore_Move_nameConflictInTarget(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	a := mustFolder(t, s, 1, nil, "a")
	mustZettel(t, s, 1, &a.ID, "note", "")
	loose := mustZettel(t, s, 1, nil, "note", "")

	err := s.Move(1, KindZettel, loose.ID, a.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestStore_Move_foreignTarget(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	theirs := mustRoot(t, s, 2)
	zettel := mustZettel(t, s, 1, nil, "note", "")

	err := s.Move(1, KindZettel, zettel.ID, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteFolder_cascades(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	a := mustFolder(t, s, 1, nil, "a")
	b := mustFolder(t, s, 1, &a.ID, "b")
	zettel := mustZettel(t, s, 1, &b.ID, "note", "body")
	file, err := s.CreateFile(1, &a.ID, "data.bin", []byte{1, 2})
	require.NoError(t, err)
	keep := mustZettel(t, s, 1, nil, "keep", "")

	require.NoError(t, s.DeleteFolder(1, a.ID))

	_, err = s.GetFolder(1, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetZettel(1, zettel.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetFile(1, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.blobs.Download(file.BlobKey)
	assert.Error(t, err)

	// Siblings outside the subtree survive.
	_, err = s.GetZettel(1, keep.ID)
	assert.NoError(t, err)
}

func TestStore_DeleteFolder_rootWipesEverything(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, 1)
	a := mustFolder(t, s, 1, nil, "a")
	mustZettel(t, s, 1, &a.ID, "note", "")
	theirs := mustZettel(t, s, 2, nil, "note", "")

	require.NoError(t, s.DeleteFolder(1, root.ID))

	fresh, err := s.EnsureRootFolder(1)
	require.NoError(t, err)
	assert.NotEqual(t, root.ID, fresh.ID)

	tree, err := s.Tree(1)
	require.NoError(t, err)
	assert.Empty(t, tree.Children)
	assert.Empty(t, tree.Zettels)

	// Other tenants are untouched.
	_, err = s.GetZettel(2, theirs.ID)
	assert.NoError(t, err)
}

func TestStore_DeleteItem_freesName(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	zettel := mustZettel(t, s, 1, nil, "note", "")

	require.NoError(t, s.DeleteItem(1, KindZettel, zettel.ID))
	_, err := s.CreateZettel(1, nil, "note", "", false)
	assert.NoError(t, err)
}

func TestStore_DuplicateZettel(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	original, err := s.CreateZettel(1, nil, "note", "body", true)
	require.NoError(t, err)

	first, err := s.DuplicateZettel(1, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "note-copy-0", first.Name)
	assert.Equal(t, "body", first.Content)
	// Copies never start out published.
	assert.False(t, first.IsPublic)

	second, err := s.DuplicateZettel(1, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "note-copy-1", second.Name)
}

func TestStore_UpdateZettel(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	zettel := mustZettel(t, s, 1, nil, "note", "old")

	content := "new body"
	public := true
	updated, err := s.UpdateZettel(1, zettel.ID, ZettelUpdate{
		Content:  &content,
		IsPublic: &public,
		Tags:     []string{"Go", "notes", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "new body", updated.Content)
	assert.True(t, updated.IsPublic)
	require.Len(t, updated.Tags, 2)

	// Nil fields leave values alone; tags replace wholesale.
	updated, err = s.UpdateZettel(1, zettel.ID, ZettelUpdate{Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "new body", updated.Content)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "go", updated.Tags[0].Name)
}

func TestStore_PublicZettels(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	mustRoot(t, s, 2)
	for i := 0; i < 3; i++ {
		_, err := s.CreateZettel(1, nil, fmt.Sprintf("pub-%d", i), "x", true)
		require.NoError(t, err)
	}
	private := mustZettel(t, s, 2, nil, "private", "x")

	zettels, total, err := s.PublicZettels(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, zettels, 2)

	_, err = s.PublicZettel(private.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"folder", "zettel", "file"} {
		kind, err := ParseKind(valid)
		require.NoError(t, err)
		assert.Equal(t, ItemKind(valid), kind)
	}
	_, err := ParseKind("directory")
	assert.ErrorIs(t, err, ErrValidation)
}
