package tree

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ImportBatch(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)

	entries := []ImportEntry{
		{Path: "notes/a.md", Data: []byte("# a")},
		{Path: "notes/sub/b.md", Data: []byte("# b")},
		{Path: "img/c.png", Data: []byte{0x89, 0x50, 0x4e, 0x47}},
		{Path: "empty/"},
	}

	var progressCalls int
	var lastDone, lastTotal int
	result, err := s.ImportBatch(1, nil, entries, func(done, total int) {
		progressCalls++
		lastDone, lastTotal = done, total
	})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Created, 3)
	assert.Equal(t, 3, progressCalls)
	assert.Equal(t, 3, lastDone)
	assert.Equal(t, 3, lastTotal)

	// ".md" leaves became zettels, the rest files, the suffix stripped.
	tree, err := s.Tree(1)
	require.NoError(t, err)
	require.Len(t, tree.Children, 3)
	assert.Equal(t, "empty", tree.Children[0].Name)
	assert.Equal(t, "img", tree.Children[1].Name)
	assert.Equal(t, "notes", tree.Children[2].Name)

	notes := tree.Children[2]
	require.Len(t, notes.Zettels, 1)
	assert.Equal(t, "a", notes.Zettels[0].Name)
	require.Len(t, notes.Children, 1)
	require.Len(t, notes.Children[0].Zettels, 1)
	assert.Equal(t, "b", notes.Children[0].Zettels[0].Name)

	img := tree.Children[1]
	require.Len(t, img.Files, 1)
	assert.Equal(t, "c.png", img.Files[0].Name)

	// A path-only entry still materializes its folder.
	assert.Empty(t, tree.Children[0].Children)
}

func TestStore_ImportBatch_unwrapsSingleTopLevelDir(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)

	entries := []ImportEntry{
		{Path: "my-vault/a.md", Data: []byte("a")},
		{Path: "my-vault/sub/b.md", Data: []byte("b")},
	}
	result, err := s.ImportBatch(1, nil, entries, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	// The wrapper directory is gone: its contents land at the target.
	tree, err := s.Tree(1)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "sub", tree.Children[0].Name)
	require.Len(t, tree.Zettels, 1)
	assert.Equal(t, "a", tree.Zettels[0].Name)
}

func TestStore_ImportBatch_reusesExistingFolders(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	existing := mustFolder(t, s, 1, nil, "notes")
	mustZettel(t, s, 1, &existing.ID, "old", "")

	result, err := s.ImportBatch(1, nil, entriesWithLeaf("notes/new.md", "x"), nil)
	require.NoError(t, err)
	require.Len(t, result.Created, 1)

	tree, err := s.Tree(1)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, existing.ID, tree.Children[0].ID)
	assert.Len(t, tree.Children[0].Zettels, 2)
}

// entriesWithLeaf keeps the single-leaf batches above from tripping the
// wrapper-unwrap heuristic: a second top-level leaf pins the root.
func entriesWithLeaf(path, data string) []ImportEntry {
	return []ImportEntry{
		{Path: path, Data: []byte(data)},
		{Path: "pin.md", Data: []byte("pin")},
	}
}

func TestStore_ImportBatch_recordsPerEntryErrors(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	mustZettel(t, s, 1, nil, "taken", "")

	entries := []ImportEntry{
		{Path: "taken.md", Data: []byte("collides")},
		{Path: "fresh.md", Data: []byte("fine")},
	}
	result, err := s.ImportBatch(1, nil, entries, nil)
	require.NoError(t, err)

	// The batch continues past a failed entry.
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "taken.md", result.Errors[0].Path)
	require.Len(t, result.Created, 1)
	assert.Equal(t, "fresh", result.Created[0].Name)
}

func TestStore_ExportFolder(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	vault := mustFolder(t, s, 1, nil, "vault")
	sub := mustFolder(t, s, 1, &vault.ID, "sub")
	mustFolder(t, s, 1, &vault.ID, "empty")
	mustZettel(t, s, 1, &vault.ID, "hello", "hello world")
	pngBytes := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	_, err := s.CreateFile(1, &sub.ID, "pic.png", pngBytes)
	require.NoError(t, err)

	var buf bytes.Buffer
	filename, err := s.ExportFolder(1, vault.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, "vault.zip", filename)

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	contents := map[string][]byte{}
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			contents[f.Name] = nil
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = data
	}

	assert.Equal(t, []byte("hello world"), contents["hello.md"])
	assert.Equal(t, pngBytes, contents["sub/pic.png"])
	// Empty folders survive as directory entries.
	_, hasEmpty := contents["empty/"]
	assert.True(t, hasEmpty)
}

func TestStore_ExportFolder_unreadableBlobDegrades(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	vault := mustFolder(t, s, 1, nil, "vault")
	mustZettel(t, s, 1, &vault.ID, "note", "still here")
	broken, err := s.CreateFile(1, &vault.ID, "gone.bin", []byte{1, 2, 3})
	require.NoError(t, err)
	_, err = s.CreateFile(1, &vault.ID, "kept.bin", []byte{9, 9})
	require.NoError(t, err)

	// Lose the blob behind the store's back.
	require.NoError(t, s.blobs.Delete(broken.BlobKey))

	var buf bytes.Buffer
	_, err = s.ExportFolder(1, vault.ID, &buf)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	contents := map[string][]byte{}
	for _, f := range reader.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = data
	}

	// The broken entry carries placeholder text, the rest export normally.
	assert.Contains(t, string(contents["gone.bin"]), "could not read file contents")
	assert.Equal(t, []byte("still here"), contents["note.md"])
	assert.Equal(t, []byte{9, 9}, contents["kept.bin"])
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, 1)
	vault := mustFolder(t, s, 1, nil, "vault")
	sub := mustFolder(t, s, 1, &vault.ID, "sub")
	mustFolder(t, s, 1, &sub.ID, "deep-empty")
	mustZettel(t, s, 1, &vault.ID, "hello", "hello")
	binary := []byte{0x00, 0x01, 0xfe, 0xff}
	_, err := s.CreateFile(1, &vault.ID, "raw.bin", binary)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = s.ExportFolder(1, vault.ID, &buf)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	entries, err := EntriesFromZip(reader)
	require.NoError(t, err)

	// Import into a second user's tree and compare.
	mustRoot(t, s, 2)
	result, err := s.ImportBatch(2, nil, entries, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	tree, err := s.Tree(2)
	require.NoError(t, err)
	require.Len(t, tree.Zettels, 1)
	assert.Equal(t, "hello", tree.Zettels[0].Name)
	require.Len(t, tree.Files, 1)

	_, rc, err := s.OpenFileBlob(2, tree.Files[0].ID)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, binary, got)

	require.Len(t, tree.Children, 1)
	assert.Equal(t, "sub", tree.Children[0].Name)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "deep-empty", tree.Children[0].Children[0].Name)

	zettel, err := s.GetZettel(2, tree.Zettels[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", zettel.Content)
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitPath("a/b/c"))
	assert.Equal(t, []string{"a", "b"}, splitPath("/a//b/"))
	assert.Nil(t, splitPath(""))
	assert.Nil(t, splitPath("///"))
}
