package tree

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go-zettelkasten/internal/models"

	"gorm.io/gorm"
)

// ImportEntry is one uploaded (relative path, blob) pair. A path ending in
// "/" (or with nil data) declares an empty directory.
type ImportEntry struct {
	Path string
	Data []byte
}

// ImportedItem describes one row materialized by an import.
type ImportedItem struct {
	Kind ItemKind `json:"kind"`
	ID   uint     `json:"id"`
	Name string   `json:"name"`
	Path string   `json:"path"`
}

type ImportError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ImportResult reports a batch. The batch is not atomic: a failed entry is
// recorded and the walk continues, but every individual create is atomic so
// a partial import never corrupts the tree.
type ImportResult struct {
	Created []ImportedItem `json:"created"`
	Errors  []ImportError  `json:"errors,omitempty"`
}

// importNode is the in-memory tree reconstructed from the uploaded paths
// before any row is touched.
type importNode struct {
	dirs   map[string]*importNode
	leaves map[string][]byte
}

func newImportNode() *importNode {
	return &importNode{dirs: map[string]*importNode{}, leaves: map[string][]byte{}}
}

func (n *importNode) dir(name string) *importNode {
	child, ok := n.dirs[name]
	if !ok {
		child = newImportNode()
		n.dirs[name] = child
	}
	return child
}

func (n *importNode) sortedDirs() []string {
	names := make([]string, 0, len(n.dirs))
	for name := range n.dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *importNode) sortedLeaves() []string {
	names := make([]string, 0, len(n.leaves))
	for name := range n.leaves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImportBatch reconstructs the folder tree implied by the entry paths under
// the target folder (root when nil) and materializes folders, zettels
// (".md" leaves, suffix stripped, blob decoded as text) and files
// (everything else, bytes stored as-is). Directories are matched
// case-sensitively by exact name and reused when present. The optional
// progress callback is invoked after each processed leaf.
func (s *Store) ImportBatch(userID uint, folderID *uint, entries []ImportEntry, progress func(done, total int)) (*ImportResult, error) {
	target, err := s.resolveFolder(userID, folderID)
	if err != nil {
		return nil, err
	}

	root := newImportNode()
	for _, entry := range entries {
		segments := splitPath(entry.Path)
		if len(segments) == 0 {
			continue
		}
		node := root
		if strings.HasSuffix(entry.Path, "/") || entry.Data == nil {
			for _, segment := range segments {
				node = node.dir(segment)
			}
			continue
		}
		for _, segment := range segments[:len(segments)-1] {
			node = node.dir(segment)
		}
		node.leaves[segments[len(segments)-1]] = entry.Data
	}

	// A folder dropped in a browser arrives wrapped in one synthetic
	// top-level directory named after the selection; unwrap that level so
	// the selection's contents land directly under the target.
	if len(root.dirs) == 1 && len(root.leaves) == 0 {
		for _, only := range root.dirs {
			root = only
		}
	}

	total := countLeaves(root)
	result := &ImportResult{Created: []ImportedItem{}}
	done := 0
	if err := s.importWalk(userID, target.ID, "", root, result, &done, total, progress); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Store) importWalk(userID, parentID uint, prefix string, node *importNode, result *ImportResult, done *int, total int, progress func(done, total int)) error {
	for _, name := range node.sortedLeaves() {
		data := node.leaves[name]
		item, err := s.importLeaf(userID, parentID, prefix, name, data)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Path: prefix + name, Error: err.Error()})
		} else {
			result.Created = append(result.Created, *item)
		}
		*done++
		if progress != nil {
			progress(*done, total)
		}
	}
	for _, name := range node.sortedDirs() {
		folder, err := s.getOrCreateFolder(userID, parentID, name)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Path: prefix + name + "/", Error: err.Error()})
			continue
		}
		if err := s.importWalk(userID, folder.ID, prefix+name+"/", node.dirs[name], result, done, total, progress); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) importLeaf(userID, parentID uint, prefix, name string, data []byte) (*ImportedItem, error) {
	folderID := parentID
	if strings.HasSuffix(name, ".md") {
		zettelName := strings.TrimSuffix(name, ".md")
		zettel, err := s.CreateZettel(userID, &folderID, zettelName, string(data), false)
		if err != nil {
			return nil, err
		}
		return &ImportedItem{Kind: KindZettel, ID: zettel.ID, Name: zettel.Name, Path: prefix + zettel.Name}, nil
	}
	file, err := s.CreateFile(userID, &folderID, name, data)
	if err != nil {
		return nil, err
	}
	return &ImportedItem{Kind: KindFile, ID: file.ID, Name: file.Name, Path: prefix + file.Name}, nil
}

// getOrCreateFolder reuses an existing child folder by exact,
// case-sensitive name match, creating it otherwise. A concurrent creator
// losing the insert race falls back to reading the winner.
func (s *Store) getOrCreateFolder(userID, parentID uint, name string) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.Where("author_id = ? AND parent_id = ? AND name = ?", userID, parentID, name).First(&folder).Error
	if err == nil {
		return &folder, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	folder = models.Folder{Name: name, ParentID: &parentID, AuthorID: userID}
	if err := s.db.Create(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.Where("author_id = ? AND parent_id = ? AND name = ?", userID, parentID, name).First(&folder).Error; err != nil {
				return nil, err
			}
			return &folder, nil
		}
		return nil, err
	}
	return &folder, nil
}

// ExportFolder walks the subtree depth-first and streams it as a zip
// archive: zettels as "<path>/<name>.md", files as "<path>/<name>", child
// folders as directory entries so empty ones survive a round trip. Entries
// are written to w incrementally, never into a whole-archive buffer. A blob read
// failure degrades that one entry to placeholder error text instead of
// aborting the export. Returns the suggested "<folder-name>.zip" filename.
func (s *Store) ExportFolder(userID, folderID uint, w io.Writer) (string, error) {
	folder, err := s.GetFolder(userID, folderID)
	if err != nil {
		return "", err
	}

	zw := zip.NewWriter(w)
	if err := s.exportWalk(userID, folder, "", zw, 0); err != nil {
		zw.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return folder.Name + ".zip", nil
}

func (s *Store) exportWalk(userID uint, folder *models.Folder, prefix string, zw *zip.Writer, depth int) error {
	if depth >= maxTreeDepth {
		return fmt.Errorf("%w: tree deeper than %d at folder %d", ErrIntegrity, maxTreeDepth, folder.ID)
	}

	var zettels []models.Zettel
	if err := s.db.Where("author_id = ? AND folder_id = ?", userID, folder.ID).Order("name").Find(&zettels).Error; err != nil {
		return err
	}
	for _, zettel := range zettels {
		entry, err := zw.Create(prefix + zettel.Name + ".md")
		if err != nil {
			return err
		}
		if _, err := entry.Write([]byte(zettel.Content)); err != nil {
			return err
		}
	}

	var files []models.File
	if err := s.db.Where("author_id = ? AND folder_id = ?", userID, folder.ID).Order("name").Find(&files).Error; err != nil {
		return err
	}
	for _, file := range files {
		entry, err := zw.Create(prefix + file.Name)
		if err != nil {
			return err
		}
		reader, err := s.blobs.Download(file.BlobKey)
		if err != nil {
			// Degraded, not fatal: ship the error text in place of the blob.
			fmt.Fprintf(entry, "could not read file contents: %v\n", err)
			continue
		}
		_, copyErr := io.Copy(entry, reader)
		reader.Close()
		if copyErr != nil {
			return copyErr
		}
	}

	var children []models.Folder
	if err := s.db.Where("author_id = ? AND parent_id = ?", userID, folder.ID).Order("name").Find(&children).Error; err != nil {
		return err
	}
	for i := range children {
		childPrefix := prefix + children[i].Name + "/"
		if _, err := zw.Create(childPrefix); err != nil {
			return err
		}
		if err := s.exportWalk(userID, &children[i], childPrefix, zw, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// EntriesFromZip flattens a zip archive back into import entries, the
// inverse of ExportFolder.
func EntriesFromZip(r *zip.Reader) ([]ImportEntry, error) {
	entries := make([]ImportEntry, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			entries = append(entries, ImportEntry{Path: f.Name})
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ImportEntry{Path: f.Name, Data: data})
	}
	return entries, nil
}

func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func countLeaves(node *importNode) int {
	total := len(node.leaves)
	for _, child := range node.dirs {
		total += countLeaves(child)
	}
	return total
}
