package tree

import (
	"errors"
	"fmt"
	"strings"

	"go-zettelkasten/internal/models"

	"gorm.io/gorm"
)

// maxTreeDepth bounds every ancestry walk and tree recursion. Live data
// never gets near it; hitting the bound means the parent chain is corrupt
// (a cycle) and the walk fails with ErrIntegrity instead of looping.
const maxTreeDepth = 100

// ancestorIDs returns the folder's ancestor chain from its parent up to the
// root, nearest first. The root folder itself is included.
func (s *Store) ancestorIDs(userID uint, folder *models.Folder) ([]uint, error) {
	var chain []uint
	current := folder
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("%w: ancestry of folder %d deeper than %d", ErrIntegrity, folder.ID, maxTreeDepth)
		}
		var parent models.Folder
		if err := s.db.Where("id = ? AND author_id = ?", *current.ParentID, userID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: folder %d has a dangling parent %d", ErrIntegrity, current.ID, *current.ParentID)
			}
			return nil, err
		}
		chain = append(chain, parent.ID)
		current = &parent
	}
	return chain, nil
}

// folderPath joins the folder's ancestor names below the root with "/".
// Folder paths always end with "/"; the root's path is just "/".
func (s *Store) folderPath(userID uint, folder *models.Folder) (string, error) {
	var segments []string
	current := folder
	for depth := 0; !current.IsRoot; depth++ {
		if depth >= maxTreeDepth {
			return "", fmt.Errorf("%w: ancestry of folder %d deeper than %d", ErrIntegrity, folder.ID, maxTreeDepth)
		}
		segments = append([]string{current.Name}, segments...)
		if current.ParentID == nil {
			return "", fmt.Errorf("%w: non-root folder %d has no parent", ErrIntegrity, current.ID)
		}
		var parent models.Folder
		if err := s.db.Where("id = ? AND author_id = ?", *current.ParentID, userID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", fmt.Errorf("%w: folder %d has a dangling parent %d", ErrIntegrity, current.ID, *current.ParentID)
			}
			return "", err
		}
		current = &parent
	}
	if len(segments) == 0 {
		return "/", nil
	}
	return strings.Join(segments, "/") + "/", nil
}

// Path computes the derived path of any item by walking parent links to the
// root. Folder paths end with "/", zettel and file paths do not.
func (s *Store) Path(userID uint, kind ItemKind, id uint) (string, error) {
	switch kind {
	case KindFolder:
		folder, err := s.GetFolder(userID, id)
		if err != nil {
			return "", err
		}
		return s.folderPath(userID, folder)
	case KindZettel:
		zettel, err := s.GetZettel(userID, id)
		if err != nil {
			return "", err
		}
		folder, err := s.GetFolder(userID, zettel.FolderID)
		if err != nil {
			return "", err
		}
		prefix, err := s.folderPath(userID, folder)
		if err != nil {
			return "", err
		}
		return strings.TrimPrefix(prefix, "/") + zettel.Name, nil
	case KindFile:
		file, err := s.GetFile(userID, id)
		if err != nil {
			return "", err
		}
		folder, err := s.GetFolder(userID, file.FolderID)
		if err != nil {
			return "", err
		}
		prefix, err := s.folderPath(userID, folder)
		if err != nil {
			return "", err
		}
		return strings.TrimPrefix(prefix, "/") + file.Name, nil
	}
	return "", fmt.Errorf("%w: unknown item kind %q", ErrValidation, kind)
}

// Node is the recursive tree DTO served by the tree endpoint.
type Node struct {
	ID       uint        `json:"id"`
	Name     string      `json:"name"`
	IsRoot   bool        `json:"is_root,omitempty"`
	Children []*Node     `json:"children"`
	Zettels  []ZettelRef `json:"zettels"`
	Files    []FileRef   `json:"files"`
}

type ZettelRef struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

type FileRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Tree builds the user's whole tree in three queries and one arena walk:
// folders, zettels and files are loaded flat, indexed by parent, then
// assembled depth-first. Recursion is depth-bounded so a corrupted parent
// chain fails with ErrIntegrity rather than blowing the stack.
func (s *Store) Tree(userID uint) (*Node, error) {
	root, err := s.EnsureRootFolder(userID)
	if err != nil {
		return nil, err
	}

	var folders []models.Folder
	if err := s.db.Where("author_id = ?", userID).Order("name").Find(&folders).Error; err != nil {
		return nil, err
	}
	var zettels []models.Zettel
	if err := s.db.Where("author_id = ?", userID).Order("name").Find(&zettels).Error; err != nil {
		return nil, err
	}
	var files []models.File
	if err := s.db.Where("author_id = ?", userID).Order("name").Find(&files).Error; err != nil {
		return nil, err
	}

	childFolders := make(map[uint][]models.Folder)
	for _, folder := range folders {
		if folder.ParentID != nil {
			childFolders[*folder.ParentID] = append(childFolders[*folder.ParentID], folder)
		}
	}
	zettelsByFolder := make(map[uint][]ZettelRef)
	for _, zettel := range zettels {
		zettelsByFolder[zettel.FolderID] = append(zettelsByFolder[zettel.FolderID], ZettelRef{
			ID: zettel.ID, Name: zettel.Name, IsPublic: zettel.IsPublic,
		})
	}
	filesByFolder := make(map[uint][]FileRef)
	for _, file := range files {
		filesByFolder[file.FolderID] = append(filesByFolder[file.FolderID], FileRef{
			ID: file.ID, Name: file.Name, Size: file.Size,
		})
	}

	var build func(folder models.Folder, depth int) (*Node, error)
	build = func(folder models.Folder, depth int) (*Node, error) {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("%w: tree deeper than %d at folder %d", ErrIntegrity, maxTreeDepth, folder.ID)
		}
		node := &Node{
			ID:       folder.ID,
			Name:     folder.Name,
			IsRoot:   folder.IsRoot,
			Children: []*Node{},
			Zettels:  zettelsByFolder[folder.ID],
			Files:    filesByFolder[folder.ID],
		}
		if node.Zettels == nil {
			node.Zettels = []ZettelRef{}
		}
		if node.Files == nil {
			node.Files = []FileRef{}
		}
		for _, child := range childFolders[folder.ID] {
			childNode, err := build(child, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)
		}
		return node, nil
	}
	return build(*root, 0)
}
