package handlers

import (
	"net/http"

	"go-zettelkasten/internal/tree"

	"github.com/gin-gonic/gin"
)

// CreateZettel creates a note in folder_id (root when omitted). An omitted
// name asks the allocator for the next free "new-zettel-N".
func CreateZettel(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		FolderID *uint  `json:"folder_id,omitempty"`
		Content  string `json:"content"`
		IsPublic bool   `json:"is_public"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "kind": "validation"})
		return
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	zettel, err := store.CreateZettel(currentUserID(c), input.FolderID, input.Name, input.Content, input.IsPublic)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": zettel.ID, "name": zettel.Name})
}

// GetZettel returns the note with its content, tags and derived path.
func GetZettel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	zettel, err := store.GetZettel(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := store.Path(userID, tree.KindZettel, zettel.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"zettel": zettel, "path": path})
}

// UpdateZettel changes content, visibility and/or the tag set. Absent
// fields stay untouched; a present tags array replaces the whole set.
func UpdateZettel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Content  *string  `json:"content"`
		IsPublic *bool    `json:"is_public"`
		Tags     []string `json:"tags"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "kind": "validation"})
		return
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	zettel, err := store.UpdateZettel(currentUserID(c), id, tree.ZettelUpdate{
		Content:  input.Content,
		IsPublic: input.IsPublic,
		Tags:     input.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"zettel": zettel})
}

// DuplicateZettel copies a note within its folder under "<name>-copy-N".
func DuplicateZettel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	copied, err := store.DuplicateZettel(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": copied.ID, "name": copied.Name})
}
