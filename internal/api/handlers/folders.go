package handlers

import (
	"fmt"
	"net/http"

	"go-zettelkasten/internal/tree"

	"github.com/gin-gonic/gin"
)

// CreateFolder creates a folder under parent_id, or under the root when
// parent_id is omitted. An omitted name asks the allocator for the next
// free "new-folder-N".
func CreateFolder(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parent_id,omitempty"`
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

	folder, err := store.CreateFolder(currentUserID(c), input.ParentID, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": folder.ID, "name": folder.Name})
}

// GetFolder returns a folder's metadata plus its derived path.
func GetFolder(c *gin.Context) {
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
	folder, err := store.GetFolder(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := store.Path(userID, tree.KindFolder, folder.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"folder": folder, "path": path})
}

// GetTree returns the user's whole folder tree as one recursive document.
func GetTree(c *gin.Context) {
	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	node, err := store.Tree(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, node)
}

// DownloadFolder streams the folder's subtree as a zip archive. Entries
// are written straight to the response; nothing is buffered whole.
func DownloadFolder(c *gin.Context) {
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
	folder, err := store.GetFolder(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", folder.Name+".zip"))
	c.Status(http.StatusOK)

	if _, err := store.ExportFolder(userID, folder.ID, c.Writer); err != nil {
		// Headers are gone already; the truncated archive is the signal.
		c.Error(err)
	}
}
