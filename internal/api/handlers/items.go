package handlers

import (
	"net/http"

	"go-zettelkasten/internal/tree"
	"go-zettelkasten/internal/websocket"

	"github.com/gin-gonic/gin"
)

// RenameItem renames a folder, zettel or file. Normalization and the
// uniqueness re-check happen in the engine; the response carries the name
// that was actually applied.
func RenameItem(c *gin.Context) {
	kind, ok := paramKind(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: name is required", "kind": "validation"})
		return
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	name, err := store.Rename(currentUserID(c), kind, id, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name})
}

// MoveItem re-parents an item into target_folder_id.
func MoveItem(c *gin.Context) {
	kind, ok := paramKind(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input struct {
		TargetFolderID uint `json:"target_folder_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: target_folder_id is required", "kind": "validation"})
		return
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	if err := store.Move(userID, kind, id, input.TargetFolderID); err != nil {
		respondError(c, err)
		return
	}

	websocket.GetManager().SendTreeChanged(userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteItem deletes an item. Folder deletes cascade; deleting the root
// wipes the user's whole tree.
func DeleteItem(c *gin.Context) {
	kind, ok := paramKind(c)
	if !ok {
		return
	}
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
	if err := store.DeleteItem(userID, kind, id); err != nil {
		respondError(c, err)
		return
	}

	websocket.GetManager().SendTreeChanged(userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func paramKind(c *gin.Context) (tree.ItemKind, bool) {
	kind, err := tree.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return kind, true
}
