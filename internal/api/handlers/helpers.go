package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-zettelkasten/internal/config"
	"go-zettelkasten/internal/database"
	"go-zettelkasten/internal/storage"
	"go-zettelkasten/internal/tree"

	"github.com/gin-gonic/gin"
)

// treeStore builds the engine facade for the current request. The struct
// is two pointers; the database handle and blob provider behind it are the
// process-wide singletons.
func treeStore() (*tree.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	blobs, err := storage.GetProvider(cfg)
	if err != nil {
		return nil, err
	}
	return tree.NewStore(database.GetDB(), blobs), nil
}

func currentUserID(c *gin.Context) uint {
	userID, _ := c.Get("user_id")
	return userID.(uint)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id", "kind": "validation"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps engine errors to HTTP codes with a stable
// machine-readable kind next to the message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tree.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": "not_found"})
	case errors.Is(err, tree.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "conflict"})
	case errors.Is(err, tree.ErrCycle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "cycle"})
	case errors.Is(err, tree.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
	case errors.Is(err, tree.ErrIntegrity):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "integrity"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "kind": "internal"})
	}
}
