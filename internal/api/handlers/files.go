package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-zettelkasten/internal/config"
	"go-zettelkasten/internal/tree"
	"go-zettelkasten/internal/utils"
	"go-zettelkasten/internal/websocket"

	"github.com/gin-gonic/gin"
)

// UploadToFolder ingests a dropped folder: multipart "files" entries paired
// index-by-index with "file_paths" relative paths. The engine rebuilds the
// implied folder tree under the target folder; per-entry failures degrade
// to a partial result instead of aborting the batch.
func UploadToFolder(c *gin.Context) {
	folderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "kind": "validation"})
		return
	}
	files := form.File["files"]
	paths := form.Value["file_paths"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded", "kind": "validation"})
		return
	}
	if len(files) != len(paths) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Mismatched counts: %d files, %d paths", len(files), len(paths)),
			"kind":  "validation",
		})
		return
	}

	cfg, _ := config.Load()
	entries := make([]tree.ImportEntry, 0, len(files))
	for i, fileHeader := range files {
		if fileHeader.Size > cfg.Storage.MaxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("File %q too large", fileHeader.Filename),
				"kind":  "validation",
			})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to open upload: %v", err)})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to read upload: %v", err)})
			return
		}
		entries = append(entries, tree.ImportEntry{Path: paths[i], Data: data})
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	manager := websocket.GetManager()
	result, err := store.ImportBatch(userID, &folderID, entries, func(done, total int) {
		manager.SendImportProgress(userID, folderID, done, total)
	})
	if err != nil {
		manager.SendImportError(userID, folderID, err.Error())
		respondError(c, err)
		return
	}

	manager.SendImportComplete(userID, folderID, map[string]interface{}{
		"created": len(result.Created),
		"failed":  len(result.Errors),
	})
	c.JSON(http.StatusOK, result)
}

// GetFile returns a file's metadata plus its derived path.
func GetFile(c *gin.Context) {
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
	file, err := store.GetFile(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := store.Path(userID, tree.KindFile, file.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": file, "path": path})
}

// ServeFileContent streams the stored blob. Image attachments accept
// optional width/height query parameters for an inline thumbnail.
func ServeFileContent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	file, reader, err := store.OpenFileBlob(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	width := utils.ParseIntOption(c.Query("width"))
	height := utils.ParseIntOption(c.Query("height"))
	if strings.HasPrefix(file.MimeType, "image/") && (width > 0 || height > 0) {
		resized, err := utils.ResizeImage(reader, width, height)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to resize image: %v", err)})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))
		c.Data(http.StatusOK, "image/png", resized)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, nil)
}
