package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetGraph returns the zettel link graph, recomputed from the current note
// bodies on every request.
func GetGraph(c *gin.Context) {
	store, err := treeStore()
	if err != nil {
		respondError(c, err)
		return
	}

	graph, err := store.LinkGraph(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, graph)
}
