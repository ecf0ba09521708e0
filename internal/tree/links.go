package tree

import (
	"regexp"

	"go-zettelkasten/internal/models"
)

// linkPattern matches markdown links: [label](target). The target is
// resolved against the user's zettel names, not URLs; anything that does
// not name an existing zettel is dropped.
var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

// Graph is the zettel link graph: every zettel is a node, every resolved
// [label](target) reference an edge.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type GraphNode struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// LinkGraph recomputes the graph from the current note bodies on every
// call. Content changes at any time, so nothing here is cached or stored.
// Unresolved targets are not an error; notes may reference zettels that do
// not exist yet.
func (s *Store) LinkGraph(userID uint) (*Graph, error) {
	var zettels []models.Zettel
	if err := s.db.Where("author_id = ?", userID).Order("name").Find(&zettels).Error; err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(zettels))
	graph := &Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	for _, zettel := range zettels {
		known[zettel.Name] = true
		graph.Nodes = append(graph.Nodes, GraphNode{ID: zettel.ID, Name: zettel.Name})
	}

	for _, zettel := range zettels {
		for _, match := range linkPattern.FindAllStringSubmatch(zettel.Content, -1) {
			target := match[2]
			if !known[target] {
				continue
			}
			graph.Edges = append(graph.Edges, GraphEdge{Source: zettel.Name, Target: target})
		}
	}
	return graph, nil
}
