// Package search ranks nodes against a free-text query by substring matches on
// the node name and its parent map name.
package search

import (
	"slices"
	"strings"

	"wayfinder/core-go/internal/indoor"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Candidate is a node paired with its parent map. Map may be nil.
type Candidate struct {
	Node indoor.Node
	Map  *indoor.MapSummary
}

type Result struct {
	Node  indoor.Node        `json:"node"`
	Map   *indoor.MapSummary `json:"map"`
	Score int                `json:"score"`
}

// Keywords lowercases the query and splits it on whitespace runs.
func Keywords(query string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(query)))
}

// Rank returns at most maxResults matches ordered by score, highest first, with
// ties broken by ascending node id. A node matches when any keyword occurs in its
// name or its map's name; its score counts one point per keyword per field hit.
func Rank(candidates []Candidate, query string, maxResults int) []Result {
	keywords := Keywords(query)
	if len(keywords) == 0 || maxResults <= 0 {
		return []Result{}
	}

	results := make([]Result, 0)
	for _, c := range candidates {
		name := strings.ToLower(c.Node.Name)
		mapName := ""
		if c.Map != nil {
			mapName = strings.ToLower(c.Map.Name)
		}

		score := 0
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				score++
			}
			if strings.Contains(mapName, kw) {
				score++
			}
		}
		// Any hit on either field makes the node a candidate, so score > 0 is
		// exactly the candidate filter.
		if score == 0 {
			continue
		}
		results = append(results, Result{Node: c.Node, Map: c.Map, Score: score})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return indoor.CompareRefs(a.Node.Ref, b.Node.Ref)
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
