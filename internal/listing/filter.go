// Package listing implements the in-memory view model behind the startup
// challenge board: filtering and ordering over an already-fetched collection.
// The collection is expected to be small; nothing here is indexed.
package listing

import (
	"sort"
	"strings"

	"github.com/innobridge/platform/internal/models"
)

// Query holds the board's filter inputs. Empty fields match everything, so
// the zero Query is the identity filter.
type Query struct {
	Search string // case-insensitive substring over title + description
	Domain string // exact match, "" = any
}

// Filter applies the query to a fetched challenge collection. Search and
// domain are combined with logical AND. The input slice is not modified.
func Filter(challenges []*models.Challenge, q Query) []*models.Challenge {
	if q.Search == "" && q.Domain == "" {
		return challenges
	}

	needle := strings.ToLower(q.Search)
	out := make([]*models.Challenge, 0, len(challenges))

	for _, c := range challenges {
		if needle != "" && !matches(c, needle) {
			continue
		}
		if q.Domain != "" && c.Domain != q.Domain {
			continue
		}
		out = append(out, c)
	}

	return out
}

func matches(c *models.Challenge, needle string) bool {
	return strings.Contains(strings.ToLower(c.Title), needle) ||
		strings.Contains(strings.ToLower(c.Description), needle)
}

// SortNewestFirst orders challenges by creation time, most recent first.
func SortNewestFirst(challenges []*models.Challenge) {
	sort.SliceStable(challenges, func(i, j int) bool {
		return challenges[i].CreatedAt.After(challenges[j].CreatedAt)
	})
}
