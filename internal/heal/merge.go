// internal/heal/merge.go
package heal

import (
	"strings"

	"github.com/restyle-dev/restyle-cli/api/schemas"
)

const dedupPrefixLen = 30

// MergeDefects combines the instant local heuristic results with the remote
// model's findings. Local defects come first; a remote defect is appended
// only when no earlier defect shares its dedup key. The key is a cheap
// prefix-similarity heuristic, not semantic dedup: near-miss phrasings can
// slip through, and a human deselects those downstream.
func MergeDefects(local, remote []schemas.Defect) []schemas.Defect {
	merged := make([]schemas.Defect, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local)+len(remote))

	for _, d := range local {
		key := dedupKey(d.Issue)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, d)
	}
	for _, d := range remote {
		key := dedupKey(d.Issue)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, d)
	}
	return merged
}

func dedupKey(issue string) string {
	key := strings.ToLower(strings.TrimSpace(issue))
	runes := []rune(key)
	if len(runes) > dedupPrefixLen {
		return string(runes[:dedupPrefixLen])
	}
	return key
}
