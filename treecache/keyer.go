package treecache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Key returns the canonical cache key for a filtered view of the tree
// rooted at rootID, pruned to the given leaves. The key is insensitive to
// leaf order and duplicates, so equivalent requests always share a cache
// entry.
func Key(rootID int64, leafIDs []int64) string {
	seen := make(map[int64]struct{}, len(leafIDs))
	unique := make([]int64, 0, len(leafIDs))
	for _, id := range leafIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	var sb strings.Builder
	for i, id := range unique {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return "tree:" + strconv.FormatInt(rootID, 10) + ":leaves:" + hex.EncodeToString(sum[:8])
}
