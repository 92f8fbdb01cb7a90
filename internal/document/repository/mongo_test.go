package repository

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionIDsFollowCreationOrder(t *testing.T) {
	// rapid appends land inside the same millisecond; the _id tie-break
	// must still reproduce creation order
	ids := make([]string, 500)
	for i := range ids {
		ids[i] = newVersionID()
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	require.Equal(t, ids, sorted)

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		require.False(t, seen[id])
		seen[id] = true
	}
}
