package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Format(t *testing.T) {
	id := New("n")

	require.True(t, strings.HasPrefix(id, "n"))
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], randLen)
	assert.NotEmpty(t, parts[2])
}

func TestNew_UniqueUnderBurst(t *testing.T) {
	const count = 10000

	seen := make(map[string]struct{}, count)
	for range count {
		id := New("u")
		_, dup := seen[id]
		require.False(t, dup, "duplicate id generated: %s", id)
		seen[id] = struct{}{}
	}
}

func TestRepairDuplicates_KeepsFirstOccurrence(t *testing.T) {
	ids := []string{"n1", "n1", "n2"}

	repaired := RepairDuplicates(ids, "n")

	require.Len(t, repaired, 3)
	assert.Equal(t, "n1", repaired[0])
	assert.NotEqual(t, "n1", repaired[1])
	assert.Equal(t, "n2", repaired[2])
	assert.NotEqual(t, repaired[1], repaired[2])
}

func TestRepairDuplicates_NoDuplicatesUnchanged(t *testing.T) {
	ids := []string{"n1", "n2", "n3"}

	repaired := RepairDuplicates(ids, "n")

	assert.Equal(t, ids, repaired)
}

func TestRepairDuplicates_Empty(t *testing.T) {
	assert.Empty(t, RepairDuplicates(nil, "n"))
}
