package repository

import (
	"strconv"
	"testing"

	"commerce-sync-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResources(n int) []domain.CanonicalResource {
	out := make([]domain.CanonicalResource, n)
	for i := range out {
		out[i] = domain.CanonicalResource{
			TenantID:   "tenant-1",
			StoreID:    "store-1",
			Kind:       domain.KindCatalogItem,
			ExternalID: strconv.Itoa(i),
		}
	}
	return out
}

func TestChunkResources(t *testing.T) {
	cases := []struct {
		total      int
		chunkSizes []int
	}{
		{0, nil},
		{1, []int{1}},
		{24, []int{24}},
		{25, []int{25}},
		{26, []int{25, 1}},
		{75, []int{25, 25, 25}},
	}

	for _, tc := range cases {
		chunks := chunkResources(makeResources(tc.total), maxBatchSize)
		require.Len(t, chunks, len(tc.chunkSizes), "total=%d", tc.total)
		for i, want := range tc.chunkSizes {
			assert.Len(t, chunks[i], want, "total=%d chunk=%d", tc.total, i)
		}
	}
}

func TestChunkResourcesPreservesOrder(t *testing.T) {
	chunks := chunkResources(makeResources(30), maxBatchSize)
	require.Len(t, chunks, 2)
	assert.Equal(t, "0", chunks[0][0].ExternalID)
	assert.Equal(t, "24", chunks[0][24].ExternalID)
	assert.Equal(t, "25", chunks[1][0].ExternalID)
}
