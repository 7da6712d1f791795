package driftstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/aq-predictor/internal/domain/predictor"
)

func TestMemoryStoreTopUnseen(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	for _, rec := range []struct{ field, label string }{
		{"unit", "ppb"},
		{"parameter", "o3"},
		{"unit", "ppb"},
		{"location_id", "L9"},
		{"parameter", "o3"},
		{"unit", "ppb"},
	} {
		require.NoError(t, store.RecordUnseen(ctx, rec.field, rec.label))
	}
	require.NoError(t, store.RecordUnseen(ctx, "", "ignored"))

	items, err := store.TopUnseen(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []predictor.UnseenLabel{
		{Field: "unit", Label: "ppb", Count: 3},
		{Field: "parameter", Label: "o3", Count: 2},
	}, items)

	all, err := store.TopUnseen(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestMemoryStoreConcurrentRecord(t *testing.T) {
	store := NewMemoryStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.RecordUnseen(context.Background(), "unit", "ppb")
		}()
	}
	wg.Wait()
	items, err := store.TopUnseen(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(50), items[0].Count)
}

func TestMemberEncoding(t *testing.T) {
	field, label := decodeMember(encodeMember("location_name", "Station: A"))
	require.Equal(t, "location_name", field)
	require.Equal(t, "Station: A", label)

	field, label = decodeMember("legacy")
	require.Equal(t, "legacy", field)
	require.Empty(t, label)
}

func TestMemoryStoreCapsDistinctEntries(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, store.RecordUnseen(ctx, "location_id", fmt.Sprintf("L%d", i)))
	}
	require.NoError(t, store.RecordUnseen(ctx, "location_id", "L0"))

	items, err := store.TopUnseen(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, predictor.UnseenLabel{Field: "location_id", Label: "L0", Count: 2}, items[0])
}

func TestMemoryStoreTruncatesLongLabels(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	long := strings.Repeat("x", 10_000)
	require.NoError(t, store.RecordUnseen(ctx, "location_name", long))
	require.NoError(t, store.RecordUnseen(ctx, "location_name", long+"y"))

	items, err := store.TopUnseen(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Label, MaxLabelLength)
	require.Equal(t, int64(2), items[0].Count)
}

func TestTruncateLabelKeepsRunesWhole(t *testing.T) {
	label := strings.Repeat("a", MaxLabelLength-1) + "µg"
	got := truncateLabel(label)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, strings.Repeat("a", MaxLabelLength-1), got)
	require.Equal(t, "short", truncateLabel("short"))
}

func TestTrimStopKeepsTopMembers(t *testing.T) {
	require.Equal(t, int64(-11), trimStop(10))
	require.Equal(t, DefaultMaxEntries, normalizeMaxEntries(0))
	require.Equal(t, 5, normalizeMaxEntries(5))
}
