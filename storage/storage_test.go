package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetDispatch(t *testing.T) {
	db := openTestDB(t)

	d := &Dispatch{
		Kind:         "freetext",
		Menu:         "Rocket League",
		Label:        "What a save!",
		PayloadChars: 12,
		FrameCount:   1,
		DurationMs:   85,
		Success:      true,
	}
	require.NoError(t, db.SaveDispatch(d))
	assert.NotZero(t, d.ID, "save should populate the record ID")

	dispatches, err := db.GetDispatches(10, 0)
	require.NoError(t, err)
	require.Len(t, dispatches, 1)

	got := dispatches[0]
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, "freetext", got.Kind)
	assert.Equal(t, "Rocket League", got.Menu)
	assert.Equal(t, "What a save!", got.Label)
	assert.Equal(t, 12, got.PayloadChars)
	assert.Equal(t, 1, got.FrameCount)
	assert.Equal(t, int64(85), got.DurationMs)
	assert.True(t, got.Success)
	assert.Empty(t, got.ErrorMessage)
	assert.False(t, got.Timestamp.IsZero())
}

func TestSaveFailedDispatch(t *testing.T) {
	db := openTestDB(t)

	d := &Dispatch{
		Kind:         "animation",
		Menu:         "Animations",
		Label:        "Truck",
		FrameCount:   7,
		PayloadChars: 2400,
		DurationMs:   3500,
		Success:      false,
		ErrorMessage: "injection failed at clipboard: access denied",
	}
	require.NoError(t, db.SaveDispatch(d))

	dispatches, err := db.GetDispatches(10, 0)
	require.NoError(t, err)
	require.Len(t, dispatches, 1)
	assert.False(t, dispatches[0].Success)
	assert.Equal(t, d.ErrorMessage, dispatches[0].ErrorMessage)
}

func TestGetDispatchesPagination(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveDispatch(&Dispatch{
			Kind: "voicewheel", Menu: "Combat", Label: "On My Way",
			FrameCount: 1, DurationMs: 240, Success: true,
		}))
	}

	page, err := db.GetDispatches(2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := db.GetDispatches(10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)

	total, err := db.GetDispatchCount()
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestDeleteDispatch(t *testing.T) {
	db := openTestDB(t)

	d := &Dispatch{Kind: "freetext", Menu: "Chat", Label: "Thanks!", Success: true}
	require.NoError(t, db.SaveDispatch(d))

	require.NoError(t, db.DeleteDispatch(d.ID))

	total, err := db.GetDispatchCount()
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.Error(t, db.DeleteDispatch(d.ID), "deleting a missing record should error")
}

func TestStats(t *testing.T) {
	db := openTestDB(t)

	records := []*Dispatch{
		{Kind: "freetext", Menu: "Chat", Label: "a", PayloadChars: 10, FrameCount: 1, DurationMs: 100, Success: true},
		{Kind: "freetext", Menu: "Chat", Label: "b", PayloadChars: 20, FrameCount: 1, DurationMs: 200, Success: false, ErrorMessage: "boom"},
		{Kind: "animation", Menu: "Animations", Label: "Truck", PayloadChars: 300, FrameCount: 12, DurationMs: 6000, Success: true},
	}
	for _, d := range records {
		require.NoError(t, db.SaveDispatch(d))
	}

	overall, err := db.GetOverallStats(7)
	require.NoError(t, err)
	assert.Equal(t, 3, overall.TotalDispatches)
	assert.Equal(t, 14, overall.TotalFrames)
	assert.Equal(t, 330, overall.TotalPayloadChars)
	assert.Equal(t, 2, overall.SuccessCount)
	assert.Equal(t, 1, overall.FailureCount)
	assert.Equal(t, int64(6300), overall.TotalDurationMs)

	daily, err := db.GetDailyStats(7)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 3, daily[0].TotalDispatches)
	assert.Equal(t, 2, daily[0].SuccessCount)
	assert.Equal(t, 1, daily[0].FailureCount)

	kinds, err := db.GetKindStats(7)
	require.NoError(t, err)
	require.Len(t, kinds, 2)

	byKind := map[string]KindStats{}
	for _, k := range kinds {
		byKind[k.Kind] = k
	}
	assert.Equal(t, 2, byKind["freetext"].TotalDispatches)
	assert.Equal(t, 1, byKind["freetext"].FailureCount)
	assert.Equal(t, 12, byKind["animation"].TotalFrames)
}

func TestStatsEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	overall, err := db.GetOverallStats(7)
	require.NoError(t, err)
	assert.Zero(t, overall.TotalDispatches)
	assert.Zero(t, overall.TotalFrames)
	assert.Zero(t, overall.AvgDurationMs)

	daily, err := db.GetDailyStats(7)
	require.NoError(t, err)
	assert.Empty(t, daily)
}
