package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/boardcut/internal/model"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func sampleResult(name string) model.Result {
	return model.Result{
		ProjectName: name,
		SplitRule:   model.SplitShorterAxisFirst,
		Layouts: []model.CuttingLayout{{
			MaterialCode: "MEL18",
			SheetIndex:   1,
			Board:        model.Rectangle{Width: 1220, Height: 2440},
			Usable:       model.FreeRect{Width: 1220, Height: 2440},
			Placements: []model.PlacedPiece{{
				Piece:    model.Piece{ID: "a", Label: "Door", Width: 600, Height: 400, Quantity: 1, Material: "MEL18"},
				Instance: 1,
				Width:    600,
				Height:   400,
			}},
			FreeRects: []model.FreeRect{{X: 605, Width: 615, Height: 400}, {Y: 405, Width: 1220, Height: 2035}},
		}},
		SheetsUsed: 1,
		TotalCost:  45,
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	e := Entry{Hash: "h1", CreatedAt: time.Now().UTC().Truncate(time.Millisecond), TTL: time.Hour, Result: sampleResult("one")}
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, e.Result, got.Result)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, time.Hour, got.TTL)

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestMemoryStore_ReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	r := sampleResult("copy")
	require.NoError(t, s.Put(ctx, Entry{Hash: "h", TTL: time.Hour, Result: r}))

	r.Layouts[0].Placements[0].X = 999
	got, err := s.Get(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Result.Layouts[0].Placements[0].X)

	got.Result.Layouts[0].SheetIndex = 7
	again, err := s.Get(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Result.Layouts[0].SheetIndex)
}

func TestMemoryStore_ExpiresOnRead(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore(10).WithClock(clock.Now)

	require.NoError(t, s.Put(ctx, Entry{Hash: "h", TTL: time.Minute, Result: sampleResult("ttl")}))
	clock.Advance(59 * time.Second)
	_, err := s.Get(ctx, "h")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = s.Get(ctx, "h")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	recent, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMemoryStore_ListRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore(2).WithClock(clock.Now)

	for _, h := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, Entry{Hash: h, TTL: time.Hour, Result: sampleResult(h)}))
		clock.Advance(time.Second)
	}
	// rewriting an older hash moves it to the front
	require.NoError(t, s.Put(ctx, Entry{Hash: "b", TTL: time.Hour, Result: sampleResult("b")}))

	recent, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Hash)
	assert.Equal(t, "c", recent[1].Hash)

	_, err = s.Get(ctx, "a")
	assert.True(t, errors.Is(err, model.ErrNotFound), "oldest entry is trimmed with the index")

	one, err := s.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	none, err := s.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
