package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/idseek/internal/store"
	"github.com/dbsmedya/idseek/internal/types"
)

func TestStore_BoundsAndProbes(t *testing.T) {
	s := New()
	s.PutSeries("events", 1, 100, 200, 300)
	tbl := store.NewTable("events")
	ctx := context.Background()

	sess, err := s.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	r, ok, err := sess.Bounds(ctx, tbl)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.Range{MinID: 1, MaxID: 3}, r)

	v, ok, err := sess.OrdinalAt(ctx, tbl, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(200), v)

	_, ok, err = sess.OrdinalAt(ctx, tbl, 9)
	require.NoError(t, err)
	assert.False(t, ok)

	c := s.Counters()
	assert.Equal(t, 1, c.Sessions)
	assert.Equal(t, 1, c.Bounds)
	assert.Equal(t, 2, c.Probes)

	s.Reset()
	assert.Equal(t, Counters{}, s.Counters())
}

func TestStore_EmptyTable(t *testing.T) {
	s := New()
	sess, err := s.Session(context.Background())
	require.NoError(t, err)

	_, ok, err := sess.Bounds(context.Background(), store.NewTable("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_NearestAtOrBelow(t *testing.T) {
	s := New()
	s.PutSeries("events", 1, 100, 200, 300)
	s.Put("events", 10, 1000)
	s.Delete("events", 2)
	tbl := store.NewTable("events")
	ctx := context.Background()
	sess, err := s.Session(ctx)
	require.NoError(t, err)

	tests := []struct {
		id     int64
		want   types.Probe
		wantOK bool
	}{
		{id: 0, wantOK: false},
		{id: 1, want: types.Probe{ID: 1, Ordinal: 100}, wantOK: true},
		{id: 2, want: types.Probe{ID: 1, Ordinal: 100}, wantOK: true},
		{id: 3, want: types.Probe{ID: 3, Ordinal: 300}, wantOK: true},
		{id: 9, want: types.Probe{ID: 3, Ordinal: 300}, wantOK: true},
		{id: 10, want: types.Probe{ID: 10, Ordinal: 1000}, wantOK: true},
		{id: 99, want: types.Probe{ID: 10, Ordinal: 1000}, wantOK: true},
	}
	for _, tt := range tests {
		p, ok, err := sess.NearestAtOrBelow(ctx, tbl, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.wantOK, ok, "id %d", tt.id)
		if tt.wantOK {
			assert.Equal(t, tt.want, p, "id %d", tt.id)
		}
	}
}

func TestStore_PutKeepsIDsSorted(t *testing.T) {
	s := New()
	s.Put("t", 5, 50)
	s.Put("t", 1, 10)
	s.Put("t", 3, 30)
	s.Put("t", 3, 31)

	sess, err := s.Session(context.Background())
	require.NoError(t, err)
	r, ok, err := sess.Bounds(context.Background(), store.NewTable("t"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.Range{MinID: 1, MaxID: 5}, r)

	v, _, _ := sess.OrdinalAt(context.Background(), store.NewTable("t"), 3)
	assert.Equal(t, int64(31), v)
}

func TestStore_Failures(t *testing.T) {
	s := New()
	s.PutSeries("events", 1, 100, 200, 300)
	tbl := store.NewTable("events")
	ctx := context.Background()

	s.Fail("session", nil)
	_, err := s.Session(ctx)
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	assert.ErrorIs(t, err, ErrInjected)
	s.Heal()

	sess, err := s.Session(ctx)
	require.NoError(t, err)

	s.Fail("bounds", nil)
	_, _, err = sess.Bounds(ctx, tbl)
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	s.Heal()

	boom := errors.New("broken pipe")
	s.FailAt(2, boom)
	_, _, err = sess.OrdinalAt(ctx, tbl, 2)
	assert.ErrorIs(t, err, boom)
	var storeErr *store.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, int64(2), storeErr.ID)

	_, _, err = sess.OrdinalAt(ctx, tbl, 1)
	assert.NoError(t, err)
}

func TestStore_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Session(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
