package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewalden/reckon"
	"github.com/ewalden/reckon/date"
)

var testAsOf = date.New(2026, time.March, 10)

type fakeLoader struct {
	in  Input
	err error
}

func (l fakeLoader) Load(_ context.Context, accountID uuid.UUID) (Input, error) {
	return l.in, l.err
}

type fakeStore struct {
	mu     sync.Mutex
	series map[uuid.UUID][]reckon.Balance
	writes atomic.Int32
	active atomic.Int32
	// overlapped flips if two ReplaceRange calls ever run concurrently.
	overlapped atomic.Bool
	err        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{series: make(map[uuid.UUID][]reckon.Balance)}
}

func (s *fakeStore) ReplaceRange(_ context.Context, accountID uuid.UUID, series []reckon.Balance) error {
	if s.active.Add(1) > 1 {
		s.overlapped.Store(true)
	}
	time.Sleep(time.Millisecond)
	s.active.Add(-1)
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes.Add(1)
	s.series[accountID] = series
	return nil
}

func testAccount(t *testing.T) reckon.Account {
	t.Helper()
	a, err := reckon.NewAccount("synced account", "USD", reckon.Depository)
	require.NoError(t, err)
	return a
}

func TestSyncForward(t *testing.T) {
	account := testAccount(t)
	in := Input{
		Account: account,
		Entries: []reckon.Entry{
			reckon.NewTransaction(account.ID, testAsOf.Add(-2), reckon.M(-500, "USD")),
		},
		AsOf: testAsOf,
	}
	store := newFakeStore()
	s := New(fakeLoader{in: in}, store)

	require.NoError(t, s.Sync(context.Background(), account.ID))

	series := store.series[account.ID]
	require.Len(t, series, 3)
	require.NoError(t, reckon.CheckSeries(series))
	assert.True(t, series[len(series)-1].EndBalance().Equal(reckon.M(500, "USD").Decimal()))
}

func TestSyncBackwardWhenAnchored(t *testing.T) {
	account := testAccount(t)
	cash := reckon.M(900, "USD")
	in := Input{
		Account: account,
		Entries: []reckon.Entry{
			reckon.NewTransaction(account.ID, testAsOf.Add(-1), reckon.M(100, "USD")),
		},
		Anchor: &Anchor{
			Balance: reckon.M(900, "USD"),
			Cash:    &cash,
			Date:    testAsOf,
		},
	}
	store := newFakeStore()
	s := New(fakeLoader{in: in}, store)

	require.NoError(t, s.Sync(context.Background(), account.ID))

	series := store.series[account.ID]
	require.Len(t, series, 2)
	require.NoError(t, reckon.CheckSeries(series))
	// Anchored at 900 with a 100 expense the day before: the account held
	// 1000 before the expense.
	assert.True(t, series[0].StartBalance().Equal(reckon.M(1000, "USD").Decimal()))
	assert.True(t, series[1].EndBalance().Equal(reckon.M(900, "USD").Decimal()))
}

func TestSyncLoaderError(t *testing.T) {
	store := newFakeStore()
	s := New(fakeLoader{err: errors.New("ledger unavailable")}, store)

	err := s.Sync(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, int32(0), store.writes.Load(), "a failed load must not touch the store")
}

func TestSyncStoreError(t *testing.T) {
	account := testAccount(t)
	store := newFakeStore()
	store.err = errors.New("disk full")
	s := New(fakeLoader{in: Input{Account: account, AsOf: testAsOf}}, store)

	require.Error(t, s.Sync(context.Background(), account.ID))
}

func TestSyncSerializesPerAccount(t *testing.T) {
	account := testAccount(t)
	in := Input{Account: account, AsOf: testAsOf}
	store := newFakeStore()
	s := New(fakeLoader{in: in}, store)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Sync(context.Background(), account.ID))
		}()
	}
	wg.Wait()

	assert.False(t, store.overlapped.Load(), "runs for one account must not interleave")
	assert.Equal(t, int32(8), store.writes.Load())
}
