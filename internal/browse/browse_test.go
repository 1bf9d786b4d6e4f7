package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"localpro/browse/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fetchCall struct {
	ctx    context.Context
	filter models.FetchFilter
	reply  chan fetchReply
}

type fetchReply struct {
	items []models.Listing
	err   error
}

// scriptedFetcher hands every call to the test, which decides when and
// how it completes.
type scriptedFetcher struct {
	calls chan fetchCall
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: make(chan fetchCall, 8)}
}

func (f *scriptedFetcher) FetchListings(ctx context.Context, _ models.Kind, filter models.FetchFilter) ([]models.Listing, error) {
	call := fetchCall{ctx: ctx, filter: filter, reply: make(chan fetchReply, 1)}
	f.calls <- call
	r := <-call.reply
	return r.items, r.err
}

func (f *scriptedFetcher) next(t *testing.T) fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not called")
		return fetchCall{}
	}
}

type staticFetcher struct {
	items []models.Listing
	err   error
}

func (f staticFetcher) FetchListings(context.Context, models.Kind, models.FetchFilter) ([]models.Listing, error) {
	return f.items, f.err
}

func listing(id, title, status string) models.Listing {
	return models.Listing{ID: id, Kind: models.KindBooking, Title: title, Status: status}
}

func TestSession_RefreshAndView(t *testing.T) {
	s := NewSession("s1", models.KindBooking, "u1", staticFetcher{items: []models.Listing{
		listing("1", "Plumbing", "pending"),
		listing("2", "Cleaning", "completed"),
	}}, time.Second, nil)

	empty := s.View()
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)

	require.NoError(t, s.Refresh(context.Background()))
	view := s.View()
	assert.Len(t, view.Items, 2)
	assert.Equal(t, uint64(1), view.Generation)
	assert.False(t, view.Loading)
	assert.False(t, view.FetchedAt.IsZero())

	s.SetFilters(models.FilterState{Status: "Pending"})
	view = s.View()
	require.Len(t, view.Items, 1)
	assert.Equal(t, "1", view.Items[0].ID)
}

func TestSession_FailedFetchKeepsItems(t *testing.T) {
	f := &staticFetcher{items: []models.Listing{listing("1", "Plumbing", "pending")}}
	s := NewSession("s1", models.KindBooking, "", f, 0, nil)
	require.NoError(t, s.Refresh(context.Background()))

	f.err = errors.New("network down")
	f.items = nil
	err := s.Refresh(context.Background())
	assert.ErrorContains(t, err, "network down")

	view := s.View()
	assert.Len(t, view.Items, 1)
	assert.Equal(t, "network down", view.Error)

	f.err = nil
	require.NoError(t, s.Refresh(context.Background()))
	assert.Empty(t, s.View().Error)
	assert.Empty(t, s.View().Items)
}

func TestSession_StaleFetchDiscarded(t *testing.T) {
	f := newScriptedFetcher()
	s := NewSession("s1", models.KindBooking, "u1", f, 0, nil)

	var wg sync.WaitGroup
	var firstErr, secondErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = s.Refresh(context.Background())
	}()
	first := f.next(t)
	assert.True(t, s.View().Loading)

	wg.Add(1)
	go func() {
		defer wg.Done()
		secondErr = s.Refresh(context.Background())
	}()
	second := f.next(t)

	// The older fetch was cancelled when the newer one started.
	select {
	case <-first.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("first fetch context was not cancelled")
	}

	second.reply <- fetchReply{items: []models.Listing{listing("new", "Fresh", "pending")}}
	// The old response arrives last and must not overwrite the new one.
	first.reply <- fetchReply{items: []models.Listing{listing("old", "Stale", "pending")}}
	wg.Wait()

	assert.ErrorIs(t, firstErr, ErrSuperseded)
	assert.NoError(t, secondErr)

	view := s.View()
	require.Len(t, view.Items, 1)
	assert.Equal(t, "new", view.Items[0].ID)
	assert.Equal(t, uint64(2), view.Generation)
	assert.False(t, view.Loading)
}

func TestSession_SetFiltersSupersedesInFlight(t *testing.T) {
	f := newScriptedFetcher()
	s := NewSession("s1", models.KindApplication, "u1", f, 0, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.Refresh(context.Background()) }()
	call := f.next(t)
	assert.Equal(t, "u1", call.filter.OwnerID, "personal kinds are scoped to the user")

	s.SetFilters(models.FilterState{Query: " drill "})
	<-call.ctx.Done()
	call.reply <- fetchReply{items: []models.Listing{listing("old", "Old", "open")}}
	assert.ErrorIs(t, <-errc, ErrSuperseded)
	assert.False(t, s.View().Loading)
	assert.Empty(t, s.View().Items)

	go func() { errc <- s.Refresh(context.Background()) }()
	call = f.next(t)
	assert.Equal(t, "drill", call.filter.Search)
	call.reply <- fetchReply{}
	assert.NoError(t, <-errc)
}

func TestSession_FetchTimeout(t *testing.T) {
	f := newScriptedFetcher()
	s := NewSession("s1", models.KindJob, "u1", f, 20*time.Millisecond, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.Refresh(context.Background()) }()
	call := f.next(t)
	assert.Empty(t, call.filter.OwnerID, "public kinds list everyone's records")
	<-call.ctx.Done()
	call.reply <- fetchReply{err: call.ctx.Err()}

	err := <-errc
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(staticFetcher{}, time.Second, time.Hour, nil)
	defer func() { require.NoError(t, m.Close(context.Background())) }()

	s := m.Create(models.KindContract, "u1")
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID(), "u1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(s.ID(), "u2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(s.ID(), "u2"), ErrSessionNotFound)

	require.NoError(t, m.Delete(s.ID(), "u1"))
	_, err = m.Get(s.ID(), "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestManager_Expire(t *testing.T) {
	m := NewManager(staticFetcher{}, time.Second, time.Minute, nil)
	defer m.Close(context.Background())

	first := m.Create(models.KindRental, "u1")
	m.Create(models.KindRental, "u1")

	assert.Equal(t, 0, m.Expire(time.Now()))
	assert.Equal(t, 2, m.Len())

	removed := m.Expire(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 2, removed)
	_, err := m.Get(first.ID(), "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_CloseCancelsInFlight(t *testing.T) {
	f := newScriptedFetcher()
	m := NewManager(f, 0, time.Hour, nil)
	s := m.Create(models.KindJob, "u1")

	errc := make(chan error, 1)
	go func() { errc <- s.Refresh(context.Background()) }()
	call := f.next(t)

	require.NoError(t, m.Close(context.Background()))
	<-call.ctx.Done()
	call.reply <- fetchReply{err: call.ctx.Err()}
	assert.Error(t, <-errc)
	assert.Equal(t, 0, m.Len())

	// Close is idempotent.
	require.NoError(t, m.Close(context.Background()))
}
