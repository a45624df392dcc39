package lobby

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got: %+v", within, s)
	case <-time.After(within):
		// good: no snapshot
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

type recorded struct {
	code  string
	ended engine.State
}

type fakeRecorder struct {
	mu     sync.Mutex
	rounds []recorded
	err    error
}

func (f *fakeRecorder) RecordRound(_ context.Context, code string, ended engine.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds = append(f.rounds, recorded{code: code, ended: ended})
	return f.err
}

func (f *fakeRecorder) all() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.rounds...)
}

func newTestLobby(t *testing.T, opts ...Option) *Lobby {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewLobby(ctx, "TEST01", engine.NewEmptyState(engine.DefaultRoster), opts...)
}

func TestLobby_Increment_BroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	l := newTestLobby(t)

	clientOut := make(chan Snapshot, 2) // small buffer so broadcast doesn’t block
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}

	first := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if first.State.Scores["PAC-MAN"] != 0 {
		t.Fatalf("after join: expected zero score, got %+v", first.State.Scores)
	}

	l.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdIncrement, Team: "PAC-MAN"}}

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after increment: want version=1, got %d", next.Version)
	}
	if next.State.Scores["PAC-MAN"] != 1 {
		t.Fatalf("after increment: expected PAC-MAN=1, got %+v", next.State.Scores)
	}

	l.Inbox() <- Shutdown{}
}

func TestLobby_DropSlowClient(t *testing.T) {
	l := newTestLobby(t)

	clientOut := make(chan Snapshot, 1)
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}

	l.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdActivateCell, Team: "TETRIS", Cell: 3}}

	reply := make(chan View, 1)
	l.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
}

func TestLobby_RejectedCommand_KeepsVersion(t *testing.T) {
	l := newTestLobby(t)
	out := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	ctx := context.Background()
	snap, err := l.Do(ctx, engine.Command{Type: engine.CmdIncrement, Team: "GALAGA"})
	require.ErrorIs(t, err, engine.ErrUnknownTeam)
	assert.Equal(t, 0, snap.Version)

	recvNoSnapshot(t, out, 50*time.Millisecond)
}

func TestLobby_DeclinedReset_NoBroadcast(t *testing.T) {
	rec := &fakeRecorder{}
	l := newTestLobby(t, WithRecorder(rec))
	ctx := context.Background()

	_, err := l.Do(ctx, engine.Command{Type: engine.CmdIncrement, Team: "PINBALL"})
	require.NoError(t, err)

	out := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	snap, err := l.Do(ctx, engine.Command{Type: engine.CmdReset, Confirmed: false})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Version)
	assert.Equal(t, 1, snap.State.Scores["PINBALL"])

	recvNoSnapshot(t, out, 50*time.Millisecond)
	assert.Empty(t, rec.all())
}

func TestLobby_ConfirmedReset_ArchivesEndedRound(t *testing.T) {
	rec := &fakeRecorder{}
	l := newTestLobby(t, WithRecorder(rec))
	ctx := context.Background()

	for _, cmd := range []engine.Command{
		{Type: engine.CmdIncrement, Team: "DAYTONA"},
		{Type: engine.CmdIncrement, Team: "DAYTONA"},
		{Type: engine.CmdDecrement, Team: "TETRIS"},
		{Type: engine.CmdActivateCell, Team: "TETRIS", Cell: 0},
	} {
		_, err := l.Do(ctx, cmd)
		require.NoError(t, err)
	}

	snap, err := l.Do(ctx, engine.Command{Type: engine.CmdReset, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Version)
	assert.Equal(t, 1, snap.State.Epoch)
	assert.Equal(t, 0, snap.State.Scores["DAYTONA"])
	assert.Equal(t, engine.CellEmpty, snap.State.Grids["TETRIS"].Cells[0].State)

	rounds := rec.all()
	require.Len(t, rounds, 1)
	assert.Equal(t, "TEST01", rounds[0].code)
	assert.Equal(t, 2, rounds[0].ended.Scores["DAYTONA"])
	assert.Equal(t, -1, rounds[0].ended.Scores["TETRIS"])
	assert.Equal(t, 0, rounds[0].ended.Epoch)
}

func TestLobby_ArchiveFailure_DoesNotBlockReset(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db down")}
	l := newTestLobby(t, WithRecorder(rec))

	snap, err := l.Do(context.Background(), engine.Command{Type: engine.CmdReset, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Epoch)
	assert.Len(t, rec.all(), 1)
}

func TestLobby_Shutdown_ClosesOutboxesAndRejectsCommands(t *testing.T) {
	l := newTestLobby(t)

	out := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 500*time.Millisecond) // drain join snapshot

	l.Inbox() <- Shutdown{}

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("lobby did not stop")
	}
	recvNoSnapshot(t, out, 100*time.Millisecond)

	_, err := l.Do(context.Background(), engine.Command{Type: engine.CmdIncrement, Team: "PAC-MAN"})
	assert.ErrorIs(t, err, ErrLobbyClosed)
}

func TestLobby_View(t *testing.T) {
	l := newTestLobby(t)
	ctx := context.Background()

	_, err := l.Do(ctx, engine.Command{Type: engine.CmdActivateCell, Team: "PAC-MAN", Cell: 35})
	require.NoError(t, err)

	v, err := l.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Version)
	assert.Equal(t, 0, v.NumClients)
	assert.Equal(t, engine.CellWave, v.State.Grids["PAC-MAN"].Cells[35].State)
	assert.Equal(t, "TEST01", l.Code())
}
