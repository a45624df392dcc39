package lobby

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
)

var ErrLobbyClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	Cmd   engine.Command
	Reply chan Result // optional
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Result struct {
	Snapshot Snapshot
	Err      error
}

// Recorder stores the final scores of a round when a reset is confirmed.
type Recorder interface {
	RecordRound(ctx context.Context, code string, ended engine.State) error
}

type Option func(*Lobby)

func WithLogger(log *zap.Logger) Option {
	return func(l *Lobby) { l.log = log }
}

func WithRecorder(r Recorder) Option {
	return func(l *Lobby) { l.recorder = r }
}

type Lobby struct {
	code     string
	inbox    chan Msg
	state    engine.State
	version  int
	clients  map[string]chan Snapshot
	recorder Recorder
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewLobby(parent context.Context, code string, initial engine.State, opts ...Option) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		code:    code,
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		log:     zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(zap.String("lobby", code))

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.snapshot()
				l.log.Debug("client joined", zap.String("client", msg.ClientID))

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}
				l.log.Debug("client left", zap.String("client", msg.ClientID))

			case FromClient:
				l.handle(msg)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handle(msg FromClient) {
	events, newState, err := engine.Apply(l.state, msg.Cmd)
	if err != nil {
		l.log.Info("command rejected",
			zap.String("type", string(msg.Cmd.Type)),
			zap.String("team", string(msg.Cmd.Team)),
			zap.Error(err))
		reply(msg.Reply, Result{Snapshot: l.snapshot(), Err: err})
		return
	}

	// Declined reset: nothing changed, nothing to publish.
	if len(events) == 0 {
		reply(msg.Reply, Result{Snapshot: l.snapshot()})
		return
	}

	if engine.ContainsEvent(events, engine.EvtBoardReset) {
		l.archive(l.state)
		l.log.Info("board reset", zap.Int("epoch", newState.Epoch))
	}

	l.state = newState
	l.version++
	snap := l.snapshot()
	l.broadcast(snap)
	reply(msg.Reply, Result{Snapshot: snap})
}

func (l *Lobby) archive(ended engine.State) {
	if l.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(l.ctx, 2*time.Second)
	defer cancel()
	if err := l.recorder.RecordRound(ctx, l.code, ended); err != nil {
		l.log.Warn("failed to archive round", zap.Error(err))
	}
}

func (l *Lobby) snapshot() Snapshot {
	return Snapshot{Version: l.version, State: l.state}
}

func reply(ch chan Result, r Result) {
	if ch == nil {
		return
	}
	select {
	case ch <- r:
	default:
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			l.log.Info("dropping slow client", zap.String("client", id))
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Code() string { return l.code }

// Done is closed once the lobby loop has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Send delivers msg unless the lobby has shut down or ctx ends first.
func (l *Lobby) Send(ctx context.Context, msg Msg) error {
	select {
	case l.inbox <- msg:
		return nil
	case <-l.done:
		return ErrLobbyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do applies cmd and waits for the outcome.
func (l *Lobby) Do(ctx context.Context, cmd engine.Command) (Snapshot, error) {
	res := make(chan Result, 1)
	if err := l.Send(ctx, FromClient{Cmd: cmd, Reply: res}); err != nil {
		return Snapshot{}, err
	}
	select {
	case r := <-res:
		return r.Snapshot, r.Err
	case <-l.done:
		return Snapshot{}, ErrLobbyClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// View returns the lobby's current state.
func (l *Lobby) View(ctx context.Context) (View, error) {
	res := make(chan View, 1)
	if err := l.Send(ctx, GetState{Reply: res}); err != nil {
		return View{}, err
	}
	select {
	case v := <-res:
		return v, nil
	case <-l.done:
		return View{}, ErrLobbyClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
