package hub

import (
	"context"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
	"github.com/DoyleJ11/batalla-naval/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Code  string
	State engine.State
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type EnsureLobby struct {
	Code  string
	State engine.State // only used if creation happens
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	opts    []lobby.Option
	ctx     context.Context
	cancel  context.CancelFunc
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// NewHub starts the registry. opts are applied to every lobby it creates.
func NewHub(parent context.Context, opts ...lobby.Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby, EnsureLobby:
				code, state, reply := creation(msg)
				if lb := h.lobbies[code]; lb != nil {
					reply <- lb
					break
				}
				lb := lobby.NewLobby(h.ctx, code, state, h.opts...)
				h.lobbies[code] = lb
				reply <- lb

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					lb.Inbox() <- lobby.Shutdown{}
					delete(h.lobbies, msg.Code)
				}

			case ShutdownHub:
				for _, lb := range h.lobbies {
					lb.Inbox() <- lobby.Shutdown{}
				}
				clear(h.lobbies)
				h.cancel()
			}
		}
	}
}

func creation(m HubMsg) (string, engine.State, chan *lobby.Lobby) {
	switch msg := m.(type) {
	case CreateLobby:
		return msg.Code, msg.State, msg.Reply
	case EnsureLobby:
		return msg.Code, msg.State, msg.Reply
	}
	return "", engine.State{}, nil
}

// Get looks up a lobby by code; nil when absent or once the hub is shut down.
func (h *Hub) Get(code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	return h.ask(GetLobby{Code: code, Reply: reply}, reply)
}

// Ensure returns the lobby for code, creating it from state when missing.
// It returns nil once the hub is shut down.
func (h *Hub) Ensure(code string, state engine.State) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	return h.ask(EnsureLobby{Code: code, State: state, Reply: reply}, reply)
}

func (h *Hub) ask(msg HubMsg, reply chan *lobby.Lobby) *lobby.Lobby {
	select {
	case h.inbox <- msg:
	case <-h.ctx.Done():
		return nil
	}
	select {
	case lb := <-reply:
		return lb
	case <-h.ctx.Done():
		return nil
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }
