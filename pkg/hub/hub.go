// Package hub implements the event multiplexer: it owns the roster of
// connected peers, serialises every inbound event onto a single goroutine,
// mutates the world store, and fans results back out to peers.
package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/twetzel59/craftd/pkg/nick"
	"github.com/twetzel59/craftd/pkg/protocol"
	"github.com/twetzel59/craftd/pkg/store"
	"github.com/twetzel59/craftd/pkg/world"
)

// inboundBuffer sizes the hub's single inbound event channel. Every
// connected peer's reader, plus the acceptor, feeds into it.
const inboundBuffer = 1024

// freedIDBuffer bounds how many freed IDs can await reuse before the
// acceptor catches up; generous enough that a full buffer would indicate a
// leak rather than ordinary churn.
const freedIDBuffer = 1 << 16

// connected carries a newly handshaken Peer into the hub's event stream.
// It travels on the same channel as every other event so that it is
// strictly ordered before any event the peer's own reader produces (the
// reader is only started after the Peer has been handed to the hub).
type connected struct{ peer *Peer }

// disconnected marks that a peer's reader observed EOF or an error.
type disconnected struct{}

type event struct {
	id      uint32
	payload any
}

// Hub is the single-threaded event multiplexer. All fields below
// events/freed are touched only from the goroutine running Run.
type Hub struct {
	log   *zap.SugaredLogger
	world *world.World
	store *store.Worker
	nicks *nick.Registry
	start time.Time

	events chan event
	freed  chan uint32

	roster map[uint32]*Peer
}

// New constructs a Hub over the given world store, persistence worker, and
// nickname registry.
func New(w *world.World, st *store.Worker, nicks *nick.Registry, log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:    log,
		world:  w,
		store:  st,
		nicks:  nicks,
		start:  time.Now(),
		events: make(chan event, inboundBuffer),
		freed:  make(chan uint32, freedIDBuffer),
		roster: make(map[uint32]*Peer),
	}
}

// FreedIDs returns the channel the acceptor drains to reuse IDs before
// allocating fresh ones.
func (h *Hub) FreedIDs() <-chan uint32 { return h.freed }

// Connect admits a newly handshaken peer. Must be called before the peer's
// reader goroutine is started, so that this connect event is strictly
// ordered ahead of any event that peer's reader produces.
func (h *Hub) Connect(p *Peer) {
	h.events <- event{id: p.ID, payload: connected{peer: p}}
}

// emit is passed to each Peer's readLoop as its event sink.
func (h *Hub) emit(id uint32, payload any) {
	h.events <- event{id: id, payload: payload}
}

// Run processes events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev event) {
	switch p := ev.payload.(type) {
	case connected:
		h.handleConnected(ev.id, p.peer)
	case protocol.Position:
		h.handlePosition(ev.id, p)
	case protocol.Talk:
		h.handleTalk(ev.id, p)
	case protocol.Block:
		h.handleBlock(ev.id, p)
	case protocol.ChunkRequest:
		h.handleChunkRequest(ev.id, p)
	case protocol.Sign:
		h.handleSign(ev.id, p)
	case protocol.Light:
		h.handleLight(ev.id, p)
	case disconnected:
		h.handleDisconnected(ev.id)
	default:
		h.log.Warnw("dropping event with unrecognized payload", "id", ev.id, "type", p)
	}
}

// serverTime returns seconds elapsed since the hub started, offset by half
// a day so the world begins at noon, as in the reference client.
func (h *Hub) serverTime() float32 {
	return float32(time.Since(h.start).Seconds()) + float32(protocol.DayLength)/2
}

func (h *Hub) handleConnected(id uint32, peer *Peer) {
	h.roster[id] = peer

	peer.SendAssign(0, 0, 0, 0, 0)
	peer.SendTime(h.serverTime(), protocol.DayLength)

	for otherID, other := range h.roster {
		if otherID == id {
			continue
		}
		peer.SendPosition(otherID, other.Transform())
		peer.SendNick(otherID, other.Nick())
	}
	peer.SendNick(id, peer.Nick())

	h.broadcastExcept(id, func(other *Peer) {
		other.SendPosition(id, protocol.Position{})
		other.SendNick(id, peer.Nick())
	})
}

func (h *Hub) handlePosition(id uint32, pos protocol.Position) {
	peer, ok := h.roster[id]
	if !ok {
		return
	}
	peer.SetTransform(pos)
	h.broadcastExcept(id, func(other *Peer) {
		other.SendPosition(id, pos)
	})
}

func (h *Hub) handleTalk(id uint32, t protocol.Talk) {
	peer, ok := h.roster[id]
	if !ok {
		return
	}
	if len(t.Text) > 0 && t.Text[0] == '/' {
		h.handleCommand(id, peer, t.Text[1:])
		return
	}

	msg := peer.Nick() + "> " + t.Text
	h.broadcastAll(func(p *Peer) { p.SendTalk(msg) })
}

func (h *Hub) handleBlock(id uint32, b protocol.Block) {
	pos := world.Pos{X: b.X, Y: b.Y, Z: b.Z}
	key := world.ChunkOf(pos.X, pos.Z)

	touched := h.world.SetBlock(pos, key, b.W)

	for _, ck := range touched {
		kind := b.W
		if ck != key {
			kind = -b.W
		}
		h.store.Enqueue(store.SetBlock{XYZ: pos, PQ: ck, W: kind})
		h.broadcastAll(func(p *Peer) { p.SendBlock(ck, pos, kind) })
		h.broadcastAll(func(p *Peer) { p.SendRedraw(ck) })
	}
}

func (h *Hub) handleChunkRequest(id uint32, c protocol.ChunkRequest) {
	peer, ok := h.roster[id]
	if !ok {
		return
	}
	key := world.ChunkKey{P: c.P, Q: c.Q}

	for _, be := range h.world.BlocksInChunk(key) {
		peer.SendBlock(key, be.Pos, be.Kind)
	}
	for _, se := range h.world.SignsInChunk(key) {
		peer.SendSign(key, se.Key, se.Text)
	}
	peer.SendRedraw(key)
}

func (h *Hub) handleSign(id uint32, s protocol.Sign) {
	pos := world.Pos{X: s.X, Y: s.Y, Z: s.Z}
	key := world.ChunkOf(pos.X, pos.Z)

	h.world.SetSign(pos, key, s.Face, s.Text)
	h.store.Enqueue(store.SetSign{XYZ: pos, Face: s.Face, Text: s.Text})

	sk := world.SignKey{X: pos.X, Y: pos.Y, Z: pos.Z, Face: s.Face}
	h.broadcastAll(func(p *Peer) { p.SendSign(key, sk, s.Text) })
}

func (h *Hub) handleLight(id uint32, l protocol.Light) {
	pos := world.Pos{X: l.X, Y: l.Y, Z: l.Z}
	key := world.ChunkOf(pos.X, pos.Z)

	h.world.SetLight(pos, key, l.W)
	h.store.Enqueue(store.SetLight{XYZ: pos, PQ: key, W: l.W})

	h.broadcastAll(func(p *Peer) { p.SendLight(key, pos, l.W) })
}

func (h *Hub) handleDisconnected(id uint32) {
	peer, ok := h.roster[id]
	if !ok {
		return
	}
	nickname := peer.Nick()
	delete(h.roster, id)
	peer.close()

	select {
	case h.freed <- id:
	default:
		h.log.Warnw("freed-ID buffer full, dropping reuse", "id", id)
	}

	notice := nickname + " has left the game"
	h.broadcastAll(func(p *Peer) {
		p.SendDisconnect(id)
		p.SendTalk(notice)
	})
}
