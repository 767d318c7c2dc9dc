package hub

import (
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/twetzel59/craftd/pkg/protocol"
	"github.com/twetzel59/craftd/pkg/world"
)

// outboundBuffer bounds how far a peer's writer goroutine may lag behind
// the hub before writes to it start being dropped instead of blocking the
// hub's single event-processing goroutine.
const outboundBuffer = 256

// Peer is one connected session: a cached nickname/IP/transform, plus an
// outbound channel serviced by a dedicated writer goroutine so a slow
// socket never blocks the event hub.
type Peer struct {
	ID   uint32
	IP   string
	conn net.Conn
	log  *zap.SugaredLogger

	mu        sync.Mutex
	nick      string
	transform protocol.Position

	out       chan string
	closeOnce sync.Once
}

func newPeer(id uint32, ip, nick string, conn net.Conn, log *zap.SugaredLogger) *Peer {
	p := &Peer{
		ID:   id,
		IP:   ip,
		conn: conn,
		log:  log,
		nick: nick,
		out:  make(chan string, outboundBuffer),
	}
	go p.writeLoop()
	return p
}

// Nick returns this peer's current nickname.
func (p *Peer) Nick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nick
}

// SetNick updates this peer's cached nickname.
func (p *Peer) SetNick(nick string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nick = nick
}

// Transform returns this peer's last reported position and rotation.
func (p *Peer) Transform() protocol.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transform
}

// SetTransform updates this peer's cached position and rotation. Called
// exactly once per Position event the hub consumes from this peer.
func (p *Peer) SetTransform(t protocol.Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transform = t
}

// writeLoop drains p.out to the socket until the channel is closed. Write
// errors are swallowed: the paired reader will observe the broken
// connection soon after and produce a Disconnected event.
func (p *Peer) writeLoop() {
	for line := range p.out {
		if _, err := io.WriteString(p.conn, line); err != nil {
			return
		}
	}
}

// send enqueues a pre-formatted line for delivery. It never blocks: a full
// outbound buffer means this peer's socket is badly backed up, and the
// write is dropped rather than stalling the hub.
func (p *Peer) send(line string) {
	select {
	case p.out <- line:
	default:
		p.log.Warnw("dropping outbound record to backed-up peer", "id", p.ID)
	}
}

// close stops the writer goroutine and the underlying socket. Calls after
// the first are no-ops.
func (p *Peer) close() {
	p.closeOnce.Do(func() {
		close(p.out)
		_ = p.conn.Close()
	})
}

// SendAssign sends the U record: this peer's ID and spawn transform.
func (p *Peer) SendAssign(x, y, z, rx, ry float32) {
	p.send(protocol.FormatAssign(p.ID, x, y, z, rx, ry))
}

// SendTime sends the E record: current server time and day length.
func (p *Peer) SendTime(t float32, dayLength int) {
	p.send(protocol.FormatTime(t, dayLength))
}

// SendPosition sends a P record reporting subject's transform.
func (p *Peer) SendPosition(subject uint32, t protocol.Position) {
	p.send(protocol.FormatPosition(subject, t.X, t.Y, t.Z, t.RX, t.RY))
}

// SendNick sends an N record for subject.
func (p *Peer) SendNick(subject uint32, nick string) {
	p.send(protocol.FormatNick(subject, nick))
}

// SendTalk sends a T record (chat or notice).
func (p *Peer) SendTalk(text string) {
	p.send(protocol.FormatTalk(text))
}

// SendBlock sends a B record for a block at pos within chunk key.
func (p *Peer) SendBlock(key world.ChunkKey, pos world.Pos, kind int8) {
	p.send(protocol.FormatBlock(key.P, key.Q, pos.X, pos.Y, pos.Z, kind))
}

// SendSign sends an S record for sk within chunk key.
func (p *Peer) SendSign(key world.ChunkKey, sk world.SignKey, text string) {
	p.send(protocol.FormatSign(key.P, key.Q, sk.X, sk.Y, sk.Z, sk.Face, text))
}

// SendLight sends an L record for pos within chunk key.
func (p *Peer) SendLight(key world.ChunkKey, pos world.Pos, level int8) {
	p.send(protocol.FormatLight(key.P, key.Q, pos.X, pos.Y, pos.Z, level))
}

// SendRedraw sends an R record telling the client to redraw chunk key.
func (p *Peer) SendRedraw(key world.ChunkKey) {
	p.send(protocol.FormatRedraw(key.P, key.Q))
}

// SendDisconnect sends a D record announcing that subject has left.
func (p *Peer) SendDisconnect(subject uint32) {
	p.send(protocol.FormatDisconnect(subject))
}

// readLoop loops reading lines from the peer's socket, parses each into an
// event, and pushes it onto emit. On EOF or a read error it emits a
// disconnected event and returns.
func (p *Peer) readLoop(emit func(id uint32, payload any)) {
	sc := protocol.NewLineScanner(p.conn)
	for sc.Scan() {
		line := sc.Text()
		rec, err := protocol.Parse(line)
		if err != nil {
			p.log.Warnw("dropping malformed record", "id", p.ID, "line", line, "err", err)
			continue
		}
		emit(p.ID, rec)
	}
	emit(p.ID, disconnected{})
}
