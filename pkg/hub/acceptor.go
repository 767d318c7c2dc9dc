package hub

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/twetzel59/craftd/pkg/protocol"
)

// ListenAddr is the default bind address.
const ListenAddr = "0.0.0.0:4080"

// Acceptor binds the listening socket and hands each handshaken connection
// to the hub as a new Peer.
type Acceptor struct {
	hub     *Hub
	log     *zap.SugaredLogger
	nextID  uint32
}

// NewAcceptor constructs an Acceptor that feeds newly connected peers into h.
func NewAcceptor(h *Hub, log *zap.SugaredLogger) *Acceptor {
	return &Acceptor{hub: h, log: log, nextID: 1}
}

// Run binds addr and accepts connections until ctx is cancelled or accept
// fails fatally.
func (a *Acceptor) Run(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("hub: listen %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("hub: accept: %w", err)
			}
		}
		go a.handle(conn)
	}
}

func (a *Acceptor) handle(conn net.Conn) {
	if err := protocol.ReadHandshake(conn); err != nil {
		a.log.Warnw("rejecting connection with bad handshake", "remote", conn.RemoteAddr(), "err", err)
		conn.Close()
		return
	}

	id := a.allocateID()
	ip := remoteIP(conn)

	nickname, ok := a.hub.nicks.Get(ip)
	if !ok {
		nickname = fmt.Sprintf("guest%d", id)
	}

	peer := newPeer(id, ip, nickname, conn, a.log)
	a.hub.Connect(peer)
	peer.readLoop(a.hub.emit)
}

// allocateID reuses a freed ID if one is waiting, else mints a fresh one.
func (a *Acceptor) allocateID() uint32 {
	select {
	case id := <-a.hub.FreedIDs():
		return id
	default:
	}
	id := a.nextID
	a.nextID++
	return id
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
