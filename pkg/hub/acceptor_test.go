package hub

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/twetzel59/craftd/pkg/protocol"
)

func TestAcceptorAllocateIDReusesFreedBeforeMinting(t *testing.T) {
	h := newTestHub(t)
	a := NewAcceptor(h, h.log)

	first := a.allocateID()
	second := a.allocateID()
	if first == second {
		t.Fatalf("expected distinct fresh IDs, got %d twice", first)
	}

	h.freed <- first
	reused := a.allocateID()
	if reused != first {
		t.Errorf("allocateID() = %d, want reused %d", reused, first)
	}
}

func TestAcceptorRejectsBadHandshake(t *testing.T) {
	h := newTestHub(t)
	a := NewAcceptor(h, h.log)

	server, client := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		a.handle(server)
		close(done)
	}()

	client.Write([]byte("X,0\n"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handle did not return after rejecting bad handshake")
	}
}

func TestAcceptorAdmitsHandshakenPeerIntoHub(t *testing.T) {
	h := newTestHub(t)
	a := NewAcceptor(h, h.log)

	server, client := net.Pipe()
	defer client.Close()

	go a.handle(server)

	if _, err := client.Write([]byte(protocol.Handshake)); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go h.Run(ctx)

	reader := bufio.NewReader(client)
	client.SetReadDeadline(time.Now().Add(time.Second))
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("expected an assign record, got err: %v", err)
	}
	if line[0] != 'U' {
		t.Errorf("first record = %q, want U", line)
	}
}
