package hub

import (
	"strings"
)

// handleCommand dispatches the payload of a T record after its leading '/'
// has already been stripped.
func (h *Hub) handleCommand(id uint32, issuer *Peer, payload string) {
	verb, rest, _ := strings.Cut(payload, " ")
	switch verb {
	case "say":
		h.commandSay(rest)
	case "nick":
		h.commandNick(issuer, rest)
	case "goto":
		h.commandGoto(issuer, rest)
	default:
		h.log.Warnw("UNKNOWN COMMAND OR INVALID USAGE", "id", id, "payload", payload)
	}
}

// commandSay broadcasts text as a chat line. With a leading "-w" token,
// whitespace-only tokens are preserved; otherwise empty tokens collapse and
// are dropped. Newlines are always stripped. An empty result is invalid
// usage and logged, never fatal.
func (h *Hub) commandSay(rest string) {
	preserveWhitespace := false
	if rest == "-w" || strings.HasPrefix(rest, "-w ") {
		preserveWhitespace = true
		rest = strings.TrimPrefix(strings.TrimPrefix(rest, "-w"), " ")
	}

	fields := strings.Split(rest, " ")
	var kept []string
	for _, f := range fields {
		f = strings.ReplaceAll(f, "\n", "")
		f = strings.ReplaceAll(f, "\r", "")
		if f == "" && !preserveWhitespace {
			continue
		}
		kept = append(kept, f)
	}
	text := strings.Join(kept, " ")
	if text == "" {
		h.log.Warnw("UNKNOWN COMMAND OR INVALID USAGE", "verb", "say")
		return
	}
	h.broadcastAll(func(p *Peer) { p.SendTalk(text) })
}

// commandNick validates and applies a nickname change.
func (h *Hub) commandNick(issuer *Peer, rest string) {
	fields := strings.Fields(rest)
	if len(fields) != 1 {
		h.log.Warnw("UNKNOWN COMMAND OR INVALID USAGE", "verb", "nick")
		return
	}
	newNick := strings.TrimFunc(fields[0], func(r rune) bool {
		return r < ' ' || r == ' '
	})
	if newNick == "" {
		h.log.Warnw("UNKNOWN COMMAND OR INVALID USAGE", "verb", "nick")
		return
	}

	oldNick := issuer.Nick()
	if newNick == oldNick {
		return
	}

	if err := h.nicks.Set(issuer.IP, newNick); err != nil {
		h.log.Warnw("failed to persist nickname change", "ip", issuer.IP, "err", err)
		return
	}
	issuer.SetNick(newNick)

	notice := oldNick + " is now known as: " + newNick
	h.broadcastAll(func(p *Peer) { p.SendTalk(notice) })
}

// commandGoto teleports the issuer to the cached transform of the named
// peer.
func (h *Hub) commandGoto(issuer *Peer, rest string) {
	target := strings.TrimSpace(rest)
	if target == "" {
		h.log.Warnw("UNKNOWN COMMAND OR INVALID USAGE", "verb", "goto")
		return
	}

	for _, p := range h.roster {
		if p.Nick() == target {
			t := p.Transform()
			issuer.SetTransform(t)
			issuer.SendPosition(issuer.ID, t)
			return
		}
	}
	issuer.SendTalk(target + " not found")
}
