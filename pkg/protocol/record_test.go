package protocol

import "testing"

func TestParsePosition(t *testing.T) {
	got, err := Parse("P,1.5,2,-3.25,90,180")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pos, ok := got.(Position)
	if !ok {
		t.Fatalf("got %T, want Position", got)
	}
	want := Position{X: 1.5, Y: 2, Z: -3.25, RX: 90, RY: 180}
	if pos != want {
		t.Errorf("Parse(P) = %+v, want %+v", pos, want)
	}
}

func TestParsePositionWrongFieldCount(t *testing.T) {
	if _, err := Parse("P,1,2,3"); err == nil {
		t.Error("expected error for short position record")
	}
}

func TestParseBlock(t *testing.T) {
	got, err := Parse("B,31,10,5,3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, ok := got.(Block)
	if !ok {
		t.Fatalf("got %T, want Block", got)
	}
	want := Block{X: 31, Y: 10, Z: 5, W: 3}
	if b != want {
		t.Errorf("Parse(B) = %+v, want %+v", b, want)
	}
}

func TestParseBlockNegativeKind(t *testing.T) {
	got, err := Parse("B,0,10,6,-3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b := got.(Block)
	if b.W != -3 {
		t.Errorf("W = %d, want -3", b.W)
	}
}

func TestParseChunkRequest(t *testing.T) {
	got, err := Parse("C,0,0,0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := ChunkRequest{P: 0, Q: 0, Key: 0}
	if got.(ChunkRequest) != want {
		t.Errorf("Parse(C) = %+v, want %+v", got, want)
	}
}

func TestParseSign(t *testing.T) {
	got, err := Parse("S,4,8,4,0,hi there")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Sign{X: 4, Y: 8, Z: 4, Face: 0, Text: "hi there"}
	if got.(Sign) != want {
		t.Errorf("Parse(S) = %+v, want %+v", got, want)
	}
}

func TestParseSignEmptyTextMeansDelete(t *testing.T) {
	got, err := Parse("S,4,8,4,0,")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := got.(Sign)
	if s.Text != "" {
		t.Errorf("Text = %q, want empty", s.Text)
	}
}

func TestParseSignTextWithCommas(t *testing.T) {
	got, err := Parse("S,4,8,4,0,a,b,c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := got.(Sign)
	if s.Text != "a,b,c" {
		t.Errorf("Text = %q, want %q", s.Text, "a,b,c")
	}
}

func TestParseLight(t *testing.T) {
	got, err := Parse("L,1,2,3,15")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Light{X: 1, Y: 2, Z: 3, W: 15}
	if got.(Light) != want {
		t.Errorf("Parse(L) = %+v, want %+v", got, want)
	}
}

func TestParseLightNegativeW(t *testing.T) {
	got, err := Parse("L,1,2,3,-5")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Light{X: 1, Y: 2, Z: 3, W: -5}
	if got.(Light) != want {
		t.Errorf("Parse(L) = %+v, want %+v", got, want)
	}
}

func TestParseTalk(t *testing.T) {
	got, err := Parse("T,hello world")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.(Talk).Text != "hello world" {
		t.Errorf("Text = %q, want %q", got.(Talk).Text, "hello world")
	}
}

func TestParseUnknownTag(t *testing.T) {
	if _, err := Parse("Z,1,2,3"); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestParseEmptyLine(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Error("expected error for empty line")
	}
}

// Formatting and re-parsing equivalent fields reproduces the same values.
func TestRoundTripPosition(t *testing.T) {
	line := FormatPosition(7, 1.5, 2, -3.25, 90, 180)
	// Strip the leading "P,<id>," and trailing '\n' to reuse the client-side
	// (no-ID) Position parser, since FormatPosition is the server->client
	// shape while Parse(P,...) models the client->server shape.
	got, err := Parse("P," + line[len("P,7,"):len(line)-1])
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Position{X: 1.5, Y: 2, Z: -3.25, RX: 90, RY: 180}
	if got.(Position) != want {
		t.Errorf("round trip mismatch: line=%q got=%+v want=%+v", line, got, want)
	}
}

func TestRoundTripBlock(t *testing.T) {
	line := FormatBlock(1, 0, 31, 10, 5, -3)
	if line != "B,1,0,31,10,5,-3\n" {
		t.Errorf("FormatBlock = %q", line)
	}
	// Strip the server-side "(p, q)" prefix and trailing '\n' to reparse with
	// the client->server Block shape.
	got, err := Parse("B," + line[len("B,1,0,"):len(line)-1])
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Block{X: 31, Y: 10, Z: 5, W: -3}
	if got.(Block) != want {
		t.Errorf("round trip mismatch: line=%q got=%+v want=%+v", line, got, want)
	}
}

func TestFormatRedraw(t *testing.T) {
	if got := FormatRedraw(1, 0); got != "R,1,0\n" {
		t.Errorf("FormatRedraw = %q", got)
	}
}

func TestFormatDisconnect(t *testing.T) {
	if got := FormatDisconnect(5); got != "D,5\n" {
		t.Errorf("FormatDisconnect = %q", got)
	}
}

func TestFormatSign(t *testing.T) {
	got := FormatSign(0, 0, 4, 8, 4, 0, "hi")
	if got != "S,0,0,4,8,4,0,hi\n" {
		t.Errorf("FormatSign = %q", got)
	}
}
