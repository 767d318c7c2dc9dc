package protocol

import "strconv"

// Outbound formatting renders numeric fields in their shortest canonical
// textual form ('g'-style for floats, base-10 for ints) and always
// terminates the record with a trailing newline.

// FormatAssign renders the U record: this peer's ID and spawn transform.
func FormatAssign(id uint32, x, y, z, rx, ry float32) string {
	return "U," + u32(id) + "," + f32(x) + "," + f32(y) + "," + f32(z) + "," + f32(rx) + "," + f32(ry) + "\n"
}

// FormatTime renders the E record: current server time and day length.
func FormatTime(t float32, dayLength int) string {
	return "E," + f32(t) + "," + strconv.Itoa(dayLength) + "\n"
}

// FormatPosition renders the P record as sent server->client, which always
// includes the subject's ID.
func FormatPosition(id uint32, x, y, z, rx, ry float32) string {
	return "P," + u32(id) + "," + f32(x) + "," + f32(y) + "," + f32(z) + "," + f32(rx) + "," + f32(ry) + "\n"
}

// FormatNick renders the N record: a peer's ID and nickname.
func FormatNick(id uint32, name string) string {
	return "N," + u32(id) + "," + name + "\n"
}

// FormatTalk renders the T record: chat or a notice.
func FormatTalk(text string) string {
	return "T," + text + "\n"
}

// FormatBlock renders the B record as sent server->client, with the
// authoritative chunk (p, q) prepended.
func FormatBlock(p, q, x, y, z int32, w int8) string {
	return "B," + i32(p) + "," + i32(q) + "," + i32(x) + "," + i32(y) + "," + i32(z) + "," + strconv.Itoa(int(w)) + "\n"
}

// FormatSign renders the S record as sent server->client, with (p, q)
// prepended.
func FormatSign(p, q, x, y, z int32, face uint8, text string) string {
	return "S," + i32(p) + "," + i32(q) + "," + i32(x) + "," + i32(y) + "," + i32(z) + "," + strconv.Itoa(int(face)) + "," + text + "\n"
}

// FormatLight renders the L record as sent server->client, with (p, q)
// prepended.
func FormatLight(p, q, x, y, z int32, w int8) string {
	return "L," + i32(p) + "," + i32(q) + "," + i32(x) + "," + i32(y) + "," + i32(z) + "," + strconv.Itoa(int(w)) + "\n"
}

// FormatRedraw renders the R record: a chunk the client should redraw.
func FormatRedraw(p, q int32) string {
	return "R," + i32(p) + "," + i32(q) + "\n"
}

// FormatDisconnect renders the D record: a peer has left.
func FormatDisconnect(id uint32) string {
	return "D," + u32(id) + "\n"
}

func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
func i32(v int32) string  { return strconv.FormatInt(int64(v), 10) }
func f32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
