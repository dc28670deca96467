package board

import "strings"

// Castling represents the set of castling rights. 4 bits.
type Castling uint8

const (
	WhiteLeft Castling = 1 << iota
	WhiteRight
	BlackLeft
	BlackRight
)

const (
	FullCastlingRights = WhiteLeft | WhiteRight | BlackLeft | BlackRight
)

// castlingLetters pairs each right with its X-FEN letter, in the conventional K/Q/k/q order.
var castlingLetters = [...]struct {
	right  Castling
	letter byte
}{
	{WhiteRight, 'K'},
	{WhiteLeft, 'Q'},
	{BlackRight, 'k'},
	{BlackLeft, 'q'},
}

// IsAllowed reports whether every right in the mask is still held.
func (c Castling) IsAllowed(right Castling) bool {
	return c&right == right
}

func (c Castling) String() string {
	var sb strings.Builder
	for _, entry := range castlingLetters {
		if c.IsAllowed(entry.right) {
			sb.WriteByte(entry.letter)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
