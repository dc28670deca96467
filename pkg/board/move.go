package board

import (
	"fmt"
	"strings"

	"github.com/polychess/engine/pkg/geometry"
)

// Move is an ordered list of squares visited by a single half-move: [source, sink] for an
// ordinary move, or [king source, rook source, king sink] for castling. PerformMove dispatches
// on len(m).
type Move []geometry.Square

// IsCastling reports whether the move is the 3-square castling form.
func (m Move) IsCastling() bool {
	return len(m) == 3
}

func (m Move) Equals(o Move) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

func (m Move) String() string {
	parts := make([]string, len(m))
	for i, sq := range m {
		parts[i] = sq.String()
	}
	return fmt.Sprintf("[%v]", strings.Join(parts, ","))
}
