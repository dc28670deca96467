package board

import "github.com/polychess/engine/pkg/geometry"

// Result classifies the outcome of a position, if any. 2 bits.
type Result uint8

const (
	Undecided Result = iota
	WhiteWins
	BlackWins
	Draw
)

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	case Draw:
		return "draw"
	default:
		return "undecided"
	}
}

// GameResult classifies b's current position: Undecided if the active side still has a move that
// does not leave its own king attacked, otherwise checkmate (the winner is whoever is not to move)
// or stalemate (Draw).
func (b *Board) GameResult() Result {
	active := b.ActiveColor()
	for _, m := range b.ActiveMoves() {
		next := b.Clone()
		if err := next.PerformMove(m); err != nil {
			continue
		}
		if own := next.KingSquare(active); own.IsValid() && !next.IsPositionThreatened(own, active.Opponent()) {
			return Undecided
		}
	}

	king := b.KingSquare(active)
	if !king.IsValid() || b.IsPositionThreatened(king, active.Opponent()) {
		if active == geometry.White {
			return BlackWins
		}
		return WhiteWins
	}
	return Draw
}
