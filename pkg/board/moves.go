package board

import (
	"github.com/polychess/engine/pkg/geometry"
	"github.com/polychess/engine/pkg/piece"
)

// IsPositionThreatened reports whether a piece of byColor could capture on sq on its next move.
// Implemented by reverse motion: the knight/bishop/rook flyweight rooted AT sq is walked outward,
// and a ray is considered a threat iff the first piece it hits belongs to byColor and is one of
// the types that moves that way.
func (b *Board) IsPositionThreatened(sq geometry.Square, byColor geometry.Color) bool {
	if !b.dims.Contains(sq) {
		return false
	}
	if sq == b.enPassant && b.ActiveColor() == byColor {
		return true
	}

	return b.threatenedByKnightRay(sq, byColor) ||
		b.threatenedByDiagonalRay(sq, byColor) ||
		b.threatenedByStraightRay(sq, byColor)
}

func (b *Board) threatenedByKnightRay(sq geometry.Square, byColor geometry.Color) bool {
	fw, err := geometry.Get(b.dims, byColor, piece.Knight, sq)
	if err != nil {
		return false
	}
	for _, ray := range fw.SinkPositions {
		for _, m := range ray {
			occ := b.pieces[m.Square()]
			if occ != nil && occ.Color == byColor && isKnightMover(occ.Type) {
				return true
			}
		}
	}
	return false
}

func isKnightMover(t piece.Type) bool {
	switch t {
	case piece.Knight, piece.Archbishop, piece.Chancellor, piece.Empress:
		return true
	default:
		return false
	}
}

func (b *Board) threatenedByDiagonalRay(sq geometry.Square, byColor geometry.Color) bool {
	fw, err := geometry.Get(b.dims, byColor, piece.Bishop, sq)
	if err != nil {
		return false
	}
	for _, ray := range fw.SinkPositions {
		for i, m := range ray {
			occ := b.pieces[m.Square()]
			if occ == nil {
				continue
			}
			if occ.Color == byColor {
				switch occ.Type {
				case piece.Bishop, piece.Archbishop, piece.Queen, piece.Empress:
					return true
				case piece.King:
					if i == 0 {
						return true
					}
				case piece.Pawn:
					if i == 0 && pawnThreatensDiagonally(m.Square(), sq, byColor) {
						return true
					}
				}
			}
			break // ray blocked by this piece regardless of color
		}
	}
	return false
}

// pawnThreatensDiagonally reports whether a pawn on attacker, of byColor, threatens sq along its
// forward diagonal: white attacks toward higher squares, black toward lower.
func pawnThreatensDiagonally(attacker, sq geometry.Square, byColor geometry.Color) bool {
	if byColor == geometry.White {
		return attacker < sq
	}
	return attacker > sq
}

func (b *Board) threatenedByStraightRay(sq geometry.Square, byColor geometry.Color) bool {
	fw, err := geometry.Get(b.dims, byColor, piece.Rook, sq)
	if err != nil {
		return false
	}
	for _, ray := range fw.SinkPositions {
		for i, m := range ray {
			occ := b.pieces[m.Square()]
			if occ == nil {
				continue
			}
			if occ.Color == byColor {
				switch occ.Type {
				case piece.Rook, piece.Chancellor, piece.Queen, piece.Empress:
					return true
				case piece.King:
					if i == 0 {
						return true
					}
				}
			}
			break
		}
	}
	return false
}

// ActiveMoves returns every move available to the side to move, in the deterministic order
// implied by the piece array (square-ascending) and each piece's own ray order. Moves that leave
// the mover's own king attacked are not filtered out.
func (b *Board) ActiveMoves() []Move {
	active := b.ActiveColor()
	passive := active.Opponent()

	if b.reversibleClock > 100 && b.hasNonPawn(active) {
		return nil
	}

	var moves []Move
	mustCaptureKing := false

	for sq, fw := range b.pieces {
		if fw == nil || fw.Color != active {
			continue
		}
		source := geometry.Square(sq)

		for _, ray := range fw.SinkPositions {
			for i, m := range ray {
				tag := m.Tag()
				target := m.Square()

				if tag == geometry.Castling {
					if mv, ok := b.castlingMove(active, source, target); ok {
						moves = append(moves, mv)
					}
					continue
				}

				canCapture := tag != geometry.CaptureForbidden
				canOccupy := tag != geometry.CaptureRequired
				occ := b.pieces[target]

				if occ != nil && occ.Color == passive && occ.Type == piece.King {
					if canCapture {
						if !mustCaptureKing {
							moves = nil
							mustCaptureKing = true
						}
						moves = append(moves, Move{source, target})
					}
					break
				}

				if occ != nil {
					if canCapture && occ.Color == passive && !mustCaptureKing {
						moves = append(moves, Move{source, target})
					}
					break
				}

				if mustCaptureKing {
					continue
				}
				if fw.Type == piece.Pawn && len(ray) > 1 && i == 0 {
					// The first square of a pawn's two-step ray is its single push, which the
					// single-step ray already yields; walk on to the second square.
					continue
				}
				if canOccupy {
					moves = append(moves, Move{source, target})
				} else if fw.Type == piece.Pawn && target == b.enPassant {
					moves = append(moves, Move{source, target})
				}
			}
		}
	}

	return moves
}

func (b *Board) hasNonPawn(c geometry.Color) bool {
	for _, fw := range b.pieces {
		if fw != nil && fw.Color == c && fw.Type != piece.Pawn {
			return true
		}
	}
	return false
}

func (b *Board) castlingMove(active geometry.Color, king, target geometry.Square) (Move, bool) {
	files := b.dims.Files
	kingFile := king.File(files)
	targetFile := target.File(files)

	var right Castling
	var rookFile int
	if targetFile < kingFile {
		right = WhiteLeft
		rookFile = 0
	} else {
		right = WhiteRight
		rookFile = files - 1
	}
	if active == geometry.Black {
		if right == WhiteLeft {
			right = BlackLeft
		} else {
			right = BlackRight
		}
	}
	if !b.castling.IsAllowed(right) {
		return nil, false
	}

	rank := king.Rank(files)
	rookSq := geometry.NewSquare(rank, rookFile, files)

	lo, hi := int(king), int(rookSq)
	if lo > hi {
		lo, hi = hi, lo
	}
	for x := lo + 1; x < hi; x++ {
		if b.pieces[x] != nil {
			return nil, false
		}
	}

	dir := 1
	if target < king {
		dir = -1
	}
	passive := active.Opponent()
	for x := int(king) + dir; ; x += dir {
		if b.IsPositionThreatened(geometry.Square(x), passive) {
			return nil, false
		}
		if geometry.Square(x) == target {
			break
		}
	}

	return Move{king, rookSq, target}, true
}
