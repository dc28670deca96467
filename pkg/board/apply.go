package board

import (
	"github.com/polychess/engine/pkg/chesserr"
	"github.com/polychess/engine/pkg/geometry"
	"github.com/polychess/engine/pkg/piece"
)

// PerformMove applies a move structurally. It does not re-validate legality: the caller (or the
// analyzer) is responsible for only ever applying moves drawn from ActiveMoves.
func (b *Board) PerformMove(m Move) error {
	active := b.ActiveColor()

	switch len(m) {
	case 3:
		return b.performCastling(m, active)
	case 2:
		return b.performOrdinary(m, active)
	default:
		return chesserr.NewInvalidArgument("move has wrong arity: %v", m)
	}
}

func (b *Board) performCastling(m Move, active geometry.Color) error {
	kingSrc, rookSrc, kingSink := m[0], m[1], m[2]

	kingFw := b.pieces[kingSrc]
	if kingFw == nil || kingFw.Type != piece.King || kingFw.Color != active {
		return chesserr.NewInvalidArgument("no active king at %v", kingSrc)
	}
	rookFw := b.pieces[rookSrc]
	if rookFw == nil || rookFw.Type != piece.Rook || rookFw.Color != active {
		return chesserr.NewInvalidArgument("no active rook at %v", rookSrc)
	}

	sign := geometry.Square(1)
	if kingSrc < rookSrc {
		sign = -1
	}
	rookSink := kingSink - sign

	b.pieces[kingSrc] = nil
	b.pieces[rookSrc] = nil

	newKing, err := geometry.Get(b.dims, active, piece.King, kingSink)
	if err != nil {
		return chesserr.NewInternal("castling: %v", err)
	}
	newRook, err := geometry.Get(b.dims, active, piece.Rook, rookSink)
	if err != nil {
		return chesserr.NewInternal("castling: %v", err)
	}
	b.pieces[kingSink] = newKing
	b.pieces[rookSink] = newRook

	b.castling &^= castlingRightsOf(active)
	b.setKingSquare(active, kingSink)

	b.moveClock++
	b.reversibleClock = 0
	b.enPassant = geometry.NoSquare
	return nil
}

func (b *Board) performOrdinary(m Move, active geometry.Color) error {
	passive := active.Opponent()
	source, sink := m[0], m[1]

	srcFw := b.pieces[source]
	if srcFw == nil || srcFw.Color != active {
		return chesserr.NewInvalidArgument("no active piece at %v", source)
	}
	capturedFw := b.pieces[sink]

	resolvedType := srcFw.Type
	resetReversible := false
	newEnPassant := geometry.NoSquare

	switch srcFw.Type {
	case piece.Pawn:
		resetReversible = true
		files := geometry.Square(b.dims.Files)

		switch {
		case capturedFw == nil && sink == b.enPassant:
			capturedSq := sink - files
			if active == geometry.Black {
				capturedSq = sink + files
			}
			b.pieces[capturedSq] = nil
		case absSquareDiff(source, sink) == 2*files:
			mid := (source + sink) / 2
			if b.passivePawnAdjacent(sink, mid, passive) {
				newEnPassant = mid
			}
		}

		if b.isLastRank(sink, active) {
			resolvedType = piece.Queen
		}
	case piece.Rook:
		b.clearCastlingIfRookCorner(source, active)
	case piece.King:
		b.castling &^= castlingRightsOf(active)
	}

	captureOccurred := capturedFw != nil && capturedFw.Color == passive
	if captureOccurred {
		resetReversible = true
		switch capturedFw.Type {
		case piece.King:
			b.castling &^= castlingRightsOf(passive)
			b.setKingSquare(passive, geometry.NoSquare)
		case piece.Rook:
			b.clearCastlingIfRookCorner(sink, passive)
		}
	}

	b.pieces[source] = nil
	newFw, err := geometry.Get(b.dims, active, resolvedType, sink)
	if err != nil {
		return chesserr.NewInternal("performOrdinary: %v", err)
	}
	b.pieces[sink] = newFw

	if resolvedType == piece.King {
		b.setKingSquare(active, sink)
	}

	b.moveClock++
	if resetReversible {
		b.reversibleClock = 0
	} else {
		b.reversibleClock++
	}
	b.enPassant = newEnPassant
	return nil
}

func absSquareDiff(a, b geometry.Square) geometry.Square {
	if a < b {
		return b - a
	}
	return a - b
}

func (b *Board) isLastRank(sq geometry.Square, c geometry.Color) bool {
	rank := sq.Rank(b.dims.Files)
	if c == geometry.White {
		return rank == b.dims.Ranks-1
	}
	return rank == 0
}

// passivePawnAdjacent reports whether a passive pawn stands immediately beside sink (same rank)
// with mid within its own reachable sink bitboard — the condition under which a double pawn step
// actually exposes an en passant capture.
func (b *Board) passivePawnAdjacent(sink, mid geometry.Square, passive geometry.Color) bool {
	files := b.dims.Files
	rank := sink.Rank(files)
	file := sink.File(files)

	for _, df := range [2]int{-1, 1} {
		f2 := file + df
		if f2 < 0 || f2 >= files {
			continue
		}
		adj := b.pieces[geometry.NewSquare(rank, f2, files)]
		if adj != nil && adj.Color == passive && adj.Type == piece.Pawn && adj.SinkBitboard.IsSet(mid) {
			return true
		}
	}
	return false
}

func (b *Board) clearCastlingIfRookCorner(sq geometry.Square, c geometry.Color) {
	homeRank := 0
	if c == geometry.Black {
		homeRank = b.dims.Ranks - 1
	}
	if sq.Rank(b.dims.Files) != homeRank {
		return
	}
	switch sq.File(b.dims.Files) {
	case 0:
		b.castling &^= leftRight(c, true)
	case b.dims.Files - 1:
		b.castling &^= leftRight(c, false)
	}
}

func castlingRightsOf(c geometry.Color) Castling {
	if c == geometry.White {
		return WhiteLeft | WhiteRight
	}
	return BlackLeft | BlackRight
}

func leftRight(c geometry.Color, left bool) Castling {
	if c == geometry.White {
		if left {
			return WhiteLeft
		}
		return WhiteRight
	}
	if left {
		return BlackLeft
	}
	return BlackRight
}
