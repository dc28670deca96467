// Package board implements the chess board state machine: piece placement, move generation,
// move execution and static evaluation, for boards of 3..127 ranks and files.
package board

import (
	"fmt"

	"github.com/polychess/engine/pkg/chesserr"
	"github.com/polychess/engine/pkg/geometry"
	"github.com/polychess/engine/pkg/piece"
)

// Board is the mutable state of a game in progress: piece placement, whose move it is, castling
// and en passant rights, and the clocks needed to enforce the 50-move rule. Not thread-safe; a
// concurrent reader must operate on a Clone.
type Board struct {
	dims geometry.Dimensions

	pieces []*geometry.PositionalPiece // len == dims.Squares(); nil entry == empty square

	moveClock       int
	reversibleClock int
	castling        Castling
	enPassant       geometry.Square

	whiteKingSq geometry.Square
	blackKingSq geometry.Square
}

// NewEmptyBoard allocates an empty board of the given shape. Fails if either dimension is out of
// the supported [3,127] range.
func NewEmptyBoard(ranks, files int) (*Board, error) {
	dims := geometry.Dimensions{Ranks: ranks, Files: files}
	if !dims.IsValid() {
		return nil, chesserr.NewInvalidArgument("invalid board dimensions: %dx%d", ranks, files)
	}

	return &Board{
		dims:        dims,
		pieces:      make([]*geometry.PositionalPiece, dims.Squares()),
		enPassant:   geometry.NoSquare,
		whiteKingSq: geometry.NoSquare,
		blackKingSq: geometry.NoSquare,
	}, nil
}

// Placement is a single piece to place on a board under construction.
type Placement struct {
	Square geometry.Square
	Color  geometry.Color
	Type   piece.Type
}

// NewBoard constructs a board from an explicit placement list plus game-state fields, runs the
// §3 validity check, and fails with InvalidArgument on any violation.
func NewBoard(ranks, files int, placements []Placement, moveClock, reversibleClock int, castling Castling, enPassant geometry.Square) (*Board, error) {
	b, err := NewEmptyBoard(ranks, files)
	if err != nil {
		return nil, err
	}

	for _, pl := range placements {
		if !b.dims.Contains(pl.Square) {
			return nil, chesserr.NewInvalidArgument("placement square %v out of range for %dx%d", pl.Square, ranks, files)
		}
		if b.pieces[pl.Square] != nil {
			return nil, chesserr.NewInvalidArgument("duplicate placement at %v", pl.Square)
		}
		fw, err := geometry.Get(b.dims, pl.Color, pl.Type, pl.Square)
		if err != nil {
			return nil, chesserr.NewInvalidArgument("cannot place %v: %v", pl, err)
		}
		b.pieces[pl.Square] = fw
		if pl.Type == piece.King {
			b.setKingSquare(pl.Color, pl.Square)
		}
	}

	b.moveClock = moveClock
	b.reversibleClock = reversibleClock
	b.castling = castling
	b.enPassant = enPassant

	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (p Placement) String() string {
	return fmt.Sprintf("%v%v@%v", p.Color, p.Type, p.Square)
}

// Clone produces a deep-independent copy: the piece array is copied, but the flyweight pointers
// it holds are shared with the original (flyweights are immutable and process-global).
func (b *Board) Clone() *Board {
	pieces := make([]*geometry.PositionalPiece, len(b.pieces))
	copy(pieces, b.pieces)

	return &Board{
		dims:            b.dims,
		pieces:          pieces,
		moveClock:       b.moveClock,
		reversibleClock: b.reversibleClock,
		castling:        b.castling,
		enPassant:       b.enPassant,
		whiteKingSq:     b.whiteKingSq,
		blackKingSq:     b.blackKingSq,
	}
}

// Dimensions returns the board's rank and file count.
func (b *Board) Dimensions() geometry.Dimensions {
	return b.dims
}

// ActiveColor returns the side to move: white iff the move clock is even.
func (b *Board) ActiveColor() geometry.Color {
	if b.moveClock%2 == 0 {
		return geometry.White
	}
	return geometry.Black
}

// MoveClock returns the number of half-moves played since the start of the game.
func (b *Board) MoveClock() int {
	return b.moveClock
}

// ReversibleClock returns the number of half-moves since the last pawn move or capture.
func (b *Board) ReversibleClock() int {
	return b.reversibleClock
}

// CastlingRights returns the current castling rights.
func (b *Board) CastlingRights() Castling {
	return b.castling
}

// EnPassantTarget returns the square a pawn just skipped over, or NoSquare.
func (b *Board) EnPassantTarget() geometry.Square {
	return b.enPassant
}

// KingSquare returns the cached king square for the given color, or NoSquare if absent.
func (b *Board) KingSquare(c geometry.Color) geometry.Square {
	if c == geometry.White {
		return b.whiteKingSq
	}
	return b.blackKingSq
}

func (b *Board) setKingSquare(c geometry.Color, sq geometry.Square) {
	if c == geometry.White {
		b.whiteKingSq = sq
	} else {
		b.blackKingSq = sq
	}
}

// PieceAt returns the flyweight occupying sq, or nil if empty. Fails with InvalidArgument if sq
// is out of range for this board's dimensions.
func (b *Board) PieceAt(sq geometry.Square) (*geometry.PositionalPiece, error) {
	if !b.dims.Contains(sq) {
		return nil, chesserr.NewInvalidArgument("square %v out of range for %+v", sq, b.dims)
	}
	return b.pieces[sq], nil
}

// Positions returns every square matching the given filters, or just the first if any is true.
// A nil colorFilter/typeFilter matches any color/type. With typeFilter == King, the cached king
// squares are consulted directly rather than scanning the piece array.
func (b *Board) Positions(any bool, colorFilter *geometry.Color, typeFilter *piece.Type) []geometry.Square {
	if typeFilter != nil && *typeFilter == piece.King {
		var out []geometry.Square
		for _, c := range []geometry.Color{geometry.White, geometry.Black} {
			if colorFilter != nil && *colorFilter != c {
				continue
			}
			if sq := b.KingSquare(c); sq.IsValid() {
				out = append(out, sq)
				if any {
					return out
				}
			}
		}
		return out
	}

	var out []geometry.Square
	for sq, fw := range b.pieces {
		if fw == nil {
			continue
		}
		if colorFilter != nil && fw.Color != *colorFilter {
			continue
		}
		if typeFilter != nil && fw.Type != *typeFilter {
			continue
		}
		out = append(out, geometry.Square(sq))
		if any {
			return out
		}
	}
	return out
}

// Rating returns the static evaluation of the position: ±Win if a king is missing, otherwise the
// signed sum of every flyweight's positional rating.
func (b *Board) Rating() Rating {
	if b.whiteKingSq == geometry.NoSquare {
		return -Win
	}
	if b.blackKingSq == geometry.NoSquare {
		return Win
	}

	var sum int32
	for _, fw := range b.pieces {
		if fw != nil {
			sum += fw.Rating
		}
	}
	return Rating(sum)
}

func (b *Board) validate() error {
	topRank := b.dims.Ranks - 1
	for sq, fw := range b.pieces {
		if fw == nil || fw.Type != piece.Pawn {
			continue
		}
		rank := geometry.Square(sq).Rank(b.dims.Files)
		if fw.Color == geometry.White && rank == topRank {
			return chesserr.NewInvalidArgument("white pawn on top rank at %v", sq)
		}
		if fw.Color == geometry.Black && rank == 0 {
			return chesserr.NewInvalidArgument("black pawn on bottom rank at %v", sq)
		}
	}

	if b.whiteKingSq == geometry.NoSquare || b.blackKingSq == geometry.NoSquare {
		return chesserr.NewInvalidArgument("both kings must be present")
	}

	if err := b.validateCastling(geometry.White, WhiteLeft, WhiteRight, 0); err != nil {
		return err
	}
	if err := b.validateCastling(geometry.Black, BlackLeft, BlackRight, topRank); err != nil {
		return err
	}

	if err := b.validateEnPassant(); err != nil {
		return err
	}

	active := b.ActiveColor()
	passive := active.Opponent()
	if b.IsPositionThreatened(b.KingSquare(passive), active) {
		return chesserr.NewInvalidArgument("passive king at %v is left in check", b.KingSquare(passive))
	}
	return nil
}

func (b *Board) validateCastling(c geometry.Color, left, right Castling, homeRank int) error {
	if !b.castling.IsAllowed(left) && !b.castling.IsAllowed(right) {
		return nil
	}

	kingSq := b.KingSquare(c)
	if kingSq.Rank(b.dims.Files) != homeRank || kingSq.File(b.dims.Files) != b.dims.Files/2 {
		return chesserr.NewInvalidArgument("castling rights set but %v king not on home square", c)
	}

	if b.castling.IsAllowed(left) {
		if err := b.requireRookAt(geometry.NewSquare(homeRank, 0, b.dims.Files), c); err != nil {
			return err
		}
	}
	if b.castling.IsAllowed(right) {
		if err := b.requireRookAt(geometry.NewSquare(homeRank, b.dims.Files-1, b.dims.Files), c); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) requireRookAt(sq geometry.Square, c geometry.Color) error {
	fw := b.pieces[sq]
	if fw == nil || fw.Type != piece.Rook || fw.Color != c {
		return chesserr.NewInvalidArgument("castling rights set but no %v rook at %v", c, sq)
	}
	return nil
}

func (b *Board) validateEnPassant() error {
	if b.enPassant == geometry.NoSquare {
		return nil
	}
	if !b.dims.Contains(b.enPassant) {
		return chesserr.NewInvalidArgument("en passant target %v out of range", b.enPassant)
	}
	if b.pieces[b.enPassant] != nil {
		return chesserr.NewInvalidArgument("en passant target %v is occupied", b.enPassant)
	}

	passive := b.ActiveColor().Opponent()
	rank := b.enPassant.Rank(b.dims.Files)
	file := b.enPassant.File(b.dims.Files)

	behind := rank + 1
	if passive == geometry.Black {
		behind = rank - 1
	}
	if behind < 0 || behind >= b.dims.Ranks {
		return chesserr.NewInvalidArgument("en passant target %v has no passing pawn", b.enPassant)
	}

	sq := geometry.NewSquare(behind, file, b.dims.Files)
	fw := b.pieces[sq]
	if fw == nil || fw.Type != piece.Pawn || fw.Color != passive {
		return chesserr.NewInvalidArgument("en passant target %v has no passing pawn", b.enPassant)
	}
	return nil
}

// ReplaceWith atomically overwrites all of b's state with other's. Used by pkg/board/xfen to
// implement Reset without an import cycle (xfen depends on board, not the reverse). Fails with
// InvalidState if the dimensions differ.
func (b *Board) ReplaceWith(other *Board) error {
	if other.dims != b.dims {
		return chesserr.NewInvalidState("replacement board is %+v, want %+v", other.dims, b.dims)
	}
	*b = *other
	return nil
}

// DefaultSetups holds the standard 8-rank start positions for 3..10 files, keyed by file count.
var DefaultSetups = map[int]string{
	3:  "rkr/ppp/3/3/3/3/PPP/RKR w KQkq - 0 1",
	4:  "rekr/pppp/4/4/4/4/PPPP/REKR w KQkq - 0 1",
	5:  "rckcr/ppppp/5/5/5/5/PPPPP/RCKCR w KQkq - 0 1",
	6:  "raqkar/pppppp/6/6/6/6/PPPPPP/RAQKAR w KQkq - 0 1",
	7:  "rnqkanr/ppppppp/7/7/7/7/PPPPPPP/RNQKANR w KQkq - 0 1",
	8:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	9:  "rnbqkbncr/ppppppppp/9/9/9/9/PPPPPPPPP/RNBQKBNCR w KQkq - 0 1",
	10: "rnabqkbanr/pppppppppp/10/10/10/10/PPPPPPPPPP/RNABQKBANR w KQkq - 0 1",
}

// DefaultSetup returns the standard starting X-FEN text for an 8-rank board with this file count,
// if one exists.
func DefaultSetup(dims geometry.Dimensions) (string, bool) {
	if dims.Ranks != 8 {
		return "", false
	}
	s, ok := DefaultSetups[dims.Files]
	return s, ok
}

func (b *Board) String() string {
	return fmt.Sprintf("board{dims=%+v, active=%v, moveClock=%v, reversibleClock=%v, castling=%v, ep=%v}",
		b.dims, b.ActiveColor(), b.moveClock, b.reversibleClock, b.castling, b.enPassant)
}
