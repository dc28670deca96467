// Package piece contains the closed catalogue of chess piece types: their character aliases,
// base ratings and relative motion vectors. It has no notion of a board or a square beyond the
// relative (drank,dfile) deltas a piece can move along.
package piece

import "github.com/polychess/engine/pkg/chesserr"

// Type is one of the nine piece kinds this engine understands. 4 bits.
type Type uint8

const (
	Pawn Type = iota
	Knight
	Bishop
	Rook
	Queen
	King
	Archbishop // knight + bishop
	Chancellor // knight + rook
	Empress    // knight + queen

	NumTypes
)

// Vector is a relative (rank,file) displacement a piece can move along.
type Vector struct {
	DRank, DFile int
}

var baseRating = [NumTypes]int32{
	Pawn:       100,
	King:       10000,
	Knight:     320,
	Bishop:     330,
	Rook:       510,
	Queen:      880,
	Archbishop: 750,
	Chancellor: 800,
	Empress:    1000,
}

var alias = [NumTypes]byte{
	Pawn:       'P',
	Knight:     'N',
	Bishop:     'B',
	Rook:       'R',
	Queen:      'Q',
	King:       'K',
	Archbishop: 'A',
	Chancellor: 'C',
	Empress:    'E',
}

var aliasToType map[byte]Type

func init() {
	aliasToType = make(map[byte]Type, NumTypes)
	for t := Pawn; t < NumTypes; t++ {
		aliasToType[alias[t]] = t
	}
}

// ValueOf maps a canonical upper-case alias (P,N,B,R,Q,K,A,C,E) to its Type.
func ValueOf(alias byte) (Type, error) {
	t, ok := aliasToType[alias]
	if !ok {
		return 0, chesserr.NewInvalidArgument("unknown piece alias: %q", alias)
	}
	return t, nil
}

// IsValid returns true iff the type is one of the nine known kinds.
func (t Type) IsValid() bool {
	return t < NumTypes
}

// Alias returns the upper-case character alias for the type.
func (t Type) Alias() byte {
	return alias[t]
}

// BaseRating returns the nominal material value of the type, in centipawns.
func (t Type) BaseRating() int32 {
	return baseRating[t]
}

func (t Type) String() string {
	return string(rune(t.Alias()))
}

var (
	kingSingles = []Vector{
		{1, -1}, {1, 0}, {1, 1},
		{0, -1}, {0, 1},
		{-1, -1}, {-1, 0}, {-1, 1},
	}
	knightSingles = []Vector{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	bishopRays = []Vector{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookRays   = []Vector{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenRays  = append(append([]Vector{}, bishopRays...), rookRays...)
)

// pawnSingles returns the pawn's relative single-step vectors from white's perspective; Singles
// reorients them for black.
var pawnSingles = []Vector{{1, -1}, {1, 0}, {1, 1}}

// Singles returns a defensive copy of the type's single-step motion vectors. Only the pawn's
// vectors depend on color: white moves toward increasing rank, black toward decreasing rank.
func (t Type) Singles(white bool) []Vector {
	switch t {
	case Pawn:
		return orient(pawnSingles, white)
	case King:
		return copyVectors(kingSingles)
	case Knight, Archbishop, Chancellor, Empress:
		return copyVectors(knightSingles)
	default:
		return nil
	}
}

// Rays returns a defensive copy of the type's continuous ray motion vectors. No ray piece in
// this catalogue is color-dependent.
func (t Type) Rays(white bool) []Vector {
	switch t {
	case Bishop, Archbishop:
		return copyVectors(bishopRays)
	case Rook, Chancellor:
		return copyVectors(rookRays)
	case Queen, Empress:
		return copyVectors(queenRays)
	default:
		return nil
	}
}

func copyVectors(vs []Vector) []Vector {
	out := make([]Vector, len(vs))
	copy(out, vs)
	return out
}

func orient(vs []Vector, white bool) []Vector {
	out := make([]Vector, len(vs))
	for i, v := range vs {
		if white {
			out[i] = v
		} else {
			out[i] = Vector{DRank: -v.DRank, DFile: v.DFile}
		}
	}
	return out
}
