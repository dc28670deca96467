package geometry

import (
	"sync"

	"github.com/polychess/engine/pkg/chesserr"
	"github.com/polychess/engine/pkg/piece"
)

// dimsGrid holds every flyweight for one board shape, populated exactly once. The grid is built
// eagerly and in full the first time any (color,type,square) combination on that shape is
// requested; every later lookup, by any goroutine, is a lock-free slice index.
type dimsGrid struct {
	once sync.Once
	grid []*PositionalPiece // indexed by ordinal: (color<<18)|(type<<14)|square
}

var cache sync.Map // map[int]*dimsGrid, keyed by Dimensions.key()

// Get returns the flyweight for the given board shape, color, piece type and square, building and
// caching the entire shape's grid on first access. The returned pointer is stable: repeated calls
// with the same arguments, from any goroutine, return the identical *PositionalPiece.
func Get(dims Dimensions, color Color, t piece.Type, sq Square) (*PositionalPiece, error) {
	if !dims.IsValid() {
		return nil, chesserr.NewInvalidArgument("invalid board dimensions: %+v", dims)
	}
	if !t.IsValid() {
		return nil, chesserr.NewInvalidArgument("invalid piece type: %v", t)
	}
	if !dims.Contains(sq) {
		return nil, chesserr.NewInvalidArgument("square %v out of range for %+v", sq, dims)
	}

	v, _ := cache.LoadOrStore(dims.key(), &dimsGrid{})
	dg := v.(*dimsGrid)
	dg.once.Do(func() {
		dg.grid = populate(dims)
	})

	p := &PositionalPiece{Color: color, Type: t, Square: sq}
	return dg.grid[p.Ordinal()], nil
}

func populate(dims Dimensions) []*PositionalPiece {
	last := &PositionalPiece{Color: Black, Type: piece.NumTypes - 1, Square: Square(dims.Squares() - 1)}
	grid := make([]*PositionalPiece, last.Ordinal()+1)

	for c := Color(0); c < NumColors; c++ {
		for t := piece.Type(0); t < piece.NumTypes; t++ {
			for sq := Square(0); int(sq) < dims.Squares(); sq++ {
				p := build(dims, c, t, sq)
				grid[p.Ordinal()] = p
			}
		}
	}
	return grid
}
