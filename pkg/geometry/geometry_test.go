package geometry_test

import (
	"sync"
	"testing"

	"github.com/polychess/engine/pkg/geometry"
	"github.com/polychess/engine/pkg/piece"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var standard = geometry.Dimensions{Ranks: 8, Files: 8}

func TestGetIsPointerStable(t *testing.T) {
	sq := geometry.NewSquare(1, 4, 8)

	a, err := geometry.Get(standard, geometry.White, piece.Pawn, sq)
	require.NoError(t, err)
	b, err := geometry.Get(standard, geometry.White, piece.Pawn, sq)
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestGetIsConcurrencySafe(t *testing.T) {
	sq := geometry.NewSquare(3, 3, 8)

	var wg sync.WaitGroup
	results := make([]*geometry.PositionalPiece, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := geometry.Get(standard, geometry.Black, piece.Queen, sq)
			require.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestGetRejectsInvalidDimensions(t *testing.T) {
	_, err := geometry.Get(geometry.Dimensions{Ranks: 2, Files: 8}, geometry.White, piece.King, 0)
	assert.Error(t, err)
}

func TestGetRejectsOutOfRangeSquare(t *testing.T) {
	_, err := geometry.Get(standard, geometry.White, piece.King, geometry.Square(1000))
	assert.Error(t, err)
}

func TestPawnDoubleStepOnlyFromHomeRank(t *testing.T) {
	home, err := geometry.Get(standard, geometry.White, piece.Pawn, geometry.NewSquare(1, 0, 8))
	require.NoError(t, err)
	assert.Len(t, home.SinkPositions, 3) // single push, double push, one capture (edge file)

	mid, err := geometry.Get(standard, geometry.White, piece.Pawn, geometry.NewSquare(4, 0, 8))
	require.NoError(t, err)
	for _, ray := range mid.SinkPositions {
		assert.LessOrEqual(t, len(ray), 1)
	}
}

func TestKingCastlingRaysOnlyFromHomeSquare(t *testing.T) {
	home, err := geometry.Get(standard, geometry.White, piece.King, geometry.NewSquare(0, 4, 8))
	require.NoError(t, err)

	var castling int
	for _, ray := range home.SinkPositions {
		for _, m := range ray {
			if m.Tag() == geometry.Castling {
				castling++
			}
		}
	}
	assert.Equal(t, 2, castling)

	off, err := geometry.Get(standard, geometry.White, piece.King, geometry.NewSquare(3, 4, 8))
	require.NoError(t, err)
	for _, ray := range off.SinkPositions {
		for _, m := range ray {
			assert.NotEqual(t, geometry.Castling, m.Tag())
		}
	}
}

func TestRookRaysReachBoardEdge(t *testing.T) {
	corner, err := geometry.Get(standard, geometry.White, piece.Rook, geometry.NewSquare(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, 14, corner.SinkBitboard.PopCount())
}

func TestBishopOnVariantBoard(t *testing.T) {
	dims := geometry.Dimensions{Ranks: 10, Files: 10}
	corner, err := geometry.Get(dims, geometry.White, piece.Bishop, geometry.NewSquare(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 9, corner.SinkBitboard.PopCount())
}

func TestArchbishopRatingExceedsBishop(t *testing.T) {
	sq := geometry.NewSquare(3, 3, 8)
	bishop, err := geometry.Get(standard, geometry.White, piece.Bishop, sq)
	require.NoError(t, err)
	arch, err := geometry.Get(standard, geometry.White, piece.Archbishop, sq)
	require.NoError(t, err)
	assert.Greater(t, arch.Rating, bishop.Rating)
}

func TestBlackRatingIsNegatedWhiteRating(t *testing.T) {
	sq := geometry.NewSquare(4, 4, 8)
	white, err := geometry.Get(standard, geometry.White, piece.Queen, sq)
	require.NoError(t, err)
	black, err := geometry.Get(standard, geometry.Black, piece.Queen, sq)
	require.NoError(t, err)
	assert.Equal(t, -white.Rating, black.Rating)
}

func TestOrdinalOrdersByColorThenTypeThenSquare(t *testing.T) {
	a, err := geometry.Get(standard, geometry.White, piece.Pawn, 0)
	require.NoError(t, err)
	b, err := geometry.Get(standard, geometry.White, piece.Knight, 0)
	require.NoError(t, err)
	c, err := geometry.Get(standard, geometry.Black, piece.Pawn, 0)
	require.NoError(t, err)

	assert.Less(t, a.Ordinal(), b.Ordinal())
	assert.Less(t, b.Ordinal(), c.Ordinal())
}
