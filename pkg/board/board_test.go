package board_test

import (
	"testing"

	"github.com/polychess/engine/pkg/board"
	"github.com/polychess/engine/pkg/board/xfen"
	"github.com/polychess/engine/pkg/geometry"
	"github.com/polychess/engine/pkg/piece"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, text string) *board.Board {
	t.Helper()
	b, err := xfen.Decode(text)
	require.NoError(t, err)
	return b
}

func TestStartPositionHasTwentyMoves(t *testing.T) {
	b := decode(t, board.DefaultSetups[8])
	assert.Len(t, b.ActiveMoves(), 20)
}

func TestCloneIsIndependentlyMutable(t *testing.T) {
	b := decode(t, board.DefaultSetups[8])
	clone := b.Clone()

	moves := clone.ActiveMoves()
	require.NotEmpty(t, moves)
	require.NoError(t, clone.PerformMove(moves[0]))

	assert.Equal(t, board.DefaultSetups[8], xfen.Encode(b))
	assert.NotEqual(t, xfen.Encode(b), xfen.Encode(clone))
}

func TestPositionsAnyReturnsAtMostOneAndAgreesWithFull(t *testing.T) {
	b := decode(t, board.DefaultSetups[8])
	white := geometry.White
	pawn := piece.Pawn

	first := b.Positions(true, &white, &pawn)
	require.Len(t, first, 1)

	full := b.Positions(false, &white, &pawn)
	assert.Len(t, full, 8)
	assert.Contains(t, full, first[0])
}

// TestIsPositionThreatenedAgreesWithBruteForce checks the invariant directly: construct the
// board with the attacking color active, so ActiveMoves() IS the brute-force scan called for by
// "exists an active-side move landing on sq" without needing a separate swap-sides operation.
func TestIsPositionThreatenedAgreesWithBruteForce(t *testing.T) {
	placements := []board.Placement{
		{Square: geometry.NewSquare(0, 0, 8), Color: geometry.White, Type: piece.Rook},
		{Square: geometry.NewSquare(0, 7, 8), Color: geometry.White, Type: piece.King},
		{Square: geometry.NewSquare(7, 7, 8), Color: geometry.Black, Type: piece.King},
	}
	b, err := board.NewBoard(8, 8, placements, 0, 0, 0, geometry.NoSquare)
	require.NoError(t, err)

	target := geometry.NewSquare(7, 0, 8) // a8, on the rook's file

	assert.True(t, b.IsPositionThreatened(target, geometry.White))

	found := false
	for _, m := range b.ActiveMoves() {
		if len(m) >= 2 && m[len(m)-1] == target {
			found = true
			break
		}
	}
	assert.True(t, found, "brute-force scan should find a white move landing on the threatened square")
}

func TestRatingIsWinSentinelWhenKingMissing(t *testing.T) {
	b, err := board.NewEmptyBoard(8, 8)
	require.NoError(t, err)
	assert.Equal(t, -board.Win, b.Rating())
}

func TestEnPassantCaptureRemovesPassedPawn(t *testing.T) {
	b := decode(t, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")

	var epMove board.Move
	found := false
	for _, m := range b.ActiveMoves() {
		if len(m) == 2 {
			sink := m[1]
			if sink.Rank(8) == 5 && sink.File(8) == 3 {
				epMove = m
				found = true
				break
			}
		}
	}
	require.True(t, found, "expected an active move onto d6")

	require.NoError(t, b.PerformMove(epMove))

	capturedSq := geometry.NewSquare(4, 3, 8) // d5
	fw, err := b.PieceAt(capturedSq)
	require.NoError(t, err)
	assert.Nil(t, fw)
}

func TestCastlingBlockedByThreatenedTransitSquare(t *testing.T) {
	base := []board.Placement{
		{Square: geometry.NewSquare(0, 0, 8), Color: geometry.White, Type: piece.Rook},
		{Square: geometry.NewSquare(0, 4, 8), Color: geometry.White, Type: piece.King},
		{Square: geometry.NewSquare(0, 7, 8), Color: geometry.White, Type: piece.Rook},
		{Square: geometry.NewSquare(7, 4, 8), Color: geometry.Black, Type: piece.King},
	}

	open, err := board.NewBoard(8, 8, base, 0, 0, board.WhiteLeft|board.WhiteRight, geometry.NoSquare)
	require.NoError(t, err)

	kingSide, queenSide := false, false
	for _, m := range open.ActiveMoves() {
		if len(m) == 3 {
			if m[2] > m[0] {
				kingSide = true
			} else {
				queenSide = true
			}
		}
	}
	assert.True(t, kingSide, "white king-side castle should be legal with nothing guarding f1/g1")
	assert.True(t, queenSide, "white queen-side castle should be legal with nothing guarding c1/d1")

	withRook := append(append([]board.Placement{}, base...), board.Placement{
		Square: geometry.NewSquare(7, 5, 8), Color: geometry.Black, Type: piece.Rook,
	})
	blocked, err := board.NewBoard(8, 8, withRook, 0, 0, board.WhiteLeft|board.WhiteRight, geometry.NoSquare)
	require.NoError(t, err)

	kingSideBlocked, queenSideBlocked := false, false
	for _, m := range blocked.ActiveMoves() {
		if len(m) == 3 {
			if m[2] > m[0] {
				kingSideBlocked = true
			} else {
				queenSideBlocked = true
			}
		}
	}
	assert.False(t, kingSideBlocked, "black rook on f8 covers f1, so king-side castle is illegal")
	assert.True(t, queenSideBlocked, "queen-side castle is unaffected by the f-file rook")
}

func TestPromotionOnArrival(t *testing.T) {
	b := decode(t, "8/P7/8/8/8/8/8/4k2K w - - 0 1")

	a7 := geometry.NewSquare(6, 0, 8)
	a8 := geometry.NewSquare(7, 0, 8)
	require.NoError(t, b.PerformMove(board.Move{a7, a8}))

	fw, err := b.PieceAt(a8)
	require.NoError(t, err)
	require.NotNil(t, fw)
	assert.Equal(t, piece.Queen, fw.Type)
	assert.Equal(t, geometry.White, fw.Color)
}

func TestFiftyMoveRuleCutoffProducesNoMoves(t *testing.T) {
	placements := []board.Placement{
		{Square: geometry.NewSquare(0, 4, 8), Color: geometry.White, Type: piece.King},
		{Square: geometry.NewSquare(7, 4, 8), Color: geometry.Black, Type: piece.King},
		{Square: geometry.NewSquare(3, 3, 8), Color: geometry.White, Type: piece.Queen},
	}
	b, err := board.NewBoard(8, 8, placements, 0, 101, 0, geometry.NoSquare)
	require.NoError(t, err)
	assert.Empty(t, b.ActiveMoves())
}

func TestGameResultUndecidedAtStartPosition(t *testing.T) {
	b := decode(t, board.DefaultSetups[8])
	assert.Equal(t, board.Undecided, b.GameResult())
}

func TestGameResultStalemateIsDraw(t *testing.T) {
	b := decode(t, "8/8/8/8/8/1q6/2k5/K7 w - - 0 1")
	assert.Equal(t, board.Draw, b.GameResult())
}

func TestGameResultCheckmateFavorsTheMover(t *testing.T) {
	b := decode(t, "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4")
	assert.Equal(t, board.WhiteWins, b.GameResult())
}
