package search_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/polychess/engine/pkg/board"
	"github.com/polychess/engine/pkg/board/xfen"
	"github.com/polychess/engine/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictMovesRejectsNonPositiveDepth(t *testing.T) {
	b, err := xfen.Decode(board.DefaultSetups[8])
	require.NoError(t, err)

	_, err = search.PredictMoves(context.Background(), b, 0)
	assert.Error(t, err)
}

func TestPredictMovesStartPositionFindsAMove(t *testing.T) {
	b, err := xfen.Decode(board.DefaultSetups[8])
	require.NoError(t, err)

	pred, err := search.PredictMoves(context.Background(), b, 1, search.WithRand(rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	require.Len(t, pred.Moves, 1)
	require.NotNil(t, pred.Moves[0])
	assert.NotEqual(t, board.Win, pred.Rating)
	assert.NotEqual(t, -board.Win, pred.Rating)
}

// TestPredictMovesScholarsMate is scenario 2: black to move after 4.Qxf7#, predict_moves(_, 1)
// must report +WIN (white's win, ratings being from white's perspective) with a null-filled move
// list, since every candidate leaves the black king attacked next ply.
func TestPredictMovesScholarsMate(t *testing.T) {
	b, err := xfen.Decode("r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4")
	require.NoError(t, err)

	pred, err := search.PredictMoves(context.Background(), b, 1)
	require.NoError(t, err)

	assert.Equal(t, board.Win, pred.Rating)
	require.Len(t, pred.Moves, 1)
	assert.Nil(t, pred.Moves[0])
}

// TestPredictMovesOutrightKingCaptureIsWin builds the one position that can legitimately exhibit
// the outright-king-capture branch: ActiveMoves never filters out a move that leaves the mover's
// own king exposed, and PerformMove never re-validates, so pinning the white rook in front of a
// black rook, then actually playing the unpinning move, produces a board where it is black's turn
// and black's only candidates capture the white king directly.
func TestPredictMovesOutrightKingCaptureIsWin(t *testing.T) {
	pinned, err := xfen.Decode("k3r3/8/8/8/8/8/4R3/4K3 w - - 0 1")
	require.NoError(t, err)

	var unpin board.Move
	found := false
	for _, m := range pinned.ActiveMoves() {
		if len(m) == 2 && m[1].File(8) == 3 && m[1].Rank(8) == 1 { // Rd2
			unpin = m
			found = true
			break
		}
	}
	require.True(t, found, "expected a pseudo-legal rook move off the e-file")
	require.NoError(t, pinned.PerformMove(unpin))

	pred, err := search.PredictMoves(context.Background(), pinned, 1)
	require.NoError(t, err)

	assert.Equal(t, -board.Win, pred.Rating)
	require.Len(t, pred.Moves, 1)
	require.NotNil(t, pred.Moves[0])
}

func TestPredictMovesStalemateIsDraw(t *testing.T) {
	// White king a1 alone, black king and queen control every escape/capture square without
	// themselves being adjacent or giving check.
	b, err := xfen.Decode("8/8/8/8/8/1q6/2k5/K7 w - - 0 1")
	require.NoError(t, err)

	pred, err := search.PredictMoves(context.Background(), b, 1)
	require.NoError(t, err)

	assert.Equal(t, board.Draw, pred.Rating)
	require.Len(t, pred.Moves, 1)
	assert.Nil(t, pred.Moves[0])
}

func TestPredictMovesWorkerFanOutMatchesSynchronous(t *testing.T) {
	b, err := xfen.Decode(board.DefaultSetups[8])
	require.NoError(t, err)

	seed := rand.NewSource(42)
	serial, err := search.PredictMoves(context.Background(), b, 2, search.WithRand(rand.New(seed)))
	require.NoError(t, err)

	seed2 := rand.NewSource(42)
	parallel, err := search.PredictMoves(context.Background(), b, 2, search.WithWorkers(4), search.WithRand(rand.New(seed2)))
	require.NoError(t, err)

	assert.Equal(t, serial.Rating, parallel.Rating)
	assert.Equal(t, len(serial.Moves), len(parallel.Moves))
}
