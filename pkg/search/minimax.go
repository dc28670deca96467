// Package search implements a fixed-depth minimax analyzer over pkg/board. No alpha-beta pruning,
// no transposition table, no quiescence search and no iterative deepening: see DESIGN.md for why
// this analyzer stops at naive minimax.
package search

import (
	"context"
	"math/rand"
	"sync"

	"github.com/polychess/engine/pkg/board"
	"github.com/polychess/engine/pkg/chesserr"
	"github.com/polychess/engine/pkg/geometry"
	"github.com/seekerror/logw"
)

// MovePrediction is the outcome of an analysis: a rating from white's perspective (positive
// favors white) and the line that achieves it. Moves holds at most depth entries: a line that
// captures a king ends with that move, and nil entries pad out the tail once the line reaches a
// position with no surviving candidate (stalemate or checkmate).
type MovePrediction struct {
	Rating board.Rating
	Moves  []*board.Move
}

// Options configures a single PredictMoves call.
type Options struct {
	workers int
	rnd     *syncRand
}

// Option is a PredictMoves creation option.
type Option func(*Options)

// WithWorkers fans the first ply's candidate moves out across n workers, each operating on its
// own board clone. n <= 1 runs synchronously. Recursive continuations below the first ply always
// run single-threaded, regardless of n.
func WithWorkers(n int) Option {
	return func(o *Options) { o.workers = n }
}

// WithRand overrides the random source used to break ties among equally-rated candidates.
// Exposed for deterministic tests; production callers can leave it unset. The worker pool may
// consult it from multiple goroutines, so WithRand always wraps it for safe concurrent use.
func WithRand(rnd *rand.Rand) Option {
	return func(o *Options) { o.rnd = &syncRand{rnd: rnd} }
}

func newOptions(opts []Option) Options {
	o := Options{workers: 1, rnd: &syncRand{rnd: rand.New(rand.NewSource(1))}}
	for _, fn := range opts {
		fn(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

// syncRand guards a *rand.Rand for concurrent use: the worker pool's goroutines, and the
// recursive predict calls within each of them, may draw tie-breaks at the same time.
type syncRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (s *syncRand) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// PredictMoves runs a fixed-depth minimax search from b and returns the rating and principal
// line for the side to move. Fails with InvalidArgument if depth < 1.
func PredictMoves(ctx context.Context, b *board.Board, depth int, opts ...Option) (MovePrediction, error) {
	if depth < 1 {
		return MovePrediction{}, chesserr.NewInvalidArgument("search depth must be >= 1, got %v", depth)
	}
	return predict(ctx, b, depth, newOptions(opts)), nil
}

func predict(ctx context.Context, b *board.Board, depth int, o Options) MovePrediction {
	active := b.ActiveColor()
	candidates := evaluateCandidates(ctx, b, b.ActiveMoves(), depth, o)

	if best := pickBest(active == geometry.White, candidates, o.rnd); best != nil {
		return *best
	}
	return terminalPrediction(b, active, depth)
}

// evaluateCandidates evaluates every candidate move, discarding the illegal ones (a move that
// leaves the mover's own king in check). Fans out across o.workers when greater than 1; every
// worker operates on its own clone of b, never sharing mutable state.
func evaluateCandidates(ctx context.Context, b *board.Board, moves []board.Move, depth int, o Options) []MovePrediction {
	if len(moves) == 0 {
		return nil
	}

	// Captures first: a worker that finishes its job early picks up the next queued index anyway,
	// but ordering the highest-value captures first means a context cancellation or a future
	// early-exit sees the most decisive replies evaluated first.
	board.SortByPriority(moves, capturePriority(b))

	// Fan-out only ever applies at the ply where it was requested; recursive calls below always
	// evaluate their own candidates synchronously.
	sub := o
	sub.workers = 1

	results := make([]*MovePrediction, len(moves))

	if o.workers <= 1 {
		for i, m := range moves {
			results[i] = evaluateOne(ctx, b, m, depth, sub)
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < o.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = evaluateOne(ctx, b, moves[i], depth, sub)
				}
			}()
		}
		for i := range moves {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	var out []MovePrediction
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// capturePriority ranks moves by the nominal value of whatever they capture on b, landing
// ordinary non-captures and castling at the bottom.
func capturePriority(b *board.Board) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		if m.IsCastling() {
			return 0
		}
		if fw, _ := b.PieceAt(m[len(m)-1]); fw != nil {
			return board.MovePriority(fw.Type.BaseRating())
		}
		return 0
	}
}

// evaluateOne predicts the outcome of a single candidate move, or returns nil if the move is
// illegal: it leaves the mover's own king attacked.
func evaluateOne(ctx context.Context, b *board.Board, m board.Move, depth int, o Options) *MovePrediction {
	mover := b.ActiveColor()

	clone := b.Clone()
	if err := clone.PerformMove(m); err != nil {
		logw.Errorf(ctx, "predict: discarding unplayable candidate %v: %v", m, err)
		return nil
	}

	line := m
	if r := clone.Rating(); r == board.Win || r == -board.Win {
		// m captured the opposing king outright.
		return &MovePrediction{Rating: r, Moves: []*board.Move{&line}}
	}

	// A move that leaves the mover's own king attacked is illegal: the opponent's only legal
	// replies would then all capture it, which ActiveMoves' must-capture-king rule would surface
	// one ply down regardless of requested depth. Checking the threat directly here is equivalent
	// and avoids paying for a ply of recursion purely to discover it, so it applies uniformly.
	if clone.IsPositionThreatened(clone.KingSquare(mover), mover.Opponent()) {
		return nil
	}

	if depth == 1 {
		return &MovePrediction{Rating: clone.Rating(), Moves: []*board.Move{&line}}
	}

	rest := predict(ctx, clone, depth-1, o)
	return &MovePrediction{Rating: rest.Rating, Moves: append([]*board.Move{&line}, rest.Moves...)}
}

// terminalPrediction handles the no-surviving-candidate case: the active side is checkmated or
// has no king left (±WIN, favoring whoever is not to move) or is stalemated (DRAW).
func terminalPrediction(b *board.Board, active geometry.Color, depth int) MovePrediction {
	king := b.KingSquare(active)
	inCheckOrMissing := !king.IsValid() || b.IsPositionThreatened(king, active.Opponent())

	rating := board.Draw
	if inCheckOrMissing {
		rating = board.Win
		if active == geometry.White {
			rating = -board.Win
		}
	}

	return MovePrediction{Rating: rating, Moves: make([]*board.Move, depth)}
}

// compare implements the side-aware comparator: right == nil is always worse; ratings differ in
// the side's favored direction; among equal ±WIN ratings, fewer moves wins a forced mate and more
// moves delays a forced loss.
func compare(whiteToMove bool, left, right *MovePrediction) int {
	if right == nil {
		return 1
	}
	if left == nil {
		return -1
	}
	if left.Rating != right.Rating {
		if (left.Rating > right.Rating) == whiteToMove {
			return 1
		}
		return -1
	}
	if left.Rating != board.Win && left.Rating != -board.Win {
		return 0
	}

	win := board.Win
	if !whiteToMove {
		win = -board.Win
	}
	cmp := sign(len(right.Moves) - len(left.Moves))
	if left.Rating == win {
		return cmp
	}
	return -cmp
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// pickBest returns a uniformly random pick among the strictly-best-rated candidates, or nil if
// moves is empty.
func pickBest(whiteToMove bool, moves []MovePrediction, rnd *syncRand) *MovePrediction {
	if len(moves) == 0 {
		return nil
	}

	best := []MovePrediction{moves[0]}
	for _, m := range moves[1:] {
		m := m
		switch c := compare(whiteToMove, &m, &best[0]); {
		case c > 0:
			best = []MovePrediction{m}
		case c == 0:
			best = append(best, m)
		}
	}

	pick := best[rnd.Intn(len(best))]
	return &pick
}
