// Package engine glues a Board to the minimax analyzer behind a thread-safe, stateful handle
// suitable for a UI or network collaborator: move history, default analysis options and
// MoveEvent reporting on top of the stateless pkg/search contract.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/polychess/engine/pkg/board"
	"github.com/polychess/engine/pkg/board/xfen"
	"github.com/polychess/engine/pkg/chesserr"
	"github.com/polychess/engine/pkg/piece"
	"github.com/polychess/engine/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 1, 0)

// MoveEvent is emitted to UI collaborators on a successful Move.
type MoveEvent struct {
	PieceType piece.Type
	Move      board.Move
	Captured  bool
	GameOver  bool
	Rating    board.Rating
}

func (e MoveEvent) String() string {
	return fmt.Sprintf("%v %v captured=%v gameOver=%v rating=%v", e.PieceType, e.Move, e.Captured, e.GameOver, e.Rating)
}

// Options are the default analysis options used by Analyze.
type Options struct {
	// Depth is the fixed search depth used by Analyze.
	Depth int
	// Workers fans the first ply of Analyze out across this many goroutines. 0 or 1 runs
	// synchronously.
	Workers int
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, workers=%v}", o.Depth, o.Workers)
}

// Engine wraps a Board with move history and default analysis options, all guarded by a single
// mutex. Board itself is not safe for concurrent mutation; Engine is what makes it safe to share
// across a UI's request handlers.
type Engine struct {
	name, author string
	opts         Options

	mu      sync.Mutex
	b       *board.Board
	history []*board.Board
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets the default analysis options.
func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// New creates an engine reset to the standard 8x8 starting position.
func New(ctx context.Context, name, author string, opts ...Option) (*Engine, error) {
	e := &Engine{name: name, author: author, opts: Options{Depth: 4, Workers: 1}}
	for _, fn := range opts {
		fn(e)
	}

	b, err := board.NewEmptyBoard(8, 8)
	if err != nil {
		return nil, err
	}
	e.b = b
	if err := e.Reset(ctx, lang.Optional[string]{}); err != nil {
		return nil, err
	}

	logw.Infof(ctx, "initialized engine %v, options=%v", e.Name(), e.opts)
	return e, nil
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

// Options returns the current default analysis options.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetDepth updates the default analysis depth.
func (e *Engine) SetDepth(depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Depth = depth
}

// SetWorkers updates the default worker-pool fan-out.
func (e *Engine) SetWorkers(workers int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Workers = workers
}

// Board returns a clone of the current position, safe for the caller to mutate.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.b.Clone()
}

// Position returns the current position encoded as X-FEN.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return xfen.Encode(e.b)
}

// Reset replaces the current position: decoding text if present, or else falling back to the
// standard starting setup for the board's current dimensions. Clears move history.
func (e *Engine) Reset(ctx context.Context, text lang.Optional[string]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := xfen.Reset(e.b, text); err != nil {
		return err
	}
	e.history = nil

	logw.Infof(ctx, "reset: %v", xfen.Encode(e.b))
	return nil
}

// Move applies m to the current position, which must be one of its ActiveMoves, and reports the
// resulting MoveEvent.
func (e *Engine) Move(ctx context.Context, m board.Move) (MoveEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	legal := false
	for _, candidate := range e.b.ActiveMoves() {
		if candidate.Equals(m) {
			legal = true
			break
		}
	}
	if !legal {
		return MoveEvent{}, chesserr.NewInvalidArgument("illegal move %v", m)
	}

	mover, err := e.b.PieceAt(m[0])
	if err != nil {
		return MoveEvent{}, err
	}
	captured := capturedByMove(e.b, m)

	before := e.b.Clone()
	if err := e.b.PerformMove(m); err != nil {
		return MoveEvent{}, err
	}
	e.history = append(e.history, before)

	result := e.b.GameResult()
	event := MoveEvent{
		PieceType: mover.Type,
		Move:      m,
		Captured:  captured,
		GameOver:  result != board.Undecided,
		Rating:    e.b.Rating(),
	}
	logw.Infof(ctx, "move %v, result=%v", event, result)
	return event, nil
}

// capturedByMove reports whether m captures a piece, checked against b before m is applied:
// either an ordinary landing on an occupied square, or a pawn landing on the en passant target.
func capturedByMove(b *board.Board, m board.Move) bool {
	if m.IsCastling() {
		return false
	}
	sink := m[1]
	if fw, _ := b.PieceAt(sink); fw != nil {
		return true
	}
	fw, _ := b.PieceAt(m[0])
	return fw != nil && fw.Type == piece.Pawn && sink == b.EnPassantTarget()
}

// TakeBack undoes the latest Move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) == 0 {
		return chesserr.NewInvalidState("no move to take back")
	}
	prev := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]

	if err := e.b.ReplaceWith(prev); err != nil {
		return err
	}
	logw.Infof(ctx, "takeback: %v", xfen.Encode(e.b))
	return nil
}

// Analyze runs the configured analyzer against a clone of the current position.
func (e *Engine) Analyze(ctx context.Context) (search.MovePrediction, error) {
	e.mu.Lock()
	b := e.b.Clone()
	depth, workers := e.opts.Depth, e.opts.Workers
	e.mu.Unlock()

	logw.Infof(ctx, "analyze %v, depth=%v, workers=%v", xfen.Encode(b), depth, workers)
	return search.PredictMoves(ctx, b, depth, search.WithWorkers(workers))
}
