// predict is a one-shot minimax debugging tool: decode a position, run the analyzer and print
// its rating and principal line. See: pkg/search.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/polychess/engine/pkg/board"
	"github.com/polychess/engine/pkg/board/xfen"
	"github.com/polychess/engine/pkg/search"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard 8x8)")
	workers  = flag.Int("workers", 1, "Worker pool size for the first ply")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	text := *position
	if text == "" {
		text = board.DefaultSetups[8]
	}

	b, err := xfen.Decode(text)
	if err != nil {
		logw.Exitf(ctx, "Invalid x-fen %q: %v", text, err)
	}

	pred, err := search.PredictMoves(ctx, b, *depth, search.WithWorkers(*workers))
	if err != nil {
		logw.Exitf(ctx, "Predict failed: %v", err)
	}

	println(fmt.Sprintf("rating=%v moves=%v", pred.Rating, formatMoves(pred.Moves)))
}

func formatMoves(moves []*board.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		if m == nil {
			parts[i] = "-"
			continue
		}
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
