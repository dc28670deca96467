// Package xfen encodes and decodes the full board state as an extended FEN string, generalized
// from the standard 8x8 six-section format to boards of 3..127 ranks and files and the extended
// nine-piece catalogue.
package xfen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/polychess/engine/pkg/board"
	"github.com/polychess/engine/pkg/chesserr"
	"github.com/polychess/engine/pkg/geometry"
	"github.com/polychess/engine/pkg/piece"
	"github.com/seekerror/stdlib/pkg/lang"
)

const fileAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Decode parses a six-section X-FEN string -- "pieces active castling enpassant revclock
// moveindex" -- into a fresh Board.
func Decode(text string) (*board.Board, error) {
	parts := strings.Fields(text)
	if len(parts) != 6 {
		return nil, chesserr.NewInvalidArgument("x-fen must have 6 sections, got %d: %q", len(parts), text)
	}

	ranks, files, placements, err := decodePieces(parts[0])
	if err != nil {
		return nil, err
	}
	white, err := decodeActive(parts[1])
	if err != nil {
		return nil, err
	}
	castling, err := decodeCastling(parts[2])
	if err != nil {
		return nil, err
	}
	ep, err := decodeEnPassant(parts[3], files)
	if err != nil {
		return nil, err
	}
	revClock, err := decodeReversibleClock(parts[4])
	if err != nil {
		return nil, err
	}
	moveClock, err := decodeMoveIndex(parts[5], white)
	if err != nil {
		return nil, err
	}

	return board.NewBoard(ranks, files, placements, moveClock, revClock, castling, ep)
}

// Encode renders the board's full state as a six-section X-FEN string.
func Encode(b *board.Board) string {
	dims := b.Dimensions()

	return fmt.Sprintf("%s %s %s %s %d %d",
		encodePieces(b),
		encodeActive(b.ActiveColor()),
		b.CastlingRights().String(),
		encodeEnPassant(b.EnPassantTarget(), dims.Files),
		b.ReversibleClock(),
		encodeMoveIndex(b.MoveClock()),
	)
}

// rowPlacement is a piece sighted while scanning a single row, recorded by (rank, file) since the
// board's overall file count is not known until the first row has been fully scanned.
type rowPlacement struct {
	rank, file int
	color      geometry.Color
	t          piece.Type
}

// decodePieces parses the piece-placement section. Rows are top-rank-first in the text, so row i
// of the text maps to rank ranks-1-i.
func decodePieces(section string) (ranks, files int, placements []board.Placement, err error) {
	rows := strings.Split(section, "/")
	ranks = len(rows)

	var sighted []rowPlacement

	for i, row := range rows {
		rank := ranks - 1 - i
		file := 0
		digits := ""

		flush := func() error {
			if digits == "" {
				return nil
			}
			n, convErr := strconv.Atoi(digits)
			if convErr != nil || n < 1 {
				return chesserr.NewInvalidArgument("invalid empty-run count %q in x-fen row %q", digits, row)
			}
			file += n
			digits = ""
			return nil
		}

		for _, r := range row {
			switch {
			case unicode.IsDigit(r):
				digits += string(r)
			case unicode.IsLetter(r):
				if ferr := flush(); ferr != nil {
					return 0, 0, nil, ferr
				}
				color, t, perr := parsePieceLetter(r)
				if perr != nil {
					return 0, 0, nil, perr
				}
				sighted = append(sighted, rowPlacement{rank: rank, file: file, color: color, t: t})
				file++
			default:
				return 0, 0, nil, chesserr.NewInvalidArgument("invalid character %q in x-fen row %q", r, row)
			}
		}
		if err := flush(); err != nil {
			return 0, 0, nil, err
		}

		if i == 0 {
			files = file
		} else if file != files {
			return 0, 0, nil, chesserr.NewInvalidArgument("x-fen row %q has %d files, want %d", row, file, files)
		}
	}

	dims := geometry.Dimensions{Ranks: ranks, Files: files}
	if !dims.IsValid() {
		return 0, 0, nil, chesserr.NewInvalidArgument("x-fen describes invalid dimensions %dx%d", ranks, files)
	}

	placements = make([]board.Placement, len(sighted))
	for idx, p := range sighted {
		placements[idx] = board.Placement{
			Square: geometry.NewSquare(p.rank, p.file, files),
			Color:  p.color,
			Type:   p.t,
		}
	}

	return ranks, files, placements, nil
}

func parsePieceLetter(r rune) (geometry.Color, piece.Type, error) {
	upper := unicode.ToUpper(r)
	t, err := piece.ValueOf(byte(upper))
	if err != nil {
		return 0, 0, chesserr.NewInvalidArgument("unknown piece letter %q", r)
	}
	if unicode.IsUpper(r) {
		return geometry.White, t, nil
	}
	return geometry.Black, t, nil
}

func decodeActive(section string) (bool, error) {
	switch strings.ToLower(section) {
	case "w":
		return true, nil
	case "b":
		return false, nil
	default:
		return false, chesserr.NewInvalidArgument("invalid active color %q", section)
	}
}

func encodeActive(c geometry.Color) string {
	if c == geometry.White {
		return "w"
	}
	return "b"
}

func decodeCastling(section string) (board.Castling, error) {
	var c board.Castling
	if section == "-" {
		return c, nil
	}
	for _, r := range section {
		switch r {
		case 'K':
			c |= board.WhiteRight
		case 'Q':
			c |= board.WhiteLeft
		case 'k':
			c |= board.BlackRight
		case 'q':
			c |= board.BlackLeft
		default:
			return 0, chesserr.NewInvalidArgument("invalid castling character %q in %q", r, section)
		}
	}
	return c, nil
}

func decodeEnPassant(section string, files int) (geometry.Square, error) {
	if section == "-" {
		return geometry.NoSquare, nil
	}
	if len(section) < 2 {
		return geometry.NoSquare, chesserr.NewInvalidArgument("invalid en passant square %q", section)
	}

	idx := strings.IndexByte(fileAlphabet, byte(unicode.ToLower(rune(section[0]))))
	file := idx - 10
	if idx < 10 {
		return geometry.NoSquare, chesserr.NewInvalidArgument("invalid en passant file %q", section)
	}
	rank, err := strconv.Atoi(section[1:])
	if err != nil || rank < 1 {
		return geometry.NoSquare, chesserr.NewInvalidArgument("invalid en passant rank %q", section)
	}

	return geometry.NewSquare(rank-1, file, files), nil
}

func encodeEnPassant(sq geometry.Square, files int) string {
	if sq == geometry.NoSquare {
		return "-"
	}
	file := sq.File(files)
	if file+10 >= len(fileAlphabet) {
		return "-"
	}
	return fmt.Sprintf("%c%d", fileAlphabet[file+10], sq.Rank(files)+1)
}

func decodeReversibleClock(section string) (int, error) {
	n, err := strconv.Atoi(section)
	if err != nil || n < 0 || n > 127 {
		return 0, chesserr.NewInvalidArgument("invalid reversible clock %q", section)
	}
	return n, nil
}

func decodeMoveIndex(section string, white bool) (int, error) {
	n, err := strconv.Atoi(section)
	if err != nil || n < 1 {
		return 0, chesserr.NewInvalidArgument("invalid move index %q", section)
	}
	moveClock := 2 * (n - 1)
	if !white {
		moveClock++
	}
	if moveClock > 32767 {
		moveClock = 32767
	}
	return moveClock, nil
}

func encodeMoveIndex(moveClock int) int {
	return moveClock/2 + 1
}

func encodePieces(b *board.Board) string {
	dims := b.Dimensions()
	var sb strings.Builder

	for i := 0; i < dims.Ranks; i++ {
		rank := dims.Ranks - 1 - i
		blanks := 0
		for file := 0; file < dims.Files; file++ {
			fw, _ := b.PieceAt(geometry.NewSquare(rank, file, dims.Files))
			if fw == nil {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(pieceLetter(fw.Color, fw.Type))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if i < dims.Ranks-1 {
			sb.WriteRune('/')
		}
	}
	return sb.String()
}

func pieceLetter(c geometry.Color, t piece.Type) rune {
	r := rune(t.Alias())
	if c == geometry.Black {
		r = unicode.ToLower(r)
	}
	return r
}

// Reset overwrites b's entire state in place: decoding text if present, or else falling back to
// the standard starting setup for b's current dimensions. Fails with InvalidState if text is
// absent and no default setup exists for the board's shape.
func Reset(b *board.Board, text lang.Optional[string]) error {
	var decoded *board.Board
	var err error

	if v, ok := text.V(); ok {
		decoded, err = Decode(v)
		if err != nil {
			return err
		}
	} else {
		setup, ok := board.DefaultSetup(b.Dimensions())
		if !ok {
			return chesserr.NewInvalidState("no default setup for dimensions %+v", b.Dimensions())
		}
		decoded, err = Decode(setup)
		if err != nil {
			return err
		}
	}

	return b.ReplaceWith(decoded)
}
