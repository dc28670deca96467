package geometry

import (
	"github.com/polychess/engine/pkg/piece"
)

// PositionalPiece is an immutable flyweight uniquely identified by its (dimensions, color, type,
// square). It caches the absolute move geometry of that piece on that board shape: every reachable
// ray of masked target squares, the union sink bitboard and a position-adjusted material rating.
type PositionalPiece struct {
	Dims   Dimensions
	Color  Color
	Type   piece.Type
	Square Square

	SinkPositions [][]MaskedSquare
	SinkBitboard  Bitboard
	Rating        int32
}

// Ordinal orders flyweights by (color, type, square); used for deterministic move enumeration
// order and as a stable sort/compare key. Equality between flyweights is by identity, not
// ordinal -- two distinct boards never share a flyweight pointer by accident since the cache
// de-dupes by (dims,color,type,square).
func (p *PositionalPiece) Ordinal() int32 {
	c := int32(0)
	if p.Color == Black {
		c = 1
	}
	return (c << 18) | (int32(p.Type) << 14) | int32(p.Square)
}

func build(dims Dimensions, color Color, t piece.Type, sq Square) *PositionalPiece {
	white := color == White
	rank := sq.Rank(dims.Files)
	file := sq.File(dims.Files)

	var rays [][]MaskedSquare
	switch t {
	case piece.Pawn:
		rays = buildPawnRays(dims, white, rank, file)
	case piece.King:
		rays = buildKingRays(dims, white, rank, file)
	default:
		rays = buildStandardRays(dims, t, white, rank, file)
	}

	bb := NewBitboard(dims.Squares())
	for _, ray := range rays {
		for _, m := range ray {
			bb.Set(m.Square())
		}
	}

	p := &PositionalPiece{
		Dims:          dims,
		Color:         color,
		Type:          t,
		Square:        sq,
		SinkPositions: rays,
		SinkBitboard:  bb,
	}
	p.Rating = rate(dims, white, t, rank, file, bb)
	return p
}

func inBounds(dims Dimensions, rank, file int) bool {
	return rank >= 0 && rank < dims.Ranks && file >= 0 && file < dims.Files
}

func buildPawnRays(dims Dimensions, white bool, rank, file int) [][]MaskedSquare {
	var rays [][]MaskedSquare

	for _, v := range piece.Pawn.Singles(white) {
		r2, f2 := rank+v.DRank, file+v.DFile
		if !inBounds(dims, r2, f2) {
			continue
		}
		sink := NewSquare(r2, f2, dims.Files)

		if v.DFile == 0 {
			rays = append(rays, []MaskedSquare{NewMaskedSquare(sink, CaptureForbidden)})

			mirror := rank
			if !white {
				mirror = dims.Ranks - 1 - rank
			}
			if dims.Ranks >= 4 && mirror <= 1 {
				doubleSq := Square(2*int(sink) - int(NewSquare(rank, file, dims.Files)))
				rays = append(rays, []MaskedSquare{
					NewMaskedSquare(sink, CaptureForbidden),
					NewMaskedSquare(doubleSq, CaptureForbidden),
				})
			}
		} else {
			rays = append(rays, []MaskedSquare{NewMaskedSquare(sink, CaptureRequired)})
		}
	}
	return rays
}

func buildKingRays(dims Dimensions, white bool, rank, file int) [][]MaskedSquare {
	var rays [][]MaskedSquare

	homeRank := 0
	if !white {
		homeRank = dims.Ranks - 1
	}
	if rank == homeRank && file == dims.Files/2 {
		offset := (dims.Files-1)/2 - 1
		for _, d := range []int{offset, -offset} {
			f2 := file + d
			if inBounds(dims, rank, f2) {
				sink := NewSquare(rank, f2, dims.Files)
				rays = append(rays, []MaskedSquare{NewMaskedSquare(sink, Castling)})
			}
		}
	}

	for _, v := range piece.King.Singles(white) {
		r2, f2 := rank+v.DRank, file+v.DFile
		if inBounds(dims, r2, f2) {
			sink := NewSquare(r2, f2, dims.Files)
			rays = append(rays, []MaskedSquare{NewMaskedSquare(sink, Normal)})
		}
	}
	return rays
}

func buildStandardRays(dims Dimensions, t piece.Type, white bool, rank, file int) [][]MaskedSquare {
	var rays [][]MaskedSquare

	for _, v := range t.Singles(white) {
		r2, f2 := rank+v.DRank, file+v.DFile
		if inBounds(dims, r2, f2) {
			sink := NewSquare(r2, f2, dims.Files)
			rays = append(rays, []MaskedSquare{NewMaskedSquare(sink, Normal)})
		}
	}

	for _, v := range t.Rays(white) {
		length := rayLength(dims, rank, file, v.DRank, v.DFile)
		if length < 1 {
			continue
		}
		ray := make([]MaskedSquare, 0, length)
		for i := 1; i <= length; i++ {
			r2, f2 := rank+v.DRank*i, file+v.DFile*i
			ray = append(ray, NewMaskedSquare(NewSquare(r2, f2, dims.Files), Normal))
		}
		rays = append(rays, ray)
	}
	return rays
}

func rayLength(dims Dimensions, rank, file, dr, df int) int {
	const sentinel = 1 << 30

	distRank := sentinel
	switch {
	case dr < 0:
		distRank = rank
	case dr > 0:
		distRank = dims.Ranks - 1 - rank
	}

	distFile := sentinel
	switch {
	case df < 0:
		distFile = file
	case df > 0:
		distFile = dims.Files - 1 - file
	}

	if distRank < distFile {
		return distRank
	}
	return distFile
}

func rate(dims Dimensions, white bool, t piece.Type, rank, file int, bb Bitboard) int32 {
	base := t.BaseRating()
	switch t {
	case piece.Knight, piece.Bishop:
		base = 300
	case piece.Archbishop, piece.Chancellor:
		base = 700
	}

	rating := base
	switch t {
	case piece.Pawn:
		mirror := rank
		if !white {
			mirror = dims.Ranks - 1 - rank
		}
		advancement := mirror - 1
		centralization := min(file, dims.Files-1-file)

		denom := dims.Ranks + dims.Files/2 - 4
		if denom > 0 {
			numer := denom + advancement + centralization
			rating = rating * int32(numer) / int32(denom)
		}
	case piece.Knight, piece.Bishop, piece.Archbishop, piece.Chancellor:
		denom := dims.Ranks + dims.Files - 2
		if denom > 0 {
			rating += int32(50*bb.PopCount()) / int32(denom)
		}
	case piece.King:
		homeRank := 0
		if !white {
			homeRank = dims.Ranks - 1
		}
		if rank == homeRank {
			rating += 50
		}
	}

	if !white {
		rating = -rating
	}
	return rating
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
