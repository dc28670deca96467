package board

import "math"

// Rating is a signed position or prediction score in centipawns. Positive favors white. The two
// sentinel values fall outside any reachable material sum and denote decisive/terminal results
// rather than a material count.
type Rating int32

const (
	// Win is returned by Rating when white holds a decisive/mating advantage; -Win for black.
	Win Rating = math.MaxInt32
	// Draw is returned when a position is a forced or adjudicated draw.
	Draw Rating = math.MinInt32
)
