// Package scoring maps a team's placement and kill count to points.
package scoring

// MinPlacement and MaxPlacement bound the valid placement range. Out-of-range
// placements are clamped, never rejected, so a single bad extracted field does
// not drop a whole team record.
const (
	MinPlacement = 1
	MaxPlacement = 25
)

// Score holds the points awarded for one placement + kill line.
type Score struct {
	PlacementPoints int
	KillPoints      int
	TotalPoints     int
	Win             int
}

// Compute scores a single team result. Placement is clamped into
// [MinPlacement, MaxPlacement] before lookup, kills are clamped to >= 0,
// and TotalPoints is always the sum of the two point fields.
func Compute(placement, kills int) Score {
	p := ClampPlacement(placement)
	if kills < 0 {
		kills = 0
	}

	s := Score{
		PlacementPoints: placementPoints(p),
		KillPoints:      kills,
	}
	if p == 1 {
		s.Win = 1
	}
	s.TotalPoints = s.PlacementPoints + s.KillPoints
	return s
}

// ClampPlacement forces a placement into the valid range. Anything out of
// range is treated as last place.
func ClampPlacement(p int) int {
	if p < MinPlacement || p > MaxPlacement {
		return MaxPlacement
	}
	return p
}

// placementPoints is the fixed placement table: 10/6/5/4/3/2 for 1st-6th,
// 1 for 7th-8th, 0 for 9th-25th.
func placementPoints(p int) int {
	switch p {
	case 1:
		return 10
	case 2:
		return 6
	case 3:
		return 5
	case 4:
		return 4
	case 5:
		return 3
	case 6:
		return 2
	case 7, 8:
		return 1
	default:
		return 0
	}
}
