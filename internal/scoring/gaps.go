package scoring

import (
	"fmt"

	"github.com/pkg/errors"
)

// GapScores holds affine gap costs for internal gaps and for gaps touching
// the left or right end of an alignment. All costs are non-negative and are
// subtracted from the alignment score: a gap of length n costs
// Open + Extend*(n-1).
type GapScores struct {
	Open        int `toml:"open" json:"open"`
	Extend      int `toml:"extend" json:"extend"`
	LeftOpen    int `toml:"left-open" json:"left_open"`
	LeftExtend  int `toml:"left-extend" json:"left_extend"`
	RightOpen   int `toml:"right-open" json:"right_open"`
	RightExtend int `toml:"right-extend" json:"right_extend"`
}

// NewGapScores returns costs that treat end gaps like internal gaps.
func NewGapScores(open, extend int) GapScores {
	return GapScores{
		Open:        open,
		Extend:      extend,
		LeftOpen:    open,
		LeftExtend:  extend,
		RightOpen:   open,
		RightExtend: extend,
	}
}

// NewEndGapScores returns costs with separate end-gap costs on both ends.
func NewEndGapScores(open, extend, endOpen, endExtend int) GapScores {
	return GapScores{
		Open:        open,
		Extend:      extend,
		LeftOpen:    endOpen,
		LeftExtend:  endExtend,
		RightOpen:   endOpen,
		RightExtend: endExtend,
	}
}

// MaxGapCost bounds every gap cost.
const MaxGapCost = 1 << 20

// Validate checks that every cost is in [0, MaxGapCost].
func (g GapScores) Validate() error {
	costs := [...]int{g.Open, g.Extend, g.LeftOpen, g.LeftExtend, g.RightOpen, g.RightExtend}
	for _, c := range costs {
		if c < 0 {
			return errors.Errorf("gap costs must be non-negative: %s", g)
		}
		if c > MaxGapCost {
			return errors.Errorf("gap costs must not exceed %d: %s", MaxGapCost, g)
		}
	}
	return nil
}

// Cost returns the cost of a gap of size n with the given open/extend pair.
func Cost(open, extend, n int) int {
	if n <= 0 {
		return 0
	}
	return open + extend*(n-1)
}

// ID returns the stable encoding of the six costs.
func (g GapScores) ID() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d",
		g.Open, g.Extend, g.LeftOpen, g.LeftExtend, g.RightOpen, g.RightExtend)
}

func (g GapScores) String() string {
	return fmt.Sprintf("GapScores { internal: %d/%d, left: %d/%d, right: %d/%d }",
		g.Open, g.Extend, g.LeftOpen, g.LeftExtend, g.RightOpen, g.RightExtend)
}
