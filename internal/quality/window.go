package quality

import (
	"github.com/pkg/errors"
)

// Thresholds decides whether a base is of high quality: the base itself must
// exceed Primary and every base within Window positions on either side must
// exceed Secondary.
type Thresholds struct {
	Primary   int `toml:"primary" json:"primary"`
	Secondary int `toml:"secondary" json:"secondary"`
	Window    int `toml:"window" json:"window"`
}

// DefaultThresholds returns primary 20, secondary 15, window 5.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Primary:   20,
		Secondary: 15,
		Window:    5,
	}
}

// Validate checks that the thresholds are usable.
func (t Thresholds) Validate() error {
	if t.Primary < PhredMin || t.Secondary < PhredMin {
		return errors.Errorf("quality thresholds must be non-negative")
	}
	if t.Window < 0 {
		return errors.Errorf("quality window must be non-negative")
	}
	return nil
}

// Lead returns the qualities of up to window bases before pos.
func Lead(qual []int, pos, window int) []int {
	if pos > len(qual) {
		pos = len(qual)
	}
	start := pos - window
	if start < 0 {
		start = 0
	}
	if start >= pos {
		return []int{}
	}
	return qual[start:pos]
}

// Trail returns the qualities of up to window bases after pos.
func Trail(qual []int, pos, window int) []int {
	start := pos + 1
	end := pos + window + 1
	if end > len(qual) {
		end = len(qual)
	}
	if start >= end {
		return []int{}
	}
	return qual[start:end]
}

// Pass reports whether the base at pos of qual passes the thresholds.
func (t Thresholds) Pass(qual []int, pos int) bool {
	if pos < 0 || pos >= len(qual) {
		return false
	}
	return t.PassWindows(qual[pos], Lead(qual, pos, t.Window), Trail(qual, pos, t.Window))
}

// PassWindows is Pass for a base whose neighbourhood was already extracted.
// Empty windows pass.
func (t Thresholds) PassWindows(q int, lead, trail []int) bool {
	if q <= t.Primary {
		return false
	}
	for _, v := range lead {
		if v <= t.Secondary {
			return false
		}
	}
	for _, v := range trail {
		if v <= t.Secondary {
			return false
		}
	}
	return true
}
