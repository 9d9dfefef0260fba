package profiler

// TandemRepeat is a run of at least two adjacent copies of Unit. End is
// the last base of the run.
type TandemRepeat struct {
	Unit  string `json:"unit"`
	Count int    `json:"count"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// FindTandemRepeats lists the tandem repeats of s with units of two or
// more bases, scanning the shortest units first. A unit that is itself a
// repeat of a shorter one (homopolymers included) is skipped.
func FindTandemRepeats(s string) []TandemRepeat {
	var repeats []TandemRepeat
	for size := 2; size <= len(s)/2; size++ {
		for pos := 0; pos+2*size <= len(s); {
			unit := s[pos : pos+size]
			if hasShorterPeriod(unit) {
				pos++
				continue
			}
			n := copiesAt(s, pos, unit)
			if n < 2 {
				pos++
				continue
			}
			repeats = append(repeats, TandemRepeat{
				Unit:  unit,
				Count: n,
				Start: pos,
				End:   pos + n*size - 1,
			})
			pos += n * size
		}
	}
	return repeats
}

// TandemRepeatsOf lists the runs of at least two copies of unit in s.
func TandemRepeatsOf(s, unit string) []TandemRepeat {
	if len(unit) < 2 || hasShorterPeriod(unit) {
		return nil
	}
	var repeats []TandemRepeat
	for pos := 0; pos+2*len(unit) <= len(s); {
		n := copiesAt(s, pos, unit)
		if n < 2 {
			pos++
			continue
		}
		repeats = append(repeats, TandemRepeat{
			Unit:  unit,
			Count: n,
			Start: pos,
			End:   pos + n*len(unit) - 1,
		})
		pos += n * len(unit)
	}
	return repeats
}

func copiesAt(s string, pos int, unit string) int {
	n := 0
	for pos+len(unit) <= len(s) && s[pos:pos+len(unit)] == unit {
		n++
		pos += len(unit)
	}
	return n
}

// hasShorterPeriod reports whether unit is a whole repeat of a shorter unit.
func hasShorterPeriod(unit string) bool {
	for p := 1; p < len(unit); p++ {
		if len(unit)%p != 0 {
			continue
		}
		if copiesAt(unit, 0, unit[:p])*p == len(unit) {
			return true
		}
	}
	return false
}

// inTandemRepeat reports whether a gap of three or more bases removes or
// inserts copies inside a tandem repeat of the sequence carrying the bases.
func (w *walker) inTandemRepeat(g *Gap) bool {
	if g.Size < 3 {
		return false
	}
	unit := g.GapedSequence
	if hasShorterPeriod(unit) {
		found := FindTandemRepeats(unit)
		if len(found) == 0 {
			return false
		}
		unit = found[0].Unit
		if len(unit)*found[0].Count != len(g.GapedSequence) {
			return false
		}
	}

	seq, pos := w.ref.Seq, g.RefPos
	if g.Ref {
		seq, pos = w.query.Seq, g.SeqPos
	}
	last := pos + g.Size - 1
	for _, r := range TandemRepeatsOf(seq, unit) {
		if r.Start <= pos && last <= r.End {
			return true
		}
	}
	return false
}
