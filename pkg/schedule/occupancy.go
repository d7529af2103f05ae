package schedule

import "slices"

// interval is a half-open booked window [start, end).
type interval struct {
	start, end int
}

// occupancy records booked windows per resource. Each resource keeps its
// windows sorted by start; windows of one resource never overlap.
type occupancy struct {
	booked map[string][]interval
}

func newOccupancy() *occupancy {
	return &occupancy{booked: make(map[string][]interval)}
}

// free reports whether every resource is unbooked for all of [start, start+length).
func (o *occupancy) free(resources []string, start, length int) bool {
	if length <= 0 {
		return true
	}
	end := start + length
	for _, r := range resources {
		for _, iv := range o.booked[r] {
			if iv.start >= end {
				break
			}
			if iv.end > start {
				return false
			}
		}
	}
	return true
}

// nextCandidate returns the smallest slot after start at which a blocking
// window of resources ends. Slots in between would fail the same way, so
// skipping them is equivalent to advancing one slot at a time.
func (o *occupancy) nextCandidate(resources []string, start, length int) int {
	end := start + length
	next := start + 1
	found := false
	for _, r := range resources {
		for _, iv := range o.booked[r] {
			if iv.start >= end {
				break
			}
			if iv.end > start && (!found || iv.end < next) {
				next = iv.end
				found = true
			}
		}
	}
	return max(next, start+1)
}

// book marks [start, start+length) as held by every resource.
func (o *occupancy) book(resources []string, start, length int) {
	if length <= 0 {
		return
	}
	iv := interval{start: start, end: start + length}
	for _, r := range resources {
		list := o.booked[r]
		i, _ := slices.BinarySearchFunc(list, iv, func(a, b interval) int { return a.start - b.start })
		o.booked[r] = slices.Insert(list, i, iv)
	}
}
