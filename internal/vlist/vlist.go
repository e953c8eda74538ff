// Package vlist implements the windowed (virtualized) list engine behind the
// invoice review grid and the parts browser.
//
// The engine knows nothing about items or rendering: it tracks one height per
// row (an estimate until the row is first laid out and measured) plus the
// running cumulative offsets, and answers "which rows intersect the viewport"
// in O(log n) per scroll event. Row identity is the caller's concern; the
// engine only deals in indices.
package vlist

import "sort"

// EstimateFunc returns the height guess for a not-yet-measured row.
type EstimateFunc func(index int) int

// List is the windowing state for one ordered collection.
type List struct {
	estimate EstimateFunc
	overscan int

	heights  []int
	measured []bool
	// offsets[i] is the top of row i; offsets[len] is the total height.
	// Kept monotonic; every height change shifts the suffix.
	offsets []int
}

// New builds a list of count rows seeded entirely with estimates.
// Overscan is the number of extra rows materialized on each side of the
// viewport to absorb fast scrolling.
func New(count int, estimate EstimateFunc, overscan int) *List {
	if count < 0 {
		count = 0
	}
	if overscan < 0 {
		overscan = 0
	}
	l := &List{estimate: estimate, overscan: overscan}
	l.Reset(count)
	return l
}

func (l *List) Count() int { return len(l.heights) }

// TotalHeight is the sum of all current row heights. It equals the full
// scrollable extent, so scrollbar size and position stay correct even though
// only a window of rows is materialized.
func (l *List) TotalHeight() int {
	return l.offsets[len(l.offsets)-1]
}

// Offset returns the absolute top of row i.
func (l *List) Offset(i int) int {
	return l.offsets[i]
}

// Height returns the current (estimated or measured) height of row i.
func (l *List) Height(i int) int {
	return l.heights[i]
}

// Reset discards all measurements and reseeds count rows from the estimator.
// Used after removals and full replacements: every following offset shifts,
// so a partial patch would leave stale geometry.
func (l *List) Reset(count int) {
	if count < 0 {
		count = 0
	}
	l.heights = make([]int, count)
	l.measured = make([]bool, count)
	l.offsets = make([]int, count+1)
	for i := 0; i < count; i++ {
		l.heights[i] = l.est(i)
		l.offsets[i+1] = l.offsets[i] + l.heights[i]
	}
}

// Append extends the list by n estimated rows, keeping existing measurements.
// This is the merge path: appended batches must not disturb rows the user is
// already looking at.
func (l *List) Append(n int) {
	for i := 0; i < n; i++ {
		idx := len(l.heights)
		h := l.est(idx)
		l.heights = append(l.heights, h)
		l.measured = append(l.measured, false)
		l.offsets = append(l.offsets, l.offsets[len(l.offsets)-1]+h)
	}
}

// Prepend inserts one estimated row at index 0 and shifts everything down.
// Existing measurements move with their rows, so a row that was measured at
// index i is still measured at index i+1.
func (l *List) Prepend() {
	h := l.est(0)
	l.heights = append([]int{h}, l.heights...)
	l.measured = append([]bool{false}, l.measured...)
	l.offsets = append(l.offsets, 0)
	for i := 1; i < len(l.offsets); i++ {
		l.offsets[i] = l.offsets[i-1] + l.heights[i-1]
	}
}

// Measure records the real height of row i after first layout and returns the
// delta against the previous value. All following offsets shift by the delta;
// rows above i never move. Re-measuring with an unchanged height is free.
func (l *List) Measure(i, height int) int {
	if i < 0 || i >= len(l.heights) || height < 0 {
		return 0
	}
	delta := height - l.heights[i]
	l.measured[i] = true
	if delta == 0 {
		return 0
	}
	l.heights[i] = height
	for j := i + 1; j < len(l.offsets); j++ {
		l.offsets[j] += delta
	}
	return delta
}

// Measured reports whether row i has a real (non-estimated) height.
func (l *List) Measured(i int) bool {
	return i >= 0 && i < len(l.measured) && l.measured[i]
}

// ScrollAdjust returns the corrected scroll offset after row measuredRow
// changed by delta. When the measured row sits fully above the viewport the
// content under the viewport shifted by delta, so the scroll offset must move
// with it to avoid a visible jump. Rows at or below the viewport need no
// correction.
func (l *List) ScrollAdjust(scrollTop, measuredRow, delta int) int {
	if delta == 0 || measuredRow < 0 || measuredRow >= len(l.heights) {
		return scrollTop
	}
	if l.offsets[measuredRow+1] <= scrollTop+delta {
		scrollTop += delta
		if scrollTop < 0 {
			scrollTop = 0
		}
	}
	return scrollTop
}

// Visible returns the half-open index range [start, end) of rows to
// materialize for a viewport of height viewportH starting at scrollTop,
// including overscan on both sides. The range always covers every row whose
// extent intersects [scrollTop-overscan rows, scrollTop+viewportH+overscan
// rows] and is clamped to [0, count).
func (l *List) Visible(scrollTop, viewportH int) (start, end int) {
	count := len(l.heights)
	if count == 0 || viewportH <= 0 {
		return 0, 0
	}
	if scrollTop < 0 {
		scrollTop = 0
	}
	// First row whose bottom edge is past the top of the viewport.
	start = sort.Search(count, func(i int) bool {
		return l.offsets[i+1] > scrollTop
	})
	// First row whose top edge is at or past the bottom of the viewport.
	end = sort.Search(count, func(i int) bool {
		return l.offsets[i] >= scrollTop+viewportH
	})
	start -= l.overscan
	end += l.overscan
	if start < 0 {
		start = 0
	}
	if end > count {
		end = count
	}
	if start > end {
		start = end
	}
	return start, end
}

// ClampScroll limits scrollTop so the viewport never scrolls past the content.
func (l *List) ClampScroll(scrollTop, viewportH int) int {
	max := l.TotalHeight() - viewportH
	if max < 0 {
		max = 0
	}
	if scrollTop > max {
		scrollTop = max
	}
	if scrollTop < 0 {
		scrollTop = 0
	}
	return scrollTop
}

// ScrollTo returns a scroll offset that brings row i fully into a viewport of
// height viewportH, moving as little as possible.
func (l *List) ScrollTo(scrollTop, viewportH, i int) int {
	if i < 0 || i >= len(l.heights) {
		return scrollTop
	}
	top := l.offsets[i]
	bottom := l.offsets[i+1]
	if top < scrollTop {
		return top
	}
	if bottom > scrollTop+viewportH {
		return bottom - viewportH
	}
	return scrollTop
}

func (l *List) est(i int) int {
	if l.estimate == nil {
		return 1
	}
	h := l.estimate(i)
	if h < 1 {
		h = 1
	}
	return h
}
