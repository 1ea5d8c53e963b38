package rx

// counter is one frame of a counted-repetition's progress: the offset at
// which its current iteration last advanced, and how many iterations it
// has completed. The VM pushes one frame per OpZero and pops it on every
// path out of the matching OpCount.
type counter struct {
	offset, count int
}

// captureState is the mutable state a live VM thread carries: its capture
// slots and its counter-frame stack. Forking a thread (Split, Count,
// NegLookahead's surrounding continuation) is far more common than
// mutating one, so captureState is copy-on-write: fork shares the
// underlying slices and marks both copies shared, and the first mutation
// after a fork pays for a fresh copy.
type captureState struct {
	caps     []int
	counters []counter
	shared   bool
}

func newCaptureState(maxCapture int) *captureState {
	caps := make([]int, 2*maxCapture)
	for i := range caps {
		caps[i] = -1
	}
	return &captureState{caps: caps}
}

// fork returns a second reference to s's data, marking both the original
// and the copy shared so neither may be written in place.
func (s *captureState) fork() *captureState {
	s.shared = true
	return &captureState{caps: s.caps, counters: s.counters, shared: true}
}

// mutable returns a captureState safe to write to: s itself if it is not
// shared, otherwise a private copy.
func (s *captureState) mutable() *captureState {
	if !s.shared {
		return s
	}
	return &captureState{
		caps:     append([]int(nil), s.caps...),
		counters: append([]counter(nil), s.counters...),
	}
}

// Result is both a live thread's matching state during simulation and, once
// a thread reaches OpMatch, the public outcome returned to callers.
type Result struct {
	state   *captureState
	matched bool
	names   []string
}

func newResult(maxCapture int, names []string) *Result {
	return &Result{state: newCaptureState(maxCapture), names: names}
}

// fork produces an independent Result sharing state with r until one of
// them writes to it.
func (r *Result) fork() *Result {
	return &Result{state: r.state.fork(), matched: r.matched, names: r.names}
}

// captureSet records offset as the boundary of capture slot index (a raw
// slot in the [2*n, 2*n+1] scheme, not a group number).
func (r *Result) captureSet(index, offset int) {
	r.state = r.state.mutable()
	if index >= 0 && index < len(r.state.caps) {
		r.state.caps[index] = offset
	}
}

// counterPushZero pushes a fresh (offset, 0) counter frame, as OpZero does
// on entering a counted repetition.
func (r *Result) counterPushZero(offset int) {
	r.state = r.state.mutable()
	r.state.counters = append(r.state.counters, counter{offset: offset})
}

// counterIncr advances the top counter frame to offset, returning its new
// count.
func (r *Result) counterIncr(offset int) int {
	r.state = r.state.mutable()
	top := len(r.state.counters) - 1
	r.state.counters[top].count++
	r.state.counters[top].offset = offset
	return r.state.counters[top].count
}

// counterPop discards the top counter frame, as every exit path out of
// OpCount does to balance the OpZero that pushed it.
func (r *Result) counterPop() {
	r.state = r.state.mutable()
	r.state.counters = r.state.counters[:len(r.state.counters)-1]
}

// counterTop returns the top counter frame without modifying it.
func (r *Result) counterTop() (offset, count int) {
	c := r.state.counters[len(r.state.counters)-1]
	return c.offset, c.count
}

// counterNum reports how many counter frames are currently pushed.
func (r *Result) counterNum() int { return len(r.state.counters) }

// counterGet returns the i'th counter frame from the bottom of the stack.
func (r *Result) counterGet(i int) (offset, count int) {
	c := r.state.counters[i]
	return c.offset, c.count
}

// countersSame reports whether r and other carry identical counter stacks,
// the test the thread scheduler uses to decide whether two threads that
// have reached the same station are truly duplicates (and so only the
// higher-priority one need survive) or are distinguished by differing
// repetition progress and must both be kept.
func (r *Result) countersSame(other *Result) bool {
	if len(r.state.counters) != len(other.state.counters) {
		return false
	}
	for i, c := range r.state.counters {
		if c != other.state.counters[i] {
			return false
		}
	}
	return true
}

// Matched reports whether the match succeeded.
func (r *Result) Matched() bool { return r != nil && r.matched }

// Range returns the [start,end) byte offsets of the whole match (slot 0).
func (r *Result) Range() (int, int) {
	if r == nil || !r.matched || len(r.state.caps) < 2 {
		return -1, -1
	}
	return r.state.caps[0], r.state.caps[1]
}

// Group returns the [start,end) byte offsets of capture group n (1-based;
// 0 is the whole match), and whether that group participated in the match.
func (r *Result) Group(n int) (start, end int, ok bool) {
	if r == nil || !r.matched || 2*n+1 >= len(r.state.caps) {
		return -1, -1, false
	}
	start, end = r.state.caps[2*n], r.state.caps[2*n+1]
	return start, end, start >= 0 && end >= 0
}

// NumGroups returns the number of capture groups, not counting the whole
// match.
func (r *Result) NumGroups() int {
	if r == nil {
		return 0
	}
	return len(r.state.caps)/2 - 1
}

// GroupByName returns the offsets of the capture group with the given name,
// or ok=false if no group has that name or it did not participate.
func (r *Result) GroupByName(name string) (start, end int, ok bool) {
	if r == nil {
		return -1, -1, false
	}
	for i, n := range r.names {
		if n == name {
			return r.Group(i + 1)
		}
	}
	return -1, -1, false
}

// Text extracts the whole match's bytes from src.
func (r *Result) Text(src []byte) []byte {
	start, end := r.Range()
	if start < 0 {
		return nil
	}
	return src[start:end]
}
