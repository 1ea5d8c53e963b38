package rx

import "unicode/utf8"

// VM runs a compiled Program against input. A VM is stateless between
// calls and safe to share across goroutines; each MatchAt/Find call builds
// its own thread lists.
type VM struct {
	prog *Program
}

// NewVM wraps prog for matching.
func NewVM(prog *Program) *VM { return &VM{prog: prog} }

// MatchAt runs the program anchored at byte offset start in text, returning
// the leftmost-first match (the same alternative-priority and
// greedy-by-default semantics conventional regex engines use) or a
// non-matching Result.
func (vm *VM) MatchAt(text []byte, start int) *Result {
	return vm.run(text, start, false)
}

// Find scans forward from start looking for the first position at which
// the program matches, like a regex search rather than an anchored match.
func (vm *VM) Find(text []byte, start int) *Result {
	return vm.run(text, start, true)
}

func (vm *VM) run(text []byte, start int, search bool) *Result {
	// Per §4.4: a single thread is seeded at the requested starting
	// station. For matchAfter that station is search_station, whose
	// compiled prologue (Split preferring the real start over an
	// Any/Jump byte-skipping loop) is what performs the scan -- the VM
	// loop itself never re-seeds at later positions.
	n := len(vm.prog.Bytes)
	clist := newThreadList(n)
	nlist := newThreadList(n)
	entry := vm.prog.StartStation
	if search {
		entry = vm.prog.SearchStation
	}

	var matched *Result
	pos := start
	clist.addThread(vm.prog, entry, pos, newResult(vm.prog.MaxCapture, vm.prog.Names), text)

	for {
		if clist.len() == 0 {
			break
		}

		var r rune
		var size int
		atEOF := pos >= len(text)
		if !atEOF {
			r, size = utf8.DecodeRune(text[pos:])
		}

		nlist.reset()
		for i := 0; i < clist.len(); i++ {
			pc, th := clist.at(i)
			st := Decode(vm.prog, pc)
			switch st.Op {
			case OpMatch:
				th.matched = true
				if matched == nil || pos > matched.state.caps[1] {
					matched = th
				}
				// Lower-priority threads queued after this one in clist
				// cannot produce a better (higher-priority) match this
				// step; stop considering them.
				goto stepDone

			case OpChar:
				if !atEOF && r == st.Char {
					nlist.addThread(vm.prog, st.Next, pos+size, th, text)
				}
			case OpAny:
				if !atEOF {
					nlist.addThread(vm.prog, st.Next, pos+size, th, text)
				}
			case OpCharClass:
				if !atEOF && st.Class.Contains(r) {
					nlist.addThread(vm.prog, st.Next, pos+size, th, text)
				}
			case OpNegCharClass:
				if !atEOF && !st.Class.Contains(r) {
					nlist.addThread(vm.prog, st.Next, pos+size, th, text)
				}
			case OpCharProperty:
				if !atEOF && matchesProperty(st.Property, r) {
					nlist.addThread(vm.prog, st.Next, pos+size, th, text)
				}
			}
		}
	stepDone:
		clist, nlist = nlist, clist

		if atEOF {
			break
		}
		pos += size
	}

	if matched == nil {
		return &Result{matched: false}
	}
	return matched
}

// threadList is the set of threads scheduled to run at the current
// station, in priority order (index 0 is tried first).
type threadList struct {
	pcs     []int
	threads []*Result
	seen    *stepSet
	admit   *admitSet
}

func newThreadList(stations int) *threadList {
	l := &threadList{seen: newStepSet(stations), admit: newAdmitSet(stations)}
	l.seen.reset() // distinguish "never visited" from the stepSet's zero value
	l.admit.reset()
	return l
}

func (l *threadList) len() int { return len(l.pcs) }

func (l *threadList) at(i int) (int, *Result) { return l.pcs[i], l.threads[i] }

func (l *threadList) reset() {
	l.pcs = l.pcs[:0]
	l.threads = l.threads[:0]
	l.seen.reset()
	l.admit.reset()
}

// addThread follows every epsilon transition (Jump, Split, Zero, Count,
// CaptureStart/End, BOL/EOL, NegLookahead) reachable from pc without
// consuming input, appending the consuming instructions it reaches (Char,
// Any, CharClass, NegCharClass, CharProperty, Match) to the list in
// priority order.
//
// Cycle avoidance and duplicate admission are deliberately separate here.
// stepSet guards only the epsilon stations, so a Jump/Split loop can never
// recurse forever; terminal stations skip that gate and go through
// admitSet instead, which keeps multiple threads reaching the same
// station distinguished by counter state (one still looping a counted
// repetition, one having just exited it) rather than collapsing them into
// whichever got there first.
func (l *threadList) addThread(prog *Program, pc int, pos int, t *Result, text []byte) {
	st := Decode(prog, pc)
	switch st.Op {
	case OpJump:
		if !l.seen.visit(pc) {
			return
		}
		l.addThread(prog, st.X, pos, t, text)

	case OpSplit:
		if !l.seen.visit(pc) {
			return
		}
		l.addThread(prog, st.X, pos, t, text)
		l.addThread(prog, st.Y, pos, t.fork(), text)

	case OpZero:
		if !l.seen.visit(pc) {
			return
		}
		nt := t.fork()
		nt.counterPushZero(pos)
		l.addThread(prog, st.Next, pos, nt, text)

	case OpCount:
		if !l.seen.visit(pc) {
			return
		}
		curOffset, curCount := t.counterTop()
		nextCount := curCount + 1
		switch {
		case nextCount < st.Min:
			nt := t.fork()
			nt.counterIncr(pos)
			l.addThread(prog, st.X, pos, nt, text)
		case st.Max == 0 || nextCount < st.Max:
			if curOffset != pos || curCount == 0 {
				nt := t.fork()
				nt.counterIncr(pos)
				l.addThread(prog, st.X, pos, nt, text)
			}
			exit := t.fork()
			exit.counterPop()
			l.addThread(prog, st.Y, pos, exit, text)
		default:
			exit := t.fork()
			exit.counterPop()
			l.addThread(prog, st.Y, pos, exit, text)
		}

	case OpCaptureStart:
		if !l.seen.visit(pc) {
			return
		}
		nt := t.fork()
		nt.captureSet(2*st.Slot, pos)
		l.addThread(prog, st.Next, pos, nt, text)

	case OpCaptureEnd:
		if !l.seen.visit(pc) {
			return
		}
		nt := t.fork()
		nt.captureSet(2*st.Slot+1, pos)
		l.addThread(prog, st.Next, pos, nt, text)

	case OpBOL:
		if !l.seen.visit(pc) {
			return
		}
		if pos == 0 || (pos > 0 && pos <= len(text) && text[pos-1] == '\n') {
			l.addThread(prog, st.Next, pos, t, text)
		}

	case OpEOL:
		if !l.seen.visit(pc) {
			return
		}
		if pos == len(text) || (pos < len(text) && text[pos] == '\n') {
			l.addThread(prog, st.Next, pos, t, text)
		}

	case OpNegLookahead:
		if !l.seen.visit(pc) {
			return
		}
		if !matchesHere(prog, st.X, pos, text) {
			l.addThread(prog, st.Next, pos, t, text)
		}

	default: // OpChar, OpAny, OpCharClass, OpNegCharClass, OpCharProperty, OpMatch
		if !l.admit.admit(pc, t) {
			return
		}
		l.pcs = append(l.pcs, pc)
		l.threads = append(l.threads, t)
	}
}

// matchesHere reports whether starting the subgraph at pc can reach any
// OpMatch station without consuming input beyond what text allows, i.e.
// whether the lookahead body matches at pos. Used only by OpNegLookahead,
// which needs a nested, independent thread simulation sharing the same
// byte buffer -- the sub-pattern's own OpMatch (emitted right after its
// body at compile time) is self-contained, since nothing the sub-pattern
// compiles can jump outward into the rest of the program.
func matchesHere(prog *Program, pc, pos int, text []byte) bool {
	cur := newThreadList(len(prog.Bytes))
	cur.addThread(prog, pc, pos, newResult(0, nil), text)
	if anyMatch(prog, cur) {
		return true
	}

	next := newThreadList(len(prog.Bytes))
	position := pos
	for cur.len() > 0 && position < len(text) {
		r, size := utf8.DecodeRune(text[position:])
		next.reset()
		for i := 0; i < cur.len(); i++ {
			stationPC, th := cur.at(i)
			st := Decode(prog, stationPC)
			switch st.Op {
			case OpChar:
				if r == st.Char {
					next.addThread(prog, st.Next, position+size, th, text)
				}
			case OpAny:
				next.addThread(prog, st.Next, position+size, th, text)
			case OpCharClass:
				if st.Class.Contains(r) {
					next.addThread(prog, st.Next, position+size, th, text)
				}
			case OpNegCharClass:
				if !st.Class.Contains(r) {
					next.addThread(prog, st.Next, position+size, th, text)
				}
			case OpCharProperty:
				if matchesProperty(st.Property, r) {
					next.addThread(prog, st.Next, position+size, th, text)
				}
			}
		}
		if anyMatch(prog, next) {
			return true
		}
		cur, next = next, cur
		position += size
	}
	return false
}

func anyMatch(prog *Program, l *threadList) bool {
	for i := 0; i < l.len(); i++ {
		pc, _ := l.at(i)
		if Decode(prog, pc).Op == OpMatch {
			return true
		}
	}
	return false
}

func matchesProperty(p byte, r rune) bool {
	switch p {
	case 'a':
		return isLetter(r)
	case 'd':
		return r >= '0' && r <= '9'
	case 'h':
		return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	case 's':
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
	case 'w':
		return isLetter(r) || (r >= '0' && r <= '9') || r == '_'
	case 'L':
		return r >= 'a' && r <= 'z'
	case 'U':
		return r >= 'A' && r <= 'Z'
	default:
		return false
	}
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
