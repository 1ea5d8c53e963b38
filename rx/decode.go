package rx

// decode.go is the read side of the byte-coded program format: turning a
// byte offset back into a station's opcode and operands, and turning the
// header back into the fields Program caches for convenience. vm.go and
// rx/prefilter both walk a Program exclusively through Decode; neither
// touches Program.Bytes directly.

// Station is one decoded instruction: an opcode plus whichever operand and
// offset fields that opcode uses. X, Y and Next are absolute byte offsets
// into the owning Program's Bytes, already resolved from the self-relative
// values stored on the wire; a field reads -1 if the opcode does not use
// it.
type Station struct {
	PC       int
	Op       Op
	Char     rune
	Class    *CharClass
	Property byte
	Slot     int
	Min, Max int
	X, Y     int
	Next     int
}

// Decode reads the station beginning at byte offset pc of prog.Bytes.
func Decode(prog *Program, pc int) Station {
	buf := prog.Bytes
	st := Station{PC: pc, Op: Op(buf[pc]), X: -1, Y: -1, Next: -1}
	off := pc + 1
	switch st.Op {
	case OpChar:
		v, n := getVarint(buf[off:])
		st.Char = rune(v)
		off += n
		off = decodeOffset(buf, off, &st.Next)

	case OpAny, OpBOL, OpEOL, OpZero:
		off = decodeOffset(buf, off, &st.Next)

	case OpCharClass, OpNegCharClass:
		count, n := getVarint(buf[off:])
		off += n
		ranges := make([]RuneRange, count)
		for i := range ranges {
			lo, n1 := getVarint(buf[off:])
			off += n1
			hi, n2 := getVarint(buf[off:])
			off += n2
			ranges[i] = RuneRange{Lo: rune(lo), Hi: rune(hi)}
		}
		st.Class = &CharClass{Ranges: ranges}
		off = decodeOffset(buf, off, &st.Next)

	case OpCharProperty:
		st.Property = buf[off]
		off++
		off = decodeOffset(buf, off, &st.Next)

	case OpCaptureStart, OpCaptureEnd:
		v, n := getVarint(buf[off:])
		st.Slot = int(v)
		off += n
		off = decodeOffset(buf, off, &st.Next)

	case OpJump:
		off = decodeOffset(buf, off, &st.X)

	case OpSplit:
		off = decodeOffset(buf, off, &st.X)
		off = decodeOffset(buf, off, &st.Y)

	case OpCount:
		v1, n1 := getVarint(buf[off:])
		off += n1
		v2, n2 := getVarint(buf[off:])
		off += n2
		st.Min = int(v1) - 1
		if v2 == 0 {
			st.Max = 0 // reserved literal: unbounded
		} else {
			st.Max = int(v2) - 1
		}
		off = decodeOffset(buf, off, &st.X)
		off = decodeOffset(buf, off, &st.Y)

	case OpNegLookahead:
		off = decodeOffset(buf, off, &st.X)
		off = decodeOffset(buf, off, &st.Next)

	case OpMatch, OpStart:
		// no operands
	}
	return st
}

func decodeOffset(buf []byte, off int, target *int) int {
	rel, n := getSignedVarint(buf[off:])
	*target = off + int(rel)
	return off + n
}

// DecodeHeader re-parses a Program's header directly from its byte buffer,
// independent of the Program struct's cached fields. It exists so tests
// can assert the wire format round-trips -- that the header carries
// everything needed to locate the program's stations -- rather than only
// ever reading the convenience copies Compile/emitProgram populated.
func DecodeHeader(buf []byte) (search, start, stationCount, maxCounter, maxCapture int, names []string) {
	off := 1 // skip OpStart
	rel, n := getSignedVarint(buf[off:])
	search = off + int(rel)
	off += n
	rel, n = getSignedVarint(buf[off:])
	start = off + int(rel)
	off += n
	v, n := getVarint(buf[off:])
	stationCount = int(v)
	off += n
	maxCounter = int(buf[off])
	off++
	maxCapture = int(buf[off])
	off++
	nameCount := int(buf[off])
	off++
	names = make([]string, 0, nameCount-1)
	for i := 0; i < nameCount-1; i++ {
		ln, n := getVarint(buf[off:])
		off += n
		names = append(names, string(buf[off:off+int(ln)]))
		off += int(ln)
	}
	return
}
