package rx

// emit.go is pass two of Compile: it takes the in-memory node graph built
// by scan.go and lays it out as the final byte-coded Program described in
// opcodes.go and Program's doc comment. Every self-relative offset field --
// including the two header entry points -- starts at the minimum possible
// width (one byte) and is only ever grown, never shrunk, until a fixed
// point is reached. Growing one field's width shifts every station after
// it, which can in turn push some other field's target across a varint
// size boundary and force that one to grow too; repeating the sizing pass
// until nothing changes propagates such a boundary crossing however far it
// has to go. Because widths are monotonically non-decreasing and capped at
// six bytes, the loop always terminates.
//
// Payload operands (runes, capture slots, property codes, class ranges,
// repetition bounds) are always non-negative and are written with the
// plain unsigned varint; only jump targets are signed (a backward offset
// is negative) and go through the zigzag encoding.

func payloadSize(n node) int {
	switch n.op {
	case OpChar:
		return varintLen(uint64(n.char))
	case OpCharClass, OpNegCharClass:
		size := varintLen(uint64(len(n.class.Ranges)))
		for _, r := range n.class.Ranges {
			size += varintLen(uint64(r.Lo)) + varintLen(uint64(r.Hi))
		}
		return size
	case OpCharProperty:
		return 1
	case OpCaptureStart, OpCaptureEnd:
		return varintLen(uint64(n.slot))
	case OpCount:
		maxStored := uint64(0)
		if n.max != 0 {
			maxStored = uint64(n.max) + 1
		}
		return varintLen(uint64(n.min)+1) + varintLen(maxStored)
	default:
		return 0
	}
}

func writePayload(buf []byte, n node) int {
	off := 0
	switch n.op {
	case OpChar:
		off += putVarint(buf[off:], uint64(n.char))
	case OpCharClass, OpNegCharClass:
		off += putVarint(buf[off:], uint64(len(n.class.Ranges)))
		for _, r := range n.class.Ranges {
			off += putVarint(buf[off:], uint64(r.Lo))
			off += putVarint(buf[off:], uint64(r.Hi))
		}
	case OpCharProperty:
		buf[off] = n.property
		off++
	case OpCaptureStart, OpCaptureEnd:
		off += putVarint(buf[off:], uint64(n.slot))
	case OpCount:
		maxStored := uint64(0)
		if n.max != 0 {
			maxStored = uint64(n.max) + 1
		}
		off += putVarint(buf[off:], uint64(n.min)+1)
		off += putVarint(buf[off:], maxStored)
	}
	return off
}

func emitProgram(nodes []node, searchEntry, startEntry, numCounters, maxCapture int, names []string, features Feature) *Program {
	nameBytes := make([][]byte, len(names))
	for i, nm := range names {
		nameBytes[i] = []byte(nm)
	}
	tailFixed := varintLen(uint64(len(nodes))) + 3 // station_count, max_counter, max_capture, name_count
	for _, nb := range nameBytes {
		tailFixed += varintLen(uint64(len(nb))) + len(nb)
	}

	type widths struct{ x, y, next int }
	w := make([]widths, len(nodes))
	for i, n := range nodes {
		if n.x >= 0 {
			w[i].x = 1
		}
		if n.y >= 0 {
			w[i].y = 1
		}
		if n.next >= 0 {
			w[i].next = 1
		}
	}
	searchW, startW := 1, 1
	positions := make([]int, len(nodes))

	for {
		headerSize := 1 + searchW + startW + tailFixed
		pos := headerSize
		for i, n := range nodes {
			positions[i] = pos
			pos += 1 + payloadSize(n) + w[i].x + w[i].y + w[i].next
		}

		changed := false
		if need := signedVarintLen(int64(positions[searchEntry] - 1)); need > searchW {
			searchW, changed = need, true
		}
		if need := signedVarintLen(int64(positions[startEntry] - (1 + searchW))); need > startW {
			startW, changed = need, true
		}
		for i, n := range nodes {
			fieldPos := positions[i] + 1 + payloadSize(n)
			if n.x >= 0 {
				if need := signedVarintLen(int64(positions[n.x] - fieldPos)); need > w[i].x {
					w[i].x, changed = need, true
				}
				fieldPos += w[i].x
			}
			if n.y >= 0 {
				if need := signedVarintLen(int64(positions[n.y] - fieldPos)); need > w[i].y {
					w[i].y, changed = need, true
				}
				fieldPos += w[i].y
			}
			if n.next >= 0 {
				if need := signedVarintLen(int64(positions[n.next] - fieldPos)); need > w[i].next {
					w[i].next, changed = need, true
				}
			}
		}
		if !changed {
			break
		}
	}

	headerSize := 1 + searchW + startW + tailFixed
	total := headerSize
	for i, n := range nodes {
		positions[i] = total
		total += 1 + payloadSize(n) + w[i].x + w[i].y + w[i].next
	}

	buf := make([]byte, total)
	off := 0
	buf[off] = byte(OpStart)
	off++
	searchFieldPos := off
	off += putSignedVarint(buf[off:], int64(positions[searchEntry]-searchFieldPos))
	startFieldPos := off
	off += putSignedVarint(buf[off:], int64(positions[startEntry]-startFieldPos))
	off += putVarint(buf[off:], uint64(len(nodes)))
	buf[off] = byte(numCounters)
	off++
	buf[off] = byte(maxCapture)
	off++
	buf[off] = byte(len(names) + 1)
	off++
	for _, nb := range nameBytes {
		off += putVarint(buf[off:], uint64(len(nb)))
		off += copy(buf[off:], nb)
	}

	for _, n := range nodes {
		buf[off] = byte(n.op)
		off++
		off += writePayload(buf[off:], n)
		if n.x >= 0 {
			fieldPos := off
			off += putSignedVarint(buf[off:], int64(positions[n.x]-fieldPos))
		}
		if n.y >= 0 {
			fieldPos := off
			off += putSignedVarint(buf[off:], int64(positions[n.y]-fieldPos))
		}
		if n.next >= 0 {
			fieldPos := off
			off += putSignedVarint(buf[off:], int64(positions[n.next]-fieldPos))
		}
	}

	return &Program{
		Bytes:         buf,
		SearchStation: positions[searchEntry],
		StartStation:  positions[startEntry],
		StationCount:  len(nodes),
		MaxCounter:    numCounters,
		MaxCapture:    maxCapture,
		Names:         names,
		Features:      features,
	}
}
