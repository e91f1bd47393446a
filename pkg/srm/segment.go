package srm

import "fmt"

// Kind identifies what a segment holds. It selects the emptiness rule.
type Kind uint8

const (
	KindEeprom Kind = iota
	KindControllerPack
	KindSram
	KindFlashRam
)

func (k Kind) String() string {
	switch k {
	case KindEeprom:
		return "eeprom"
	case KindControllerPack:
		return "controller_pack"
	case KindSram:
		return "sram"
	case KindFlashRam:
		return "flashram"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Segment is a bounds-limited view over part of a container. Writes through
// a Segment never reach bytes outside its range.
type Segment struct {
	kind   Kind
	offset int
	data   []byte
}

func newSegment(kind Kind, buf []byte, off, size int) Segment {
	return Segment{kind: kind, offset: off, data: buf[off : off+size : off+size]}
}

func (s Segment) Kind() Kind { return s.kind }

// Offset is the position of the segment inside its container.
func (s Segment) Offset() int { return s.offset }

func (s Segment) Len() int { return len(s.data) }

func (s Segment) End() int { return s.offset + len(s.data) }

// Bytes aliases the container buffer.
func (s Segment) Bytes() []byte { return s.data }

// IsEmpty reports whether the segment holds no save data. Battery segments
// are empty when every byte is erased. Controller pack segments are empty
// when the note table of their first 32 KiB page is free; the combined
// region is judged by slot 1 alone.
func (s Segment) IsEmpty() bool {
	if s.kind == KindControllerPack {
		return ControllerPackEmpty(s.data)
	}
	return isErased(s.data)
}

// CopyFrom overwrites the start of the segment with src. Bytes past len(src)
// keep their current value.
func (s Segment) CopyFrom(src []byte) (int, error) {
	if len(src) > len(s.data) {
		return 0, fmt.Errorf("%w: %s holds %d bytes, got %d", ErrSegmentOverflow, s.kind, len(s.data), len(src))
	}
	return copy(s.data, src), nil
}

// Swap word-swaps the segment in place.
func (s Segment) Swap() {
	WordSwap(s.data)
}

// Is4K reports whether an eeprom segment only uses its first 512 bytes.
// It is false for every other kind.
func (s Segment) Is4K() bool {
	if s.kind != KindEeprom || len(s.data) < Eeprom4KSize {
		return false
	}
	return isErased(s.data[Eeprom4KSize:])
}

// As4K returns the logical 4K image of an eeprom segment. Segments that are
// not 4K are returned unchanged.
func (s Segment) As4K() Segment {
	if !s.Is4K() {
		return s
	}
	return Segment{kind: s.kind, offset: s.offset, data: s.data[:Eeprom4KSize:Eeprom4KSize]}
}

func isErased(b []byte) bool {
	for _, v := range b {
		if v != blank {
			return false
		}
	}
	return true
}
