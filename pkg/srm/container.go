package srm

import "fmt"

// Container owns one SRM buffer and hands out views over its segments.
type Container struct {
	data []byte
}

// New returns a blank container: battery segments erased to 0xff and every
// controller pack slot formatted.
func New() *Container {
	data := make([]byte, ContainerSize)
	for i := range data {
		data[i] = blank
	}
	first := data[ControllerPackOffset : ControllerPackOffset+ControllerPackSize]
	_ = FormatControllerPack(first)
	for slot := 1; slot < ControllerPackSlots; slot++ {
		off := ControllerPackOffset + slot*ControllerPackSize
		copy(data[off:off+ControllerPackSize], first)
	}
	return &Container{data: data}
}

// FromBytes loads raw container bytes over a blank container. Input shorter
// than ContainerSize leaves the tail at its blank value and returns
// ErrShortContainer alongside the usable container; extra bytes are ignored.
func FromBytes(raw []byte) (*Container, error) {
	c := New()
	n := copy(c.data, raw)
	if n < ContainerSize {
		return c, fmt.Errorf("%w: %d of %d bytes", ErrShortContainer, n, ContainerSize)
	}
	return c, nil
}

// Bytes returns the whole container buffer.
func (c *Container) Bytes() []byte { return c.data }

func (c *Container) Eeprom() Segment {
	return newSegment(KindEeprom, c.data, EepromOffset, EepromSize)
}

func (c *Container) Sram() Segment {
	return newSegment(KindSram, c.data, SramOffset, SramSize)
}

func (c *Container) FlashRam() Segment {
	return newSegment(KindFlashRam, c.data, FlashRamOffset, FlashRamSize)
}

// ControllerPack returns slot i (0-based).
func (c *Container) ControllerPack(i int) (Segment, error) {
	if i < 0 || i >= ControllerPackSlots {
		return Segment{}, fmt.Errorf("%w: %d", ErrSlotIndex, i)
	}
	return newSegment(KindControllerPack, c.data, ControllerPackOffset+i*ControllerPackSize, ControllerPackSize), nil
}

// ControllerPacks returns all four slots in order.
func (c *Container) ControllerPacks() [ControllerPackSlots]Segment {
	var out [ControllerPackSlots]Segment
	for i := range out {
		out[i] = newSegment(KindControllerPack, c.data, ControllerPackOffset+i*ControllerPackSize, ControllerPackSize)
	}
	return out
}

// FullControllerPack spans all four slots as one combined image, the layout
// mupen64plus uses for its .mpk files.
func (c *Container) FullControllerPack() Segment {
	return newSegment(KindControllerPack, c.data, ControllerPackOffset, ControllerPackRegionSize)
}

// Segments lists every segment in container order.
func (c *Container) Segments() []Segment {
	packs := c.ControllerPacks()
	out := make([]Segment, 0, 3+len(packs))
	out = append(out, c.Eeprom())
	out = append(out, packs[:]...)
	out = append(out, c.Sram(), c.FlashRam())
	return out
}

// IsEmpty reports whether no segment holds save data.
func (c *Container) IsEmpty() bool {
	for _, s := range c.Segments() {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}
