package srm

import (
	"encoding/binary"
	"fmt"
)

// Controller pack filesystem layout.
const (
	cpIDBlockSize     = 0x20
	cpIDHeader        = 0x81
	cpSerialOffset    = 0x20
	cpSerialSize      = 0x20
	cpChecksum1Offset = 0x3c
	cpChecksum2Offset = 0x3e
	cpNoteTableOffset = 0x100
	cpNoteTableSize   = 0x100
	// cpNoteTableMirror holds the backup copy of the note table.
	cpNoteTableMirror = cpNoteTableOffset + cpNoteTableSize
	// cpPageEntriesStart is where the 16-bit page entries begin in the table.
	cpPageEntriesStart = 10
	cpTableMarker      = 113

	// FreePage marks an unallocated note table entry.
	FreePage uint16 = 0x0003

	checksum2Base uint16 = 0xfff2
)

// cpSerialMirrors are the offsets the serial block is replicated to.
var cpSerialMirrors = [...]int{0x60, 0x80, 0xc0}

// blankSerial is the serial signature written by the mupen64 family.
var blankSerial = [24]byte{
	0xff, 0xff, 0xff, 0xff, 0x05, 0x1a, 0x5f, 0x13,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

var blankStatus = [4]byte{0xff, 0xff, 0x01, 0xff}

// FormatControllerPack writes a blank, checksummed filesystem into image,
// which must be exactly one controller pack long.
func FormatControllerPack(image []byte) error {
	if len(image) != ControllerPackSize {
		return fmt.Errorf("srm: controller pack image is %d bytes, want %d", len(image), ControllerPackSize)
	}
	clear(image)

	image[0] = cpIDHeader
	for i := 1; i < cpIDBlockSize; i++ {
		image[i] = byte(i)
	}

	serial := image[cpSerialOffset : cpSerialOffset+cpSerialSize]
	copy(serial, blankSerial[:])
	copy(serial[len(blankSerial):], blankStatus[:])
	c1 := Checksum1(serial)
	c2 := Checksum2(c1)
	copy(image[cpChecksum1Offset:], c1[:])
	copy(image[cpChecksum2Offset:], c2[:])
	for _, off := range cpSerialMirrors {
		copy(image[off:off+cpSerialSize], serial)
	}

	table := image[cpNoteTableOffset : cpNoteTableOffset+cpNoteTableSize]
	table[0] = 0
	table[1] = cpTableMarker
	for off := cpPageEntriesStart; off+2 <= len(table); off += 2 {
		binary.BigEndian.PutUint16(table[off:], FreePage)
	}
	copy(image[cpNoteTableMirror:cpNoteTableMirror+cpNoteTableSize], table)
	return nil
}

// BlankControllerPack returns a freshly formatted controller pack image.
func BlankControllerPack() []byte {
	image := make([]byte, ControllerPackSize)
	_ = FormatControllerPack(image)
	return image
}

// Checksum1 sums the first fourteen big-endian words of a 32-byte serial
// block, wrapping at 16 bits.
func Checksum1(block []byte) [2]byte {
	var sum uint16
	for off := 0; off < 28; off += 2 {
		sum += binary.BigEndian.Uint16(block[off:])
	}
	var out [2]byte
	binary.BigEndian.PutUint16(out[:], sum)
	return out
}

// Checksum2 derives the second checksum from the first.
func Checksum2(c1 [2]byte) [2]byte {
	var out [2]byte
	binary.BigEndian.PutUint16(out[:], checksum2Base-binary.BigEndian.Uint16(c1[:]))
	return out
}

// ControllerPackChecksumsValid reports whether the primary serial block of
// image carries checksums matching its contents.
func ControllerPackChecksumsValid(image []byte) bool {
	if len(image) < cpSerialOffset+cpSerialSize {
		return false
	}
	serial := image[cpSerialOffset : cpSerialOffset+cpSerialSize]
	c1 := Checksum1(serial)
	c2 := Checksum2(c1)
	return [2]byte(image[cpChecksum1Offset:]) == c1 && [2]byte(image[cpChecksum2Offset:]) == c2
}

// ControllerPackEmpty reports whether every page entry of the note table is
// free. File data pages are not inspected.
func ControllerPackEmpty(image []byte) bool {
	if len(image) < cpNoteTableOffset+cpNoteTableSize {
		return false
	}
	table := image[cpNoteTableOffset : cpNoteTableOffset+cpNoteTableSize]
	for off := cpPageEntriesStart; off+2 <= len(table); off += 2 {
		if binary.BigEndian.Uint16(table[off:]) != FreePage {
			return false
		}
	}
	return true
}
