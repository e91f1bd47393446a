// Package srm implements the unified SRM save container.
//
// An SRM container is a single fixed-size buffer aggregating every save
// device a cartridge may carry: EEPROM, four controller packs, SRAM and
// FlashRAM. The layout never changes; segments are addressed by offset.
package srm

// Container layout. Ranges are half-open and partition the buffer exactly.
const (
	EepromOffset = 0x0
	EepromSize   = 0x800

	ControllerPackOffset = EepromOffset + EepromSize
	ControllerPackSize   = 0x8000
	ControllerPackSlots  = 4
	// ControllerPackRegionSize covers all four slots back to back.
	ControllerPackRegionSize = ControllerPackSize * ControllerPackSlots

	SramOffset = ControllerPackOffset + ControllerPackRegionSize
	SramSize   = 0x8000

	FlashRamOffset = SramOffset + SramSize
	FlashRamSize   = 0x20000

	// ContainerSize is the size of every SRM container.
	ContainerSize = FlashRamOffset + FlashRamSize
)

// Eeprom4KSize is the logical size of a 4 Kbit eeprom image.
const Eeprom4KSize = 0x200

// blank is the erased value of battery-backed memory.
const blank = 0xff
