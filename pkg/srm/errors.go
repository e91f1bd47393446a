package srm

import "errors"

var (
	ErrSegmentOverflow = errors.New("srm: data larger than segment")
	ErrSlotIndex       = errors.New("srm: controller pack slot out of range")
	ErrShortContainer  = errors.New("srm: container shorter than expected")
)
