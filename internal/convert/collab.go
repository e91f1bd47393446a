package convert

import "context"

// Input keys understood by FileSource.
const (
	KeyBatteryFile        = "battery_file"
	KeyControllerPack1    = "controller_pack_1"
	KeyControllerPack2    = "controller_pack_2"
	KeyControllerPack3    = "controller_pack_3"
	KeyControllerPack4    = "controller_pack_4"
	KeyCombinedController = "controller_pack_mp"
	KeySrmFile            = "srm_file"
)

// Toggle keys understood by ToggleSource.
const (
	ToggleSwapBytes = "swap_bytes"
	ToggleMupen     = "is_mupen"
	ToggleMupenOut  = "mupen_out"
)

// ControllerPackKeys lists the per-slot keys in slot order.
var ControllerPackKeys = [...]string{
	KeyControllerPack1,
	KeyControllerPack2,
	KeyControllerPack3,
	KeyControllerPack4,
}

// File is a named input buffer.
type File struct {
	Name string
	Data []byte
}

// FileSource resolves an input key to a file. A missing input is reported as
// (nil, nil); a non-nil error aborts the conversion.
type FileSource interface {
	Fetch(ctx context.Context, key string) (*File, error)
}

// ToggleSource resolves a flag key. Unknown keys are false.
type ToggleSource interface {
	Toggle(key string) bool
}

// DownloadSink receives produced files. data aliases converter memory and
// is only valid for the duration of the call.
type DownloadSink interface {
	Download(ctx context.Context, data []byte, name string) error
}
