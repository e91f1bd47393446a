// Package convert merges per-device save files into an SRM container and
// splits containers back into per-device files.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/srmkit/internal/logger"
	"github.com/samcharles93/srmkit/pkg/srm"
)

// User-facing outcome messages.
const (
	MsgNoInputFiles = "No input file(s)"
	MsgNoInputFile  = "No input file"
	MsgEmptySRM     = "Empty SRM"
)

// Output extensions.
const (
	ExtSRM      = ".srm"
	ExtEeprom   = ".eep"
	ExtSram     = ".sra"
	ExtFlashRam = ".fla"
)

// ControllerPackExts are the per-slot output extensions. Slot 0 shares its
// extension with the combined image.
var ControllerPackExts = [srm.ControllerPackSlots]string{".mpk", ".mpk2", ".mpk3", ".mpk4"}

var ErrNoSink = errors.New("convert: no download sink")

// Result carries the outcome of one conversion. An empty Message is success.
type Result struct {
	Message string `json:"message,omitempty"`
}

// OK reports whether the conversion produced its outputs.
func (r Result) OK() bool { return r.Message == "" }

// Converter drives merge and split against its collaborators. It holds no
// state between calls.
type Converter struct {
	Files   FileSource
	Toggles ToggleSource
	Sink    DownloadSink
}

func (cv *Converter) check() error {
	if cv.Sink == nil {
		return ErrNoSink
	}
	if cv.Files == nil {
		return errors.New("convert: no file source")
	}
	return nil
}

func (cv *Converter) toggle(key string) bool {
	return cv.Toggles != nil && cv.Toggles.Toggle(key)
}

// Merge builds one SRM container from the battery file and controller pack
// inputs.
//
// The battery file is routed by length: up to 2 KiB is eeprom, up to 32 KiB
// sram, up to 128 KiB flashram; other lengths are dropped. Controller pack
// slots are written first and the combined pack (read only when is_mupen is
// set) is written last, so the combined pack wins when both are given.
func (cv *Converter) Merge(ctx context.Context) (Result, error) {
	if err := cv.check(); err != nil {
		return Result{}, err
	}
	log := logger.FromContext(ctx).With("op", "merge")

	buf := srm.New()
	var (
		name  string
		found bool
	)
	remember := func(f *File) {
		if !found {
			name, found = f.Name, true
		}
	}

	battery, err := cv.Files.Fetch(ctx, KeyBatteryFile)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", KeyBatteryFile, err)
	}
	if battery != nil {
		remember(battery)
		if seg, ok := batterySegment(buf, len(battery.Data)); ok {
			if _, err := seg.CopyFrom(battery.Data); err != nil {
				return Result{}, err
			}
			log.Debug("battery routed", "file", battery.Name, "segment", seg.Kind().String(), "size", len(battery.Data))
		} else {
			log.Warn("battery file size not recognised; ignored", "file", battery.Name, "size", len(battery.Data))
		}
	}

	packs := buf.ControllerPacks()
	for i, key := range ControllerPackKeys {
		f, err := cv.Files.Fetch(ctx, key)
		if err != nil {
			return Result{}, fmt.Errorf("read %s: %w", key, err)
		}
		if f == nil {
			continue
		}
		remember(f)
		if _, err := packs[i].CopyFrom(f.Data); err != nil {
			return Result{}, fmt.Errorf("%s %q: %w", key, f.Name, err)
		}
		log.Debug("controller pack loaded", "slot", i+1, "file", f.Name)
	}

	if cv.toggle(ToggleMupen) {
		f, err := cv.Files.Fetch(ctx, KeyCombinedController)
		if err != nil {
			return Result{}, fmt.Errorf("read %s: %w", KeyCombinedController, err)
		}
		if f != nil {
			remember(f)
			if _, err := buf.FullControllerPack().CopyFrom(f.Data); err != nil {
				return Result{}, fmt.Errorf("%s %q: %w", KeyCombinedController, f.Name, err)
			}
			log.Debug("combined controller pack loaded", "file", f.Name)
		}
	}

	if cv.toggle(ToggleSwapBytes) {
		buf.Eeprom().Swap()
		buf.FlashRam().Swap()
	}

	if !found {
		return Result{Message: MsgNoInputFiles}, nil
	}
	out := WithExtension(name, ExtSRM)
	if err := cv.Sink.Download(ctx, buf.Bytes(), out); err != nil {
		return Result{}, fmt.Errorf("emit %s: %w", out, err)
	}
	log.Info("container written", "file", out)
	return Result{}, nil
}

// batterySegment picks the container segment for a battery file of n bytes.
func batterySegment(c *srm.Container, n int) (srm.Segment, bool) {
	switch {
	case n >= 1 && n <= srm.EepromSize:
		return c.Eeprom(), true
	case n > srm.EepromSize && n <= srm.SramSize:
		return c.Sram(), true
	case n > srm.SramSize && n <= srm.FlashRamSize:
		return c.FlashRam(), true
	default:
		return srm.Segment{}, false
	}
}

// Split extracts per-device files from one SRM container. At most one
// battery file is emitted, checked in the order eeprom, sram, flashram.
// Controller packs are emitted per non-empty slot, or as one combined image
// when mupen_out is set.
func (cv *Converter) Split(ctx context.Context) (Result, error) {
	if err := cv.check(); err != nil {
		return Result{}, err
	}
	log := logger.FromContext(ctx).With("op", "split")

	in, err := cv.Files.Fetch(ctx, KeySrmFile)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", KeySrmFile, err)
	}
	if in == nil {
		return Result{Message: MsgNoInputFile}, nil
	}

	buf, err := srm.FromBytes(in.Data)
	if err != nil {
		log.Warn("container has unexpected size", "file", in.Name, "size", len(in.Data), "err", err)
	} else if len(in.Data) > srm.ContainerSize {
		log.Warn("container has trailing bytes; ignored", "file", in.Name, "size", len(in.Data))
	}
	if buf.IsEmpty() {
		return Result{Message: MsgEmptySRM}, nil
	}

	swap := cv.toggle(ToggleSwapBytes)
	emit := func(seg srm.Segment, ext string) error {
		out := WithExtension(in.Name, ext)
		if err := cv.Sink.Download(ctx, seg.Bytes(), out); err != nil {
			return fmt.Errorf("emit %s: %w", out, err)
		}
		log.Info("segment written", "segment", seg.Kind().String(), "file", out, "size", seg.Len())
		return nil
	}

	switch eep, sra, fla := buf.Eeprom(), buf.Sram(), buf.FlashRam(); {
	case !eep.IsEmpty():
		if swap {
			eep.Swap()
		}
		if err := emit(eep.As4K(), ExtEeprom); err != nil {
			return Result{}, err
		}
	case !sra.IsEmpty():
		if err := emit(sra, ExtSram); err != nil {
			return Result{}, err
		}
	case !fla.IsEmpty():
		if swap {
			fla.Swap()
		}
		if err := emit(fla, ExtFlashRam); err != nil {
			return Result{}, err
		}
	}

	if cv.toggle(ToggleMupenOut) {
		if full := buf.FullControllerPack(); !full.IsEmpty() {
			if err := emit(full, ControllerPackExts[0]); err != nil {
				return Result{}, err
			}
		}
		return Result{}, nil
	}
	for i, cp := range buf.ControllerPacks() {
		if cp.IsEmpty() {
			continue
		}
		if err := emit(cp, ControllerPackExts[i]); err != nil {
			return Result{}, err
		}
	}
	return Result{}, nil
}

// WithExtension replaces everything from the last '.' of name with ext, or
// appends ext when name has no '.'.
func WithExtension(name, ext string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		i = len(name)
	}
	return name[:i] + ext
}
