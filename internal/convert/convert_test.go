package convert

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/samcharles93/srmkit/internal/logger"
	"github.com/samcharles93/srmkit/pkg/srm"
)

type memSource struct {
	files  map[string]*File
	errKey string
	asked  []string
}

func (m *memSource) Fetch(_ context.Context, key string) (*File, error) {
	m.asked = append(m.asked, key)
	if key == m.errKey {
		return nil, errors.New("disk on fire")
	}
	return m.files[key], nil
}

func quietCtx() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func newConverter(files map[string]*File, toggles Toggles) (*Converter, *MemorySink) {
	sink := &MemorySink{}
	return &Converter{Files: &memSource{files: files}, Toggles: toggles, Sink: sink}, sink
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%251)
		if b[i] == 0xff {
			b[i] = 0
		}
	}
	return b
}

// usedPack returns a controller pack image with one allocated note entry.
func usedPack(tag byte) []byte {
	img := srm.BlankControllerPack()
	img[256+10] = 0x00
	img[256+11] = 0x05
	img[0x1000] = tag
	return img
}

func TestMergeEepromOnly(t *testing.T) {
	t.Parallel()

	eep := pattern(512, 1)
	cv, sink := newConverter(map[string]*File{
		KeyBatteryFile: {Name: "mario.eep", Data: eep},
	}, nil)

	res, err := cv.Merge(quietCtx())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected message %q", res.Message)
	}
	files := sink.Files()
	if len(files) != 1 {
		t.Fatalf("downloads: got %d want 1", len(files))
	}
	if files[0].Name != "mario.srm" {
		t.Fatalf("name: got %q", files[0].Name)
	}
	out := files[0].Data
	if len(out) != srm.ContainerSize {
		t.Fatalf("size: got %d", len(out))
	}
	if !bytes.Equal(out[:512], eep) {
		t.Fatalf("eeprom prefix mismatch")
	}
	if !bytes.Equal(out[512:srm.EepromSize], bytes.Repeat([]byte{0xff}, srm.EepromSize-512)) {
		t.Fatalf("eeprom tail should stay erased")
	}
	blank := srm.New().Bytes()
	if !bytes.Equal(out[srm.EepromSize:], blank[srm.EepromSize:]) {
		t.Fatalf("other segments should keep their defaults")
	}
}

func TestMergeNoInputs(t *testing.T) {
	t.Parallel()

	cv, sink := newConverter(nil, Toggles{ToggleSwapBytes: true})
	res, err := cv.Merge(quietCtx())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Message != MsgNoInputFiles {
		t.Fatalf("message: got %q", res.Message)
	}
	if n := len(sink.Files()); n != 0 {
		t.Fatalf("downloads: got %d want 0", n)
	}
}

func TestMergeUnnamedInputStillEmits(t *testing.T) {
	t.Parallel()

	cv, sink := newConverter(map[string]*File{
		KeyBatteryFile: {Name: "", Data: pattern(512, 9)},
	}, nil)
	res, err := cv.Merge(quietCtx())
	if err != nil || !res.OK() {
		t.Fatalf("merge: res=%+v err=%v", res, err)
	}
	files := sink.Files()
	if len(files) != 1 || files[0].Name != ExtSRM {
		t.Fatalf("expected one %q download, got %+v", ExtSRM, names(files))
	}
}

func TestMergeBatteryRouting(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		size int
		seg  func(c *srm.Container) srm.Segment
	}{
		{"1 byte eeprom", 1, (*srm.Container).Eeprom},
		{"16k eeprom", 2048, (*srm.Container).Eeprom},
		{"smallest sram", 2049, (*srm.Container).Sram},
		{"sram", 32768, (*srm.Container).Sram},
		{"smallest flashram", 32769, (*srm.Container).FlashRam},
		{"flashram", 131072, (*srm.Container).FlashRam},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data := pattern(tc.size, 3)
			cv, sink := newConverter(map[string]*File{KeyBatteryFile: {Name: "x.bin", Data: data}}, nil)
			if _, err := cv.Merge(quietCtx()); err != nil {
				t.Fatalf("merge: %v", err)
			}
			c, err := srm.FromBytes(sink.Files()[0].Data)
			if err != nil {
				t.Fatalf("from bytes: %v", err)
			}
			if got := tc.seg(c).Bytes()[:tc.size]; !bytes.Equal(got, data) {
				t.Fatalf("battery not routed to %s", tc.seg(c).Kind())
			}
		})
	}
}

func TestMergeDropsUnroutableBattery(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, srm.FlashRamSize + 1} {
		cv, sink := newConverter(map[string]*File{KeyBatteryFile: {Name: "odd.sav", Data: pattern(size, 9)}}, nil)
		res, err := cv.Merge(quietCtx())
		if err != nil {
			t.Fatalf("size %d: merge: %v", size, err)
		}
		if !res.OK() {
			t.Fatalf("size %d: unexpected message %q", size, res.Message)
		}
		files := sink.Files()
		if len(files) != 1 || files[0].Name != "odd.srm" {
			t.Fatalf("size %d: expected odd.srm, got %+v", size, files)
		}
		if !bytes.Equal(files[0].Data, srm.New().Bytes()) {
			t.Fatalf("size %d: dropped battery should leave a blank container", size)
		}
	}
}

func TestMergeControllerPacksAndNaming(t *testing.T) {
	t.Parallel()

	p2, p4 := usedPack(2), usedPack(4)
	cv, sink := newConverter(map[string]*File{
		KeyControllerPack2: {Name: "zelda.mpk2", Data: p2},
		KeyControllerPack4: {Name: "other.mpk4", Data: p4},
	}, nil)
	if _, err := cv.Merge(quietCtx()); err != nil {
		t.Fatalf("merge: %v", err)
	}
	files := sink.Files()
	if len(files) != 1 || files[0].Name != "zelda.srm" {
		t.Fatalf("expected zelda.srm, got %+v", files)
	}
	c, _ := srm.FromBytes(files[0].Data)
	packs := c.ControllerPacks()
	if !bytes.Equal(packs[1].Bytes(), p2) || !bytes.Equal(packs[3].Bytes(), p4) {
		t.Fatalf("controller packs not placed in their slots")
	}
	if !packs[0].IsEmpty() || !packs[2].IsEmpty() {
		t.Fatalf("untouched slots should stay blank")
	}
}

func TestMergeCombinedPackWins(t *testing.T) {
	t.Parallel()

	combined := make([]byte, srm.ControllerPackRegionSize)
	for i := 0; i < srm.ControllerPackSlots; i++ {
		copy(combined[i*srm.ControllerPackSize:], usedPack(byte(0x40+i)))
	}
	files := map[string]*File{
		KeyControllerPack1:    {Name: "slot.mpk", Data: usedPack(0x11)},
		KeyCombinedController: {Name: "combo.mpk", Data: combined},
	}

	t.Run("ignored without is_mupen", func(t *testing.T) {
		t.Parallel()
		src := &memSource{files: files}
		sink := &MemorySink{}
		cv := &Converter{Files: src, Toggles: Toggles{}, Sink: sink}
		if _, err := cv.Merge(quietCtx()); err != nil {
			t.Fatalf("merge: %v", err)
		}
		for _, k := range src.asked {
			if k == KeyCombinedController {
				t.Fatalf("combined pack fetched while is_mupen is off")
			}
		}
		c, _ := srm.FromBytes(sink.Files()[0].Data)
		if got := c.ControllerPacks()[0].Bytes()[0x1000]; got != 0x11 {
			t.Fatalf("slot 1 should hold the per-slot file, tag %#x", got)
		}
	})

	t.Run("overrides slots with is_mupen", func(t *testing.T) {
		t.Parallel()
		cv, sink := newConverter(files, Toggles{ToggleMupen: true})
		if _, err := cv.Merge(quietCtx()); err != nil {
			t.Fatalf("merge: %v", err)
		}
		out := sink.Files()[0]
		if out.Name != "slot.srm" {
			t.Fatalf("first input name should win, got %q", out.Name)
		}
		c, _ := srm.FromBytes(out.Data)
		if !bytes.Equal(c.FullControllerPack().Bytes(), combined) {
			t.Fatalf("combined pack should overwrite all slots")
		}
	})
}

func TestMergeRejectsOversizedPack(t *testing.T) {
	t.Parallel()

	cv, sink := newConverter(map[string]*File{
		KeyControllerPack3: {Name: "big.mpk", Data: make([]byte, srm.ControllerPackSize+1)},
	}, nil)
	_, err := cv.Merge(quietCtx())
	if !errors.Is(err, srm.ErrSegmentOverflow) {
		t.Fatalf("expected ErrSegmentOverflow, got %v", err)
	}
	if len(sink.Files()) != 0 {
		t.Fatalf("nothing should be emitted on error")
	}
}

func TestMergeSwapsEepromAndFlashOnly(t *testing.T) {
	t.Parallel()

	fla := pattern(srm.FlashRamSize, 5)
	cv, sink := newConverter(map[string]*File{KeyBatteryFile: {Name: "f.fla", Data: fla}}, Toggles{ToggleSwapBytes: true})
	if _, err := cv.Merge(quietCtx()); err != nil {
		t.Fatalf("merge: %v", err)
	}
	c, _ := srm.FromBytes(sink.Files()[0].Data)
	want := bytes.Clone(fla)
	srm.WordSwap(want)
	if !bytes.Equal(c.FlashRam().Bytes(), want) {
		t.Fatalf("flashram should be word swapped")
	}
	blank := srm.New()
	if !bytes.Equal(c.FullControllerPack().Bytes(), blank.FullControllerPack().Bytes()) {
		t.Fatalf("controller packs must never be swapped")
	}
}

func TestMergeFetchErrorAborts(t *testing.T) {
	t.Parallel()

	sink := &MemorySink{}
	cv := &Converter{
		Files: &memSource{
			files:  map[string]*File{KeyBatteryFile: {Name: "a.eep", Data: pattern(512, 1)}},
			errKey: KeyControllerPack2,
		},
		Sink: sink,
	}
	if _, err := cv.Merge(quietCtx()); err == nil {
		t.Fatalf("expected fetch error")
	}
	if len(sink.Files()) != 0 {
		t.Fatalf("nothing should be emitted after an I/O failure")
	}
}

func TestConverterRequiresSink(t *testing.T) {
	t.Parallel()

	cv := &Converter{Files: &memSource{}}
	if _, err := cv.Split(quietCtx()); !errors.Is(err, ErrNoSink) {
		t.Fatalf("expected ErrNoSink, got %v", err)
	}
}

func TestSplitEmpty(t *testing.T) {
	t.Parallel()

	cv, sink := newConverter(map[string]*File{KeySrmFile: {Name: "blank.srm", Data: srm.New().Bytes()}}, Toggles{ToggleSwapBytes: true})
	res, err := cv.Split(quietCtx())
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if res.Message != MsgEmptySRM {
		t.Fatalf("message: got %q", res.Message)
	}
	if len(sink.Files()) != 0 {
		t.Fatalf("empty container should not emit anything")
	}
}

func TestSplitNoInput(t *testing.T) {
	t.Parallel()

	cv, _ := newConverter(nil, nil)
	res, err := cv.Split(quietCtx())
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if res.Message != MsgNoInputFile {
		t.Fatalf("message: got %q", res.Message)
	}
}

func TestSplitFlashRamSwapped(t *testing.T) {
	t.Parallel()

	c := srm.New()
	copy(c.FlashRam().Bytes(), pattern(srm.FlashRamSize, 7))
	want := bytes.Clone(c.FlashRam().Bytes())
	srm.WordSwap(want)

	cv, sink := newConverter(map[string]*File{KeySrmFile: {Name: "game.srm", Data: c.Bytes()}}, Toggles{ToggleSwapBytes: true})
	res, err := cv.Split(quietCtx())
	if err != nil || !res.OK() {
		t.Fatalf("split: res=%+v err=%v", res, err)
	}
	files := sink.Files()
	if len(files) != 1 {
		t.Fatalf("downloads: got %d want 1", len(files))
	}
	if files[0].Name != "game.fla" {
		t.Fatalf("name: got %q", files[0].Name)
	}
	if !bytes.Equal(files[0].Data, want) {
		t.Fatalf("flashram content mismatch")
	}
}

func TestSplitBatteryPriority(t *testing.T) {
	t.Parallel()

	c := srm.New()
	c.Sram().Bytes()[0] = 1
	c.FlashRam().Bytes()[0] = 1
	cv, sink := newConverter(map[string]*File{KeySrmFile: {Name: "g.srm", Data: c.Bytes()}}, nil)
	if _, err := cv.Split(quietCtx()); err != nil {
		t.Fatalf("split: %v", err)
	}
	files := sink.Files()
	if len(files) != 1 || files[0].Name != "g.sra" || len(files[0].Data) != srm.SramSize {
		t.Fatalf("expected only g.sra, got %d files", len(files))
	}
}

func TestSplitControllerPacks(t *testing.T) {
	t.Parallel()

	c := srm.New()
	cp, _ := c.ControllerPack(2)
	copy(cp.Bytes(), usedPack(0x33))

	t.Run("per slot", func(t *testing.T) {
		t.Parallel()
		cv, sink := newConverter(map[string]*File{KeySrmFile: {Name: "pak.srm", Data: c.Bytes()}}, nil)
		res, err := cv.Split(quietCtx())
		if err != nil || !res.OK() {
			t.Fatalf("split: res=%+v err=%v", res, err)
		}
		files := sink.Files()
		if len(files) != 1 || files[0].Name != "pak.mpk3" {
			t.Fatalf("expected only pak.mpk3, got %+v", names(files))
		}
		if !bytes.Equal(files[0].Data, usedPack(0x33)) {
			t.Fatalf("slot content mismatch")
		}
	})

	t.Run("combined skipped when slot 1 is free", func(t *testing.T) {
		t.Parallel()
		cv, sink := newConverter(map[string]*File{KeySrmFile: {Name: "pak.srm", Data: c.Bytes()}}, Toggles{ToggleMupenOut: true})
		res, err := cv.Split(quietCtx())
		if err != nil || !res.OK() {
			t.Fatalf("split: res=%+v err=%v", res, err)
		}
		if files := sink.Files(); len(files) != 0 {
			t.Fatalf("expected no outputs, got %+v", names(files))
		}
	})

	t.Run("combined", func(t *testing.T) {
		t.Parallel()
		both := srm.New()
		for _, slot := range []int{0, 2} {
			seg, _ := both.ControllerPack(slot)
			copy(seg.Bytes(), usedPack(byte(0x40+slot)))
		}
		cv, sink := newConverter(map[string]*File{KeySrmFile: {Name: "pak.srm", Data: both.Bytes()}}, Toggles{ToggleMupenOut: true})
		if _, err := cv.Split(quietCtx()); err != nil {
			t.Fatalf("split: %v", err)
		}
		files := sink.Files()
		if len(files) != 1 || files[0].Name != "pak.mpk" {
			t.Fatalf("expected only pak.mpk, got %+v", names(files))
		}
		if !bytes.Equal(files[0].Data, both.FullControllerPack().Bytes()) {
			t.Fatalf("combined content mismatch")
		}
	})
}

func TestSplitShortContainerStillSplits(t *testing.T) {
	t.Parallel()

	cv, sink := newConverter(map[string]*File{KeySrmFile: {Name: "short.srm", Data: pattern(16, 1)}}, nil)
	res, err := cv.Split(quietCtx())
	if err != nil || !res.OK() {
		t.Fatalf("split: res=%+v err=%v", res, err)
	}
	files := sink.Files()
	if len(files) != 1 || files[0].Name != "short.eep" || len(files[0].Data) != srm.Eeprom4KSize {
		t.Fatalf("expected a 4K eeprom, got %+v", names(files))
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		battery   []byte
		swapIn    bool
		swapOut   bool
		wantName  string
		wantBytes func(in []byte) []byte
	}{
		{"16k eeprom", pattern(srm.EepromSize, 1), false, false, "s.eep", bytes.Clone},
		{"16k eeprom swapped both ways", pattern(srm.EepromSize, 1), true, true, "s.eep", bytes.Clone},
		{"4k eeprom", append(pattern(512, 2), bytes.Repeat([]byte{0xff}, srm.EepromSize-512)...), false, false, "s.eep",
			func(in []byte) []byte { return in[:512] }},
		{"sram", pattern(srm.SramSize, 3), true, true, "s.sra", bytes.Clone},
		{"flashram", pattern(srm.FlashRamSize, 4), true, true, "s.fla", bytes.Clone},
		{"flashram swapped once", pattern(srm.FlashRamSize, 4), true, false, "s.fla",
			swapped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pack := usedPack(0x77)
			mcv, msink := newConverter(map[string]*File{
				KeyBatteryFile:     {Name: "s.bin", Data: tc.battery},
				KeyControllerPack1: {Name: "s.mpk", Data: pack},
			}, Toggles{ToggleSwapBytes: tc.swapIn})
			if _, err := mcv.Merge(quietCtx()); err != nil {
				t.Fatalf("merge: %v", err)
			}
			merged := msink.Files()[0]

			scv, ssink := newConverter(map[string]*File{KeySrmFile: &merged}, Toggles{ToggleSwapBytes: tc.swapOut})
			if _, err := scv.Split(quietCtx()); err != nil {
				t.Fatalf("split: %v", err)
			}
			files := ssink.Files()
			if len(files) != 2 {
				t.Fatalf("expected battery + pack, got %+v", names(files))
			}
			if files[0].Name != tc.wantName {
				t.Fatalf("battery name: got %q want %q", files[0].Name, tc.wantName)
			}
			if !bytes.Equal(files[0].Data, tc.wantBytes(tc.battery)) {
				t.Fatalf("battery bytes did not survive the round trip")
			}
			if files[1].Name != "s.mpk" || !bytes.Equal(files[1].Data, pack) {
				t.Fatalf("controller pack did not survive the round trip")
			}
		})
	}
}

func TestWithExtension(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"foo.bar":      "foo.srm",
		"foo":          "foo.srm",
		"a.b.c":        "a.b.srm",
		".hidden":      ".srm",
		"trailing.":    "trailing.srm",
		"Mario 64.z64": "Mario 64.srm",
	}
	for in, want := range cases {
		if got := WithExtension(in, ".srm"); got != want {
			t.Fatalf("WithExtension(%q): got %q want %q", in, got, want)
		}
	}
}

func swapped(in []byte) []byte {
	out := bytes.Clone(in)
	srm.WordSwap(out)
	return out
}

func names(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}
