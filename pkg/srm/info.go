package srm

// SegmentInfo summarises one segment for display.
type SegmentInfo struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
	Empty  bool   `json:"empty"`

	// Eeprom only.
	Is4K *bool `json:"is_4k,omitempty"`
	// Controller packs only.
	ChecksumsValid *bool `json:"checksums_valid,omitempty"`
}

// Info describes a whole container.
type Info struct {
	Size     int           `json:"size"`
	Empty    bool          `json:"empty"`
	Segments []SegmentInfo `json:"segments"`
}

// Describe reports the layout and state of c.
func Describe(c *Container) Info {
	info := Info{Size: len(c.data), Empty: c.IsEmpty()}
	slot := 0
	for _, s := range c.Segments() {
		si := SegmentInfo{
			Name:   s.Kind().String(),
			Kind:   s.Kind().String(),
			Offset: s.Offset(),
			Size:   s.Len(),
			Empty:  s.IsEmpty(),
		}
		switch s.Kind() {
		case KindEeprom:
			is4k := s.Is4K()
			si.Is4K = &is4k
		case KindControllerPack:
			slot++
			si.Name = si.Name + "_" + string(rune('0'+slot))
			valid := ControllerPackChecksumsValid(s.Bytes())
			si.ChecksumsValid = &valid
		}
		info.Segments = append(info.Segments, si)
	}
	return info
}
