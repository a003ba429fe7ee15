package main

import "unicode/utf16"

// ScrubOriginalFilename blanks the value of the "OriginalFilename" entry
// in the VS_VERSION_INFO resource. The key itself and the rest of the
// version block survive (properties dialogs keep working) but the field
// that names the file as the vendor shipped it reads empty. Only the
// matched value bytes are zeroed; the surrounding resource data is shared
// with other entries and must not be disturbed.
type ScrubOriginalFilename struct{}

func (ScrubOriginalFilename) Name() string { return "version-info" }

func (ScrubOriginalFilename) Apply(mc *MutationContext) error {
	img := mc.Img

	sec := sectionByName(mc.Sections, ".rsrc")
	if sec == nil {
		return nil
	}
	lo := int(sec.PointerToRawData)
	size := int(sec.SizeOfRawData)
	if err := img.CheckRange(lo, size); err != nil {
		return nil // resource section not backed by the current buffer
	}

	key := utf16Bytes("OriginalFilename")
	buf := img.Bytes()
	at := findFirst(buf[:lo+size], key, lo)
	if at < 0 {
		return nil
	}

	// The value string starts after the key's NUL and 32-bit padding.
	val := at + len(key) + 2
	val = (val + 3) &^ 3
	for val+1 < lo+size {
		if buf[val] == 0 && buf[val+1] == 0 {
			break // UTF-16 terminator
		}
		buf[val] = 0
		buf[val+1] = 0
		val += 2
	}
	logDetail("version-info", "blanked OriginalFilename value")
	return nil
}

func sectionByName(sections []SectionDescriptor, name string) *SectionDescriptor {
	for i := range sections {
		if sections[i].Name == name {
			return &sections[i]
		}
	}
	return nil
}

func utf16Bytes(s string) []byte {
	codes := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(codes)*2)
	for _, c := range codes {
		out = append(out, byte(c), byte(c>>8))
	}
	return out
}
