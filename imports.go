package main

// MangleImportNames flips random letter case inside imported DLL names.
// The loader's module lookup is case-insensitive, so "KERNEL32.dll" and
// "kErNeL32.DLL" resolve identically, but signature databases keying on
// the exact bytes miss. Function names are never touched: GetProcAddress
// is case-sensitive.
//
// With the legacy flag only well-known system DLLs are mangled; antique
// side-by-side and shim layers choke on unexpected case elsewhere.
type MangleImportNames struct{}

func (MangleImportNames) Name() string { return "imports" }

const importDescriptorSize = 20 // sizeof(IMAGE_IMPORT_DESCRIPTOR)

// legacySafeDLLs are resolved by the loader proper on every Windows
// version back to XP; case games on them are safe even in legacy mode.
var legacySafeDLLs = map[string]bool{
	"kernel32.dll": true,
	"user32.dll":   true,
	"gdi32.dll":    true,
	"advapi32.dll": true,
	"shell32.dll":  true,
	"ole32.dll":    true,
	"ntdll.dll":    true,
}

func (MangleImportNames) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	rva, size, err := layout.ReadDataDir(img, dirImport)
	if err != nil {
		return moduleFailf("imports", "directory entry unreadable: %v", err)
	}
	if rva == 0 || size == 0 {
		return nil
	}
	tableOff, ok := RVAToOffset(mc.Sections, rva)
	if !ok {
		return nil
	}

	mangled := 0
	for desc := int(tableOff); ; desc += importDescriptorSize {
		if err := img.CheckRange(desc, importDescriptorSize); err != nil {
			break
		}
		nameRVA, err := img.ReadU32(desc + 12)
		if err != nil || nameRVA == 0 {
			break // NULL descriptor terminates the table
		}
		nameOff, ok := RVAToOffset(mc.Sections, nameRVA)
		if !ok {
			continue
		}
		if mangleDLLName(mc, int(nameOff)) {
			mangled++
		}
	}
	if mangled > 0 {
		logDetail("imports", "case-mangled %d module name(s)", mangled)
	}
	return nil
}

func mangleDLLName(mc *MutationContext, off int) bool {
	buf := mc.Img.Bytes()
	end := off
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	if end == off || end >= len(buf) {
		return false
	}
	name := buf[off:end]

	if mc.Legacy && !legacySafeDLLs[lowerASCII(string(name))] {
		return false
	}

	changed := false
	for i, c := range name {
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			if mc.Rng.Intn(2) == 0 {
				name[i] = c ^ 0x20
				changed = true
			}
		}
	}
	return changed
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 0x20
		}
	}
	return string(b)
}
