package main

// StripRelocations retires the base relocation table on executables. An
// EXE that declares relocations stripped simply loads at its preferred
// base; DLLs genuinely need the table (they rarely get their preferred
// base), so they are never touched.
type StripRelocations struct{}

func (StripRelocations) Name() string { return "relocations" }

func (StripRelocations) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	chars, err := img.ReadU16(layout.NTHeaderOffset + coffCharacteristics)
	if err != nil {
		return moduleFailf("relocations", "COFF characteristics unreadable: %v", err)
	}
	if chars&imageFileDLL != 0 {
		return nil
	}

	rva, size, err := layout.ReadDataDir(img, dirBaseReloc)
	if err != nil {
		return moduleFailf("relocations", "directory entry unreadable: %v", err)
	}
	if rva == 0 || size == 0 {
		return nil
	}

	if err := layout.ClearDataDir(img, dirBaseReloc); err != nil {
		return moduleFailf("relocations", "directory clear failed: %v", err)
	}
	if err := img.WriteU16(layout.NTHeaderOffset+coffCharacteristics, chars|imageFileRelocsStripped); err != nil {
		return moduleFailf("relocations", "characteristics write failed: %v", err)
	}

	dllCharsOff := layout.OptionalHeaderOffset + optDllCharacteristicsPE32
	if layout.Is64Bit {
		dllCharsOff = layout.OptionalHeaderOffset + optDllCharacteristicsPE32Plus
	}
	dllChars, err := img.ReadU16(dllCharsOff)
	if err != nil {
		return moduleFailf("relocations", "DllCharacteristics unreadable: %v", err)
	}
	if err := img.WriteU16(dllCharsOff, dllChars&^dllCharDynamicBase); err != nil {
		return moduleFailf("relocations", "DllCharacteristics write failed: %v", err)
	}
	return nil
}
