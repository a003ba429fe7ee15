package main

// ScrubExports handles the export directory. An executable exporting
// nothing gets the whole entry cleared (linkers sometimes emit an empty
// husk); a real export table keeps its function data but loses the
// timestamp, version pair and module-name link, which identify the build.
type ScrubExports struct{}

func (ScrubExports) Name() string { return "exports" }

func (ScrubExports) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	rva, size, err := layout.ReadDataDir(img, dirExport)
	if err != nil {
		return moduleFailf("exports", "directory entry unreadable: %v", err)
	}
	if rva == 0 || size == 0 {
		return nil
	}
	off, ok := RVAToOffset(mc.Sections, rva)
	if !ok {
		return nil
	}

	numFuncs, err := img.ReadU32(int(off) + 20)
	if err != nil {
		return moduleFailf("exports", "export directory truncated: %v", err)
	}

	chars, _ := img.ReadU16(layout.NTHeaderOffset + coffCharacteristics)
	isEXE := chars&imageFileDLL == 0

	if isEXE && numFuncs == 0 {
		if err := img.Zero(int(off), 40); err != nil {
			return moduleFailf("exports", "husk wipe failed: %v", err)
		}
		if err := layout.ClearDataDir(img, dirExport); err != nil {
			return moduleFailf("exports", "directory clear failed: %v", err)
		}
		return nil
	}

	// Keep the table, drop its provenance: stamp, versions, name RVA.
	if err := img.Zero(int(off)+4, 8); err != nil {
		return moduleFailf("exports", "metadata wipe failed: %v", err)
	}
	nameRVA, err := img.ReadU32(int(off) + 12)
	if err == nil && nameRVA != 0 {
		if nameOff, ok := RVAToOffset(mc.Sections, nameRVA); ok {
			zeroCString(img, int(nameOff))
		}
	}
	return nil
}

// zeroCString blanks a NUL-terminated string in place.
func zeroCString(img *RawImage, off int) {
	buf := img.Bytes()
	for i := off; i < len(buf) && buf[i] != 0; i++ {
		buf[i] = 0
	}
}
