package main

// StripDebugInfo removes the debug directory and the records it points at:
// the IMAGE_DEBUG_DIRECTORY entries, their CodeView payloads (RSDS/NB10
// blobs carrying the PDB GUID and path) and any trailing ".pdb" path
// strings reachable by pattern scan. Debuggers lose the symbol link;
// execution is untouched.
type StripDebugInfo struct{}

func (StripDebugInfo) Name() string { return "debug-dir" }

const debugRecordSize = 28 // sizeof(IMAGE_DEBUG_DIRECTORY)

func (StripDebugInfo) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	rva, size, err := layout.ReadDataDir(img, dirDebug)
	if err != nil {
		return moduleFailf("debug-dir", "debug entry unreadable: %v", err)
	}
	if rva != 0 && size != 0 {
		if off, ok := RVAToOffset(mc.Sections, rva); ok {
			zeroDebugRecords(img, mc.Sections, int(off), int(size))
		}
		if err := layout.ClearDataDir(img, dirDebug); err != nil {
			return moduleFailf("debug-dir", "directory clear failed: %v", err)
		}
	}

	// Whole NUL-terminated PDB path strings anywhere in the file.
	if n, err := replaceAll(img, []byte(".pdb\x00"), []byte("\x00\x00\x00\x00\x00")); err == nil && n > 0 {
		logDetail("debug-dir", "blanked %d pdb path tail(s)", n)
	}
	return nil
}

// zeroDebugRecords wipes each record's payload before the record itself,
// so a mid-operation fault never leaves a record pointing at live data.
func zeroDebugRecords(img *RawImage, sections []SectionDescriptor, off, size int) {
	for rec := off; rec+debugRecordSize <= off+size; rec += debugRecordSize {
		dataSize, err1 := img.ReadU32(rec + 16)
		dataPtr, err2 := img.ReadU32(rec + 24) // PointerToRawData: file offset
		if err1 == nil && err2 == nil && dataPtr != 0 && dataSize != 0 {
			_ = img.Zero(int(dataPtr), int(dataSize))
		}
		_ = img.Zero(rec, debugRecordSize)
	}
}
