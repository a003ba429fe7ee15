package main

// ClearTlsDirectory drops the TLS data directory entry when the structure
// it points at registers no callbacks. Packers leave such husks behind;
// scanners key on their presence. A live callback list is left alone, and
// an already-empty entry is the silent common case.
type ClearTlsDirectory struct{}

func (ClearTlsDirectory) Name() string { return "tls-dir" }

func (ClearTlsDirectory) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	rva, size, err := layout.ReadDataDir(img, dirTLS)
	if err != nil {
		return moduleFailf("tls-dir", "directory entry unreadable: %v", err)
	}
	if rva == 0 || size == 0 {
		return nil
	}
	off, ok := RVAToOffset(mc.Sections, rva)
	if !ok {
		return nil
	}

	// AddressOfCallBacks is the 4th pointer-sized field.
	ptrSize := 4
	if layout.Is64Bit {
		ptrSize = 8
	}
	cbField := int(off) + 3*ptrSize

	var callbacks uint64
	if layout.Is64Bit {
		callbacks, err = img.ReadU64(cbField)
	} else {
		var v uint32
		v, err = img.ReadU32(cbField)
		callbacks = uint64(v)
	}
	if err != nil {
		return moduleFailf("tls-dir", "TLS structure truncated: %v", err)
	}
	if callbacks != 0 {
		return nil // real callbacks registered, not ours to touch
	}
	if err := layout.ClearDataDir(img, dirTLS); err != nil {
		return moduleFailf("tls-dir", "directory clear failed: %v", err)
	}
	return nil
}
