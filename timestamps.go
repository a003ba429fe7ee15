package main

// ZeroTimestamps clears every build timestamp the file carries: the COFF
// header stamp plus the stamps inside the export, resource and debug
// structures when those exist. Timestamps date the build environment and
// correlate samples across a corpus; zero is also what reproducible-build
// toolchains emit, so the value is unremarkable.
type ZeroTimestamps struct{}

func (ZeroTimestamps) Name() string { return "timestamps" }

func (ZeroTimestamps) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	if err := img.WriteU32(layout.NTHeaderOffset+coffTimeDateStamp, 0); err != nil {
		return moduleFailf("timestamps", "COFF stamp write failed: %v", err)
	}

	// Directory-resident stamps all sit 4 bytes into their structure.
	for _, dir := range []int{dirExport, dirResource, dirDebug} {
		rva, size, err := layout.ReadDataDir(img, dir)
		if err != nil || rva == 0 || size == 0 {
			continue
		}
		off, ok := RVAToOffset(mc.Sections, rva)
		if !ok {
			continue // virtual-only structure, nothing on disk to stamp
		}
		_ = img.WriteU32(int(off)+4, 0)
	}
	return nil
}
