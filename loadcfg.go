package main

// ScrubLoadConfig blanks the non-critical load configuration fields:
// TimeDateStamp and the version pair. The structure's control-flow-guard
// and security-cookie members stay untouched, the loader consumes those.
type ScrubLoadConfig struct{}

func (ScrubLoadConfig) Name() string { return "load-config" }

func (ScrubLoadConfig) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	rva, size, err := layout.ReadDataDir(img, dirLoadConfig)
	if err != nil {
		return moduleFailf("load-config", "directory entry unreadable: %v", err)
	}
	if rva == 0 || size == 0 {
		return nil
	}
	if size < 12 {
		return nil // too small to hold the fields we target
	}
	off, ok := RVAToOffset(mc.Sections, rva)
	if !ok {
		return nil
	}
	if err := img.Zero(int(off)+4, 8); err != nil { // stamp + both versions
		return moduleFailf("load-config", "structure write failed: %v", err)
	}
	return nil
}
