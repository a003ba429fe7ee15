package main

// ZeroChecksum clears the optional header CheckSum. The loader only
// verifies it for drivers and DLLs loaded into protected processes;
// everywhere else a stale checksum is just another hashable constant.
type ZeroChecksum struct{}

func (ZeroChecksum) Name() string { return "checksum" }

func (ZeroChecksum) Apply(mc *MutationContext) error {
	off := mc.Layout.OptionalHeaderOffset + optChecksumOffset
	if err := mc.Img.WriteU32(off, 0); err != nil {
		return moduleFailf("checksum", "checksum field write failed: %v", err)
	}
	return nil
}
