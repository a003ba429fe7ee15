package main

// WipeDosStub zeroes everything between the DOS header and the NT header:
// the "This program cannot be run in DOS mode" stub and whatever else the
// linker parked there. The region is dead weight once Windows is loading
// the file, and its exact bytes are a strong toolchain signature.
type WipeDosStub struct{}

func (WipeDosStub) Name() string { return "dos-stub" }

func (WipeDosStub) Apply(mc *MutationContext) error {
	const stubStart = 0x40
	end := mc.Layout.NTHeaderOffset
	if end <= stubStart {
		return nil // headers are packed tight, no stub at all
	}
	if err := mc.Img.Zero(stubStart, end-stubStart); err != nil {
		return moduleFailf("dos-stub", "stub range invalid: %v", err)
	}
	return nil
}
