package main

// ScrubDosHeader zeroes every DOS header field the Windows loader ignores.
// Only e_magic (offset 0, 2 bytes) and e_lfanew (offset 0x3C, 4 bytes)
// take part in loading; the rest is DOS-era state that only fingerprints
// the linker that produced the file.
type ScrubDosHeader struct{}

func (ScrubDosHeader) Name() string { return "dos-header" }

func (ScrubDosHeader) Apply(mc *MutationContext) error {
	if err := mc.Img.Zero(2, lfanewOffset-2); err != nil {
		return moduleFailf("dos-header", "DOS header out of range: %v", err)
	}
	return nil
}
