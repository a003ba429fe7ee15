package main

// TrimOverlay shrinks the image: bytes past the last section's raw end are
// not mapped by the loader, and when the certificate table covered them
// they were nothing but the (now unreferenced) signature blob. Overlays
// NOT accounted for by the certificate are kept: installers and some
// packers read their own payload from there at runtime.
type TrimOverlay struct{}

func (TrimOverlay) Name() string { return "overlay" }

func (TrimOverlay) Apply(mc *MutationContext) error {
	if mc.KeepOverlay {
		return nil
	}
	img := mc.Img

	var end uint32
	for i := range mc.Sections {
		if e := mc.Sections[i].RawEnd(); e > end {
			end = e
		}
	}
	if end == 0 || int(end) >= img.Len() {
		return nil // no overlay
	}

	// Re-read the security entry: ClearCertificate zeroed it if (and only
	// if) a signature was present. The pristine values must come from the
	// original file, which is why the source path rides in the context.
	certOff, certSize, err := originalCertRange(mc.SourcePath)
	if err != nil {
		return moduleFailf("overlay", "cannot re-read source metadata: %v", err)
	}
	overlayLen := img.Len() - int(end)
	if certOff != int(end) || certSize != overlayLen {
		logDetail("overlay", "keeping %d unaccounted overlay byte(s)", overlayLen)
		return nil
	}
	if err := img.Truncate(int(end)); err != nil {
		return moduleFailf("overlay", "truncation failed: %v", err)
	}
	logDetail("overlay", "removed %d signature overlay byte(s)", overlayLen)
	return nil
}
