package main

// ClearCertificate drops the Authenticode reference: the security data
// directory. Its first half is a plain file offset, not an RVA; the
// certificate blob lives outside the mapped image, usually as the file's
// overlay. A mutated image fails signature validation anyway, so the
// pointer is only dead weight that dates and identifies the signer.
//
// The actual blob is left for TrimOverlay, which runs right after and
// knows whether the trailing bytes are safe to drop.
type ClearCertificate struct{}

func (ClearCertificate) Name() string { return "certificate" }

func (ClearCertificate) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	off, size, err := layout.ReadDataDir(img, dirSecurity)
	if err != nil {
		return moduleFailf("certificate", "directory entry unreadable: %v", err)
	}
	if off == 0 || size == 0 {
		return nil
	}
	if err := layout.ClearDataDir(img, dirSecurity); err != nil {
		return moduleFailf("certificate", "directory clear failed: %v", err)
	}
	logDetail("certificate", "dropped signature reference (%d bytes at 0x%X)", size, off)
	return nil
}
