package main

// RejectManaged aborts the run on managed/CLR images. Mutating structural
// metadata under the CLR loader's feet produces assemblies that fail
// verification, so nothing past this point is meaningful for them.
type RejectManaged struct{}

func (RejectManaged) Name() string { return "clr-check" }

func (RejectManaged) Apply(mc *MutationContext) error {
	rva, size, err := mc.Layout.ReadDataDir(mc.Img, dirCOM)
	if err != nil {
		return moduleFailf("clr-check", "COM descriptor entry unreadable: %v", err)
	}
	if rva != 0 && size != 0 {
		return fatalf("managed (CLR) image: COM descriptor directory at RVA 0x%X", rva)
	}
	return nil
}
