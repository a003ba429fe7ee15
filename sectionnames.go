package main

// WipeSectionNames zeroes all eight name bytes of every section record.
// The loader addresses sections purely by table position; names exist for
// humans and for scanners that fingerprint packers by them. This mutator
// is pinned to the end of the pipeline; every earlier step that needs a
// particular section finds it by name.
type WipeSectionNames struct{}

func (WipeSectionNames) Name() string { return "section-names" }

func (WipeSectionNames) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout
	for i := 0; i < layout.SectionCount; i++ {
		rec := layout.SectionTableOffset + i*sectionRecordSize
		if err := img.Zero(rec, sectionNameSize); err != nil {
			return moduleFailf("section-names", "record %d out of range: %v", i, err)
		}
	}
	return nil
}
