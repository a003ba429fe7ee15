package main

import (
	"errors"
	"math/rand"
)

// Mutator is the single capability shared by every transformation step.
// Implementations are stateless: everything they need arrives through the
// context, and nothing they learn may be assumed by later steps beyond what
// those steps re-validate themselves.
type Mutator interface {
	Name() string
	Apply(mc *MutationContext) error
}

// MutationContext is the per-run state threaded through every mutator.
// Image length changes under mutators' feet (overlay trim shrinks, fake
// table synthesis grows), so offsets are always re-checked at use.
type MutationContext struct {
	Img      *RawImage
	Layout   *ImageLayout
	Sections []SectionDescriptor
	Rng      *rand.Rand

	// Input path, for mutators that re-read auxiliary file metadata.
	// Passed down explicitly instead of living in process-wide state.
	SourcePath string

	Legacy      bool
	Toolchain   Toolchain
	KeepOverlay bool
}

// Pipeline holds the fixed, hand-ordered mutator sequence. The order
// encodes real dependencies: the entry-point mutator needs the original
// entry bytes, and the section-name wipe runs last because earlier steps
// find their targets by name.
type Pipeline struct {
	steps []Mutator
}

func NewPipeline(steps ...Mutator) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes every step against the shared buffer. A ModuleFailure is
// logged with the failing mutator's identity and the run continues; the
// image stays exactly as the failing step last wrote it. A
// FatalPrecondition aborts the whole run.
func (p *Pipeline) Run(mc *MutationContext) error {
	for _, step := range p.steps {
		err := step.Apply(mc)
		if err == nil {
			logStep(step.Name())
			continue
		}
		if isFatal(err) {
			return err
		}
		var mf *ModuleFailure
		if errors.As(err, &mf) {
			logStepFailure(mf.Mutator, mf.Message)
		} else {
			logStepFailure(step.Name(), err.Error())
		}
	}
	return nil
}

// DefaultPipeline is the production mutation order.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		RejectManaged{},
		MutateEntryPoint{},
		ScrubDosHeader{},
		WipeDosStub{},
		WipeRichHeader{},
		ZeroTimestamps{},
		ZeroChecksum{},
		StripDebugInfo{},
		ScrubLoadConfig{},
		ClearTlsDirectory{},
		StripRelocations{},
		ScrubExports{},
		MangleImportNames{},
		ClearCertificate{},
		TrimOverlay{},
		PlantFakeDebugDirectory{},
		ScrubOriginalFilename{},
		ScrubToolchainMarkers{},
		WipeSectionNames{},
	)
}
