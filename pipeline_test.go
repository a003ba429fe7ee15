package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingMutator struct {
	name    string
	applied *[]string
	err     error
}

func (m recordingMutator) Name() string { return m.name }

func (m recordingMutator) Apply(mc *MutationContext) error {
	*m.applied = append(*m.applied, m.name)
	return m.err
}

func TestPipelineIsolatesModuleFailures(t *testing.T) {
	f := newFixture(true)
	f.addSection(".text", 0x100, make([]byte, 0x100), 0x60000020)
	mc := newTestContext(t, f.build(), 1)

	var applied []string
	p := NewPipeline(
		recordingMutator{name: "first", applied: &applied},
		recordingMutator{name: "broken", applied: &applied, err: moduleFailf("broken", "nothing to do")},
		recordingMutator{name: "last", applied: &applied},
	)
	require.NoError(t, p.Run(mc))
	require.Equal(t, []string{"first", "broken", "last"}, applied)
}

func TestPipelineAbortsOnFatal(t *testing.T) {
	f := newFixture(true)
	f.addSection(".text", 0x100, make([]byte, 0x100), 0x60000020)
	mc := newTestContext(t, f.build(), 1)

	var applied []string
	p := NewPipeline(
		recordingMutator{name: "first", applied: &applied},
		recordingMutator{name: "fatal", applied: &applied, err: fatalf("cannot continue")},
		recordingMutator{name: "never", applied: &applied},
	)
	err := p.Run(mc)
	require.Error(t, err)
	require.True(t, isFatal(err))
	require.Equal(t, []string{"first", "fatal"}, applied)
}

func TestManagedImageAbortsRun(t *testing.T) {
	f := newFixture(true)
	f.addSection(".text", 0x100, make([]byte, 0x100), 0x60000020)
	f.setDir(dirCOM, 0x1080, 0x48)
	f.entryRVA = 0x1000
	raw := f.build()
	mc := newTestContext(t, raw, 1)

	before := append([]byte(nil), raw...)
	err := DefaultPipeline().Run(mc)
	require.Error(t, err)
	require.True(t, isFatal(err))
	// The CLR gate runs before any write, so the image is untouched.
	require.Equal(t, before, mc.Img.Bytes())
}

func TestRejectManagedPassesNative(t *testing.T) {
	f := newFixture(false)
	f.addSection(".text", 0x100, make([]byte, 0x100), 0x60000020)
	mc := newTestContext(t, f.build(), 1)
	require.NoError(t, RejectManaged{}.Apply(mc))
}
