package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOutputPath(t *testing.T) {
	require.Equal(t, filepath.Join("dir", "app_mutated.exe"), defaultOutputPath(filepath.Join("dir", "app.exe")))
	require.Equal(t, "tool_mutated", defaultOutputPath("tool"))
}

func TestMutateEndToEnd(t *testing.T) {
	f := newFixture(true)
	text := make([]byte, 0x200)
	copy(text, nonFiller(0x20))
	copy(text[0x20:], []byte{0x48, 0x83, 0xEC, 0x28, 0x48, 0x31, 0xC0, 0x48, 0x83, 0xC4, 0x28, 0xC3})
	f.addSection(".text", 0x80, text, 0x60000020)
	f.entryRVA = 0x1020
	raw := f.build()

	dir := t.TempDir()
	input := filepath.Join(dir, "sample.exe")
	output := filepath.Join(dir, "sample.mut.exe")
	require.NoError(t, os.WriteFile(input, raw, 0o644))

	require.NoError(t, Mutate(Options{
		InputPath:  input,
		OutputPath: output,
		Seed:       7,
	}))

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, byte(0), got[len(got)-1], "exactly one appended zero byte")

	img := NewRawImage(got)
	layout, sections, err := ResolveLayout(img)
	require.NoError(t, err)
	require.True(t, layout.Is64Bit)

	// Header metadata is gone.
	sum, err := img.ReadU32(layout.OptionalHeaderOffset + optChecksumOffset)
	require.NoError(t, err)
	require.Zero(t, sum)
	stamp, err := img.ReadU32(layout.NTHeaderOffset + coffTimeDateStamp)
	require.NoError(t, err)
	require.Zero(t, stamp)
	for _, s := range sections {
		require.Empty(t, s.Name)
	}
	for i := 2; i < lfanewOffset; i++ {
		require.Zero(t, got[i], "DOS header offset 0x%X", i)
	}

	// The entry point still resolves to mapped code.
	epRVA, err := img.ReadU32(layout.OptionalHeaderOffset + optEntryPointOffset)
	require.NoError(t, err)
	_, ok := RVAToOffset(sections, epRVA)
	require.True(t, ok)

	// The absent TLS entry is still an untouched all-zero slot.
	tlsRVA, tlsSize, err := layout.ReadDataDir(img, dirTLS)
	require.NoError(t, err)
	require.Zero(t, tlsRVA)
	require.Zero(t, tlsSize)

	// A decoy debug directory was planted in the slack.
	dbgRVA, dbgSize, err := layout.ReadDataDir(img, dirDebug)
	require.NoError(t, err)
	require.NotZero(t, dbgRVA)
	require.Equal(t, uint32(debugRecordSize), dbgSize)

	// Same seed, same input: the run is reproducible bit for bit.
	output2 := filepath.Join(dir, "sample.mut2.exe")
	require.NoError(t, Mutate(Options{InputPath: input, OutputPath: output2, Seed: 7}))
	got2, err := os.ReadFile(output2)
	require.NoError(t, err)
	require.Equal(t, got, got2)
}

func TestMutateRejectsManagedInput(t *testing.T) {
	f := newFixture(true)
	f.addSection(".text", 0x100, make([]byte, 0x100), 0x60000020)
	f.setDir(dirCOM, 0x1080, 0x48)
	f.entryRVA = 0x1000
	input := writeTempPE(t, f.build())

	err := Mutate(Options{InputPath: input, OutputPath: input + ".out", Seed: 1})
	require.Error(t, err)
	require.True(t, isFatal(err))
	_, statErr := os.Stat(input + ".out")
	require.True(t, os.IsNotExist(statErr), "no output on fatal abort")
}

func TestMutateMissingInput(t *testing.T) {
	err := Mutate(Options{InputPath: filepath.Join(t.TempDir(), "absent.exe"), Seed: 1})
	require.Error(t, err)
}
