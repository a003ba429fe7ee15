package main

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// textFixture builds a one-section image whose .text holds code at codeOff
// preceded by lead bytes, with the entry point aimed at the code.
func textFixture(is64 bool, lead []byte, code []byte) *peFixture {
	f := newFixture(is64)
	data := make([]byte, 0x100)
	copy(data, lead)
	copy(data[len(lead):], code)
	f.addSection(".text", 0x100, data, 0x60000020)
	f.entryRVA = uint32(fixSectAlign + len(lead))
	return f
}

func nonFiller(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xAB
	}
	return b
}

func filler(n int, v byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return b
}

func TestPushadNeverSurvives(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		f := textFixture(false, nonFiller(0x40), []byte{opPushAll, 0xB8, 0x01, 0x00, 0x00, 0x00, 0xC3})
		mc := newTestContext(t, f.build(), seed)
		require.NoError(t, MutateEntryPoint{}.Apply(mc))

		epOff := int(f.placedRaw[0]) + 0x40
		require.NotEqual(t, byte(opPushAll), mc.Img.Bytes()[epOff], "seed %d", seed)

		newRVA, err := mc.Img.ReadU32(mc.Layout.OptionalHeaderOffset + optEntryPointOffset)
		require.NoError(t, err)
		_, ok := RVAToOffset(mc.Sections, newRVA)
		require.True(t, ok, "seed %d: entry RVA 0x%X unmapped", seed, newRVA)
	}
}

// When the removal branch retires pushad behind a nop marker, the entry
// stays advanced past the marker; the slide in step 5 must not collapse
// the removal back into a plain byte substitution.
func TestPushadRemovalKeepsAdvancedEntry(t *testing.T) {
	removalSeen := false
	for seed := int64(1); seed <= 20; seed++ {
		// The branch choice is the mutator's first draw from the seeded
		// source, so a sibling source predicts it.
		removal := newRunSource(seed).Intn(2) == 0

		f := textFixture(false, nonFiller(0x40), []byte{opPushAll, 0xB8, 0x01, 0x00, 0x00, 0x00, 0xC3})
		mc := newTestContext(t, f.build(), seed)
		require.NoError(t, MutateEntryPoint{}.Apply(mc))

		newRVA, err := mc.Img.ReadU32(mc.Layout.OptionalHeaderOffset + optEntryPointOffset)
		require.NoError(t, err)
		epOff := int(f.placedRaw[0]) + 0x40
		if removal {
			removalSeen = true
			require.Equal(t, f.entryRVA+1, newRVA, "seed %d", seed)
			require.Equal(t, byte(opNop), mc.Img.Bytes()[epOff], "seed %d", seed)
		} else {
			require.Equal(t, f.entryRVA, newRVA, "seed %d", seed)
		}
	}
	require.True(t, removalSeen, "no seed exercised the removal branch")
}

func TestPackerPushSequencePermuted(t *testing.T) {
	f := textFixture(true, nonFiller(0x20), []byte{0x53, 0x56, 0x57, 0x55, 0x48, 0x31, 0xC0, 0xC3})
	mc := newTestContext(t, f.build(), 3)
	require.NoError(t, MutateEntryPoint{}.Apply(mc))

	epOff := int(f.placedRaw[0]) + 0x20
	got := append([]byte(nil), mc.Img.Bytes()[epOff:epOff+4]...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Equal(t, []byte{0x53, 0x55, 0x56, 0x57}, got)

	newRVA, err := mc.Img.ReadU32(mc.Layout.OptionalHeaderOffset + optEntryPointOffset)
	require.NoError(t, err)
	require.Equal(t, f.entryRVA, newRVA, "nothing before the entry to shift into")
}

func TestEntryShiftsIntoFillerRun(t *testing.T) {
	code := []byte{0x48, 0xC7, 0xC0, 0x2A, 0x00, 0x00, 0x00, 0xC3}
	f := textFixture(true, filler(0x20, opInt3), code)
	mc := newTestContext(t, f.build(), 5)
	require.NoError(t, MutateEntryPoint{}.Apply(mc))

	newRVA, err := mc.Img.ReadU32(mc.Layout.OptionalHeaderOffset + optEntryPointOffset)
	require.NoError(t, err)
	require.Less(t, newRVA, f.entryRVA)
	shift := int(f.entryRVA - newRVA)
	require.Contains(t, []int{5, 6}, shift)

	newOff, ok := RVAToOffset(mc.Sections, newRVA)
	require.True(t, ok)
	buf := mc.Img.Bytes()
	require.Contains(t, []byte{0x31, 0x33}, buf[newOff], "xor eax,eax opcode")
	require.Equal(t, byte(0xC0), buf[newOff+1])
	require.Equal(t, byte(opJzShort), buf[newOff+2])
	require.Equal(t, byte(shift-4), buf[newOff+3], "jump distance covers the junk")

	// The original first instruction is untouched.
	epOff := int(f.placedRaw[0]) + 0x20
	require.Equal(t, code[0], buf[epOff])
}

func TestEntryShiftStopsAtSectionStart(t *testing.T) {
	// Entry at the very start of .text: the zero padding before it is
	// header space, not executable filler, so the entry must not move.
	f := textFixture(true, nil, []byte{0x48, 0x31, 0xC0, 0xC3})
	mc := newTestContext(t, f.build(), 2)
	require.NoError(t, MutateEntryPoint{}.Apply(mc))

	newRVA, err := mc.Img.ReadU32(mc.Layout.OptionalHeaderOffset + optEntryPointOffset)
	require.NoError(t, err)
	require.Equal(t, f.entryRVA, newRVA)
}

func TestCallTrapShiftByOne(t *testing.T) {
	lead := append(nonFiller(0x1A), 0xE8, 0x10, 0x20, 0x30, 0x40, opInt3)
	f := textFixture(true, lead, []byte{0x48, 0x31, 0xC0, 0xC3})
	mc := newTestContext(t, f.build(), 4)
	require.NoError(t, MutateEntryPoint{}.Apply(mc))

	newRVA, err := mc.Img.ReadU32(mc.Layout.OptionalHeaderOffset + optEntryPointOffset)
	require.NoError(t, err)
	require.Equal(t, f.entryRVA-1, newRVA)

	off, ok := RVAToOffset(mc.Sections, newRVA)
	require.True(t, ok)
	require.Equal(t, byte(opNop), mc.Img.Bytes()[off])
}

func TestStackReservationRewrite(t *testing.T) {
	code := make([]byte, 0x30)
	copy(code, []byte{0x48, 0x83, 0xEC, 0x28, 0xEB, 0x02, opInt3, opInt3})
	for i := 8; i < 0x20; i++ {
		code[i] = 0xAB
	}
	copy(code[0x20:], []byte{0x48, 0x83, 0xC4, 0x28, 0xC3})
	f := textFixture(true, nonFiller(0x10), code)
	mc := newTestContext(t, f.build(), 9)
	require.NoError(t, MutateEntryPoint{}.Apply(mc))

	buf := mc.Img.Bytes()
	ep := int(f.placedRaw[0]) + 0x10
	imm := buf[ep+3]
	require.NotEqual(t, byte(0x28), imm)
	require.Contains(t, stackReserveImms, imm)
	require.Equal(t, imm, buf[ep+0x20+3], "allocation and deallocation stay paired")

	newRVA, err := mc.Img.ReadU32(mc.Layout.OptionalHeaderOffset + optEntryPointOffset)
	require.NoError(t, err)
	require.Equal(t, f.entryRVA, newRVA)
}

func TestEntryPointAbsentIsModuleFailure(t *testing.T) {
	f := newFixture(true)
	f.addSection(".text", 0x100, make([]byte, 0x100), 0x60000020)
	f.entryRVA = 0
	mc := newTestContext(t, f.build(), 1)

	err := MutateEntryPoint{}.Apply(mc)
	var mf *ModuleFailure
	require.True(t, errors.As(err, &mf))
	require.False(t, isFatal(err))
}

func TestEntryPointUnmappedRVAIsModuleFailure(t *testing.T) {
	f := newFixture(true)
	f.addSection(".text", 0x100, make([]byte, 0x100), 0x60000020)
	f.entryRVA = 0x9000
	mc := newTestContext(t, f.build(), 1)

	err := MutateEntryPoint{}.Apply(mc)
	var mf *ModuleFailure
	require.True(t, errors.As(err, &mf))
}
