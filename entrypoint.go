package main

import (
	"bytes"
	"math/rand"
)

// MutateEntryPoint rewrites the literal bytes at the entry RVA without
// changing what the processor executes from the logical entry point. This
// is the only mutator that has to reason about instruction semantics; every
// other step touches pure metadata.
//
// It runs first (after the managed-image check) because later mutators must
// not disturb the original entry bytes before the heuristics have seen them.
type MutateEntryPoint struct{}

func (MutateEntryPoint) Name() string { return "entrypoint" }

func (MutateEntryPoint) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	epField := layout.OptionalHeaderOffset + optEntryPointOffset
	epRVA, err := img.ReadU32(epField)
	if err != nil {
		return moduleFailf("entrypoint", "entry point field unreadable: %v", err)
	}
	if epRVA == 0 {
		return moduleFailf("entrypoint", "image has no entry point")
	}
	epOff, ok := RVAToOffset(mc.Sections, epRVA)
	if !ok {
		return moduleFailf("entrypoint", "entry RVA 0x%X has no file backing", epRVA)
	}
	ep := int(epOff)
	buf := img.Bytes()
	if ep >= len(buf) {
		return moduleFailf("entrypoint", "entry offset 0x%X at/past buffer end", ep)
	}

	// 1. Push-all substitution. Either retire the opcode behind a nop
	// skip-marker and advance the entry, or swap it for a neutral byte.
	// Its effect is conventionally redundant at a packer stub's start.
	markerFloor := 0
	if buf[ep] == opPushAll {
		if mc.Rng.Intn(2) == 0 {
			buf[ep] = opNop
			ep++
			if ep >= len(buf) {
				return moduleFailf("entrypoint", "advanced entry 0x%X past buffer end", ep)
			}
			// The marker is a skipped instruction, not slideable padding:
			// the entry must stay past it.
			markerFloor = ep
		} else {
			set := neutralSingle32
			if layout.Is64Bit {
				set = neutralSingle64
			}
			buf[ep] = pickByte(mc.Rng, set)
		}
	}

	// 2. Packer push-sequence permutation.
	if ep+len(packerPushSeq) <= len(buf) && bytes.Equal(buf[ep:ep+len(packerPushSeq)], packerPushSeq) {
		shuffleBytes(mc.Rng, buf[ep:ep+len(packerPushSeq)])
	}

	// 3. Prologue detection, recorded for the later steps.
	prologue := detectPrologue(buf, ep, layout.Is64Bit)

	// 4. Filler re-encoding / trap randomization behind the prologue.
	mutateAfterPrologue(mc.Rng, buf, ep, prologue)

	// 5. Entry-point shift into the padding that precedes the entry.
	// The scan never leaves the containing section: bytes below its raw
	// start are header padding, not executable filler. A fresh removal
	// marker raises the floor further.
	floor := markerFloor
	for i := range mc.Sections {
		if mc.Sections[i].ContainsOffset(uint32(ep)) {
			if f := int(mc.Sections[i].PointerToRawData); f > floor {
				floor = f
			}
			break
		}
	}
	shifted := shiftEntryPoint(mc.Rng, buf, ep, floor)
	if shifted == ep && prologue == prologueSubRsp {
		if err := mutateStackReservation(mc.Rng, buf, ep); err != nil {
			return err
		}
	}
	ep = shifted

	// 6. Write the (possibly moved) entry point back into the header.
	newRVA, ok := OffsetToRVA(mc.Sections, uint32(ep))
	if !ok {
		return moduleFailf("entrypoint", "shifted entry offset 0x%X left the section map", ep)
	}
	if err := img.WriteU32(epField, newRVA); err != nil {
		return moduleFailf("entrypoint", "entry point write failed: %v", err)
	}
	return nil
}

func detectPrologue(buf []byte, ep int, is64 bool) prologueKind {
	if !is64 {
		return prologueNone
	}
	if ep+4 <= len(buf) && bytes.Equal(buf[ep:ep+3], prologueSubRspPat) {
		return prologueSubRsp
	}
	if ep+len(prologueFramePtrPat) <= len(buf) && bytes.Equal(buf[ep:ep+len(prologueFramePtrPat)], prologueFramePtrPat) {
		return prologueFramePtr
	}
	return prologueNone
}

// mutateAfterPrologue applies the low-risk byte changes that depend on
// which prologue matched. Failure to find a target is simply a no-op.
func mutateAfterPrologue(rng *rand.Rand, buf []byte, ep int, prologue prologueKind) {
	switch prologue {
	case prologueFramePtr:
		// One 3-byte nop inside the 16 bytes after the prologue gets an
		// equivalent alternate encoding.
		lo := ep + len(prologueFramePtrPat)
		hi := lo + 16
		if hi > len(buf)-len(nop3) {
			hi = len(buf) - len(nop3)
		}
		for at := lo; at <= hi; at++ {
			if bytes.Equal(buf[at:at+len(nop3)], nop3) {
				copy(buf[at:], nop3Alts[rng.Intn(len(nop3Alts))])
				return
			}
		}
	case prologueSubRsp:
		// sub rsp,imm8 is 4 bytes. A short jump right after it with two
		// trap bytes in its shadow: the traps are unreachable, so their
		// values are free.
		if ep+8 <= len(buf) && buf[ep+4] == opJmpShort && buf[ep+6] == opInt3 && buf[ep+7] == opInt3 {
			buf[ep+6] = byte(rng.Intn(256))
			buf[ep+7] = byte(rng.Intn(256))
		}
	}
}

// fillerRunBefore counts identical filler bytes immediately preceding ep,
// never reaching below floor. A relative call whose rel32 operand would
// overlap the run disqualifies it: those bytes are an address, not padding.
func fillerRunBefore(buf []byte, ep, floor int) int {
	if ep <= floor || ep > len(buf) {
		return 0
	}
	f := buf[ep-1]
	if !isFillerByte(f) {
		return 0
	}
	run := 0
	for i := ep - 1; i >= floor && buf[i] == f; i-- {
		run++
	}
	start := ep - run
	for p := start - 5; p < start; p++ {
		if p >= 0 && buf[p] == opCallRel32 && p+5 > start {
			return 0
		}
	}
	return run
}

// shiftEntryPoint moves the logical entry backwards into preceding filler
// using the first strategy that fits, and returns the new entry offset.
func shiftEntryPoint(rng *rand.Rand, buf []byte, ep, floor int) int {
	run := fillerRunBefore(buf, ep, floor)

	switch {
	case run >= 5:
		// xor eax,eax; jz +n; n random junk bytes. The jump is always
		// taken (ZF=1 after the xor) so the junk never executes, and
		// eax carries no meaning at process start.
		junk := 1 + rng.Intn(2)
		if 4+junk > run {
			junk = 1
		}
		start := ep - (4 + junk)
		copy(buf[start:], xorSelfEncodings[rng.Intn(len(xorSelfEncodings))])
		buf[start+2] = opJzShort
		buf[start+3] = byte(junk)
		for i := 0; i < junk; i++ {
			buf[start+4+i] = byte(rng.Intn(256))
		}
		return start

	case run >= 3:
		copy(buf[ep-2:], twoByteNeutral[rng.Intn(len(twoByteNeutral))])
		return ep - 2

	case run == 2 || (ep >= floor+6 && isCallTrapIdiom(buf, ep)):
		buf[ep-1] = opNop
		return ep - 1
	}

	// Slide backwards over whole multi-byte nop encodings.
	at := ep
	for {
		slid := false
		for _, nop := range nopCatalog {
			n := len(nop)
			if at-n >= floor && bytes.Equal(buf[at-n:at], nop) {
				at -= n
				slid = true
				break
			}
		}
		if !slid {
			break
		}
	}
	return at
}

// isCallTrapIdiom recognizes the 6-byte "call rel32 followed by one trap
// byte" sequence some linkers leave directly before an entry point.
func isCallTrapIdiom(buf []byte, ep int) bool {
	return ep >= 6 && buf[ep-6] == opCallRel32 && buf[ep-1] == opInt3
}

// mutateStackReservation rewrites the sub rsp,imm8 immediate with another
// legal aligned value and patches the matching add rsp,imm8 found by
// forward scan. Both writes happen only after the pair is located, so a
// fault can not leave the stack adjustment unbalanced.
func mutateStackReservation(rng *rand.Rand, buf []byte, ep int) error {
	if ep+4 > len(buf) {
		return moduleFailf("entrypoint", "prologue truncated at 0x%X", ep)
	}
	imm := buf[ep+3]
	legal := false
	for _, v := range stackReserveImms {
		if v == imm {
			legal = true
			break
		}
	}
	if !legal {
		return nil
	}

	// add rsp,imm8; ret: the epilogue that undoes this reservation.
	dealloc := []byte{0x48, 0x83, 0xC4, imm, 0xC3}
	limit := ep + 0x2000
	if limit > len(buf) {
		limit = len(buf)
	}
	idx := findFirst(buf[:limit], dealloc, ep+4)
	if idx < 0 {
		return moduleFailf("entrypoint", "no matching stack deallocation for imm 0x%02X", imm)
	}

	newImm := pickOther(rng, stackReserveImms, imm)
	buf[idx+3] = newImm
	buf[ep+3] = newImm
	return nil
}
