package main

// x86 opcode material used by the entry-point mutator. Exact byte values
// matter here; everything is little-endian raw encoding, no disassembly.

const (
	opPushAll   = 0x60 // pushad (32-bit; invalid encoding in 64-bit mode)
	opNop       = 0x90
	opInt3      = 0xCC
	opCallRel32 = 0xE8
	opJmpShort  = 0xEB
	opJzShort   = 0x74 // always taken right after xor reg,reg (ZF=1)
)

// Single-byte instructions safe to stand at a stub's first byte: register
// push/inc/dec forms, nop, and flag no-ops. The stub's true start treats
// all general registers and flags as undefined, so any of these is inert.
var neutralSingle32 = []byte{
	0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57, // push r32
	0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47, // inc r32
	0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F, // dec r32
	opNop,
	0xF5, 0xF8, 0xF9, 0xFC, // cmc, clc, stc, cld
}

// 64-bit variant: 0x40..0x4F are REX prefixes there, so only pushes, nop
// and the flag group survive.
var neutralSingle64 = []byte{
	0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57, // push r64
	opNop,
	0xF5, 0xF8, 0xF9, 0xFC,
}

// The four single-byte pushes a common 64-bit packer stub opens with
// (push rbx; push rsi; push rdi; push rbp). Its epilogue pops them through
// a frame pointer, order-insensitively, so any permutation runs.
var packerPushSeq = []byte{0x53, 0x56, 0x57, 0x55}

// Toolchain prologues recognized at the entry point.
type prologueKind int

const (
	prologueNone prologueKind = iota
	prologueSubRsp              // sub rsp, imm8 (MSVC x64 stack reservation)
	prologueFramePtr            // push rbp; mov rbp, rsp (GCC/MinGW)
)

var (
	prologueSubRspPat   = []byte{0x48, 0x83, 0xEC}       // + imm8
	prologueFramePtrPat = []byte{0x55, 0x48, 0x89, 0xE5}
)

// 3-byte nop and its alternate encodings (operand/address size prefixed).
var (
	nop3     = []byte{0x0F, 0x1F, 0x00}
	nop3Alts = [][]byte{
		{0x66, 0x66, 0x90},
		{0x66, 0x67, 0x90},
	}
)

// Recognized multi-byte nop encodings, longest first, for sliding the
// entry point backwards over alignment padding.
var nopCatalog = [][]byte{
	{0x66, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x0F, 0x1F, 0x40, 0x00},
	{0x0F, 0x1F, 0x00},
	{0x66, 0x90},
	{0x90},
}

// xor eax,eax in both ModRM directions.
var xorSelfEncodings = [][]byte{
	{0x31, 0xC0},
	{0x33, 0xC0},
}

// Two-byte instructions with no observable effect at process start:
// self-test/self-or/self-xor on eax, plus rdtsc.
var twoByteNeutral = [][]byte{
	{0x85, 0xC0}, // test eax, eax
	{0x09, 0xC0}, // or eax, eax
	{0x31, 0xC0}, // xor eax, eax
	{0x33, 0xC0},
	{0x0F, 0x31}, // rdtsc
}

// Legal stack-reservation immediates for the sub rsp,imm8 prologue. All
// keep the 16-byte call alignment contract (rsp ≡ 8 mod 16 at entry).
var stackReserveImms = []byte{0x28, 0x38, 0x48, 0x58, 0x68, 0x78}

// isFillerByte reports whether b is alignment padding never reached by
// normal control flow.
func isFillerByte(b byte) bool {
	return b == 0x00 || b == opNop || b == opInt3
}
