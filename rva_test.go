package main

import "testing"

var translationSections = []SectionDescriptor{
	{Name: ".text", VirtualAddress: 0x1000, VirtualSize: 0x800, PointerToRawData: 0x400, SizeOfRawData: 0x600},
	{Name: ".data", VirtualAddress: 0x2000, VirtualSize: 0x1000, PointerToRawData: 0xA00, SizeOfRawData: 0x200},
}

func TestOffsetRVARoundTrip(t *testing.T) {
	for _, off := range []uint32{0x400, 0x5FF, 0x9FF, 0xA00, 0xBFF} {
		rva, ok := OffsetToRVA(translationSections, off)
		if !ok {
			t.Fatalf("offset 0x%X did not map", off)
		}
		back, ok := RVAToOffset(translationSections, rva)
		if !ok || back != off {
			t.Fatalf("offset 0x%X -> rva 0x%X -> 0x%X", off, rva, back)
		}
	}
}

func TestOffsetToRVAUnmapped(t *testing.T) {
	// Header bytes and past-the-end offsets belong to no section.
	for _, off := range []uint32{0x0, 0x3FF, 0xC00} {
		if _, ok := OffsetToRVA(translationSections, off); ok {
			t.Fatalf("offset 0x%X should not map", off)
		}
	}
}

func TestRVAToOffsetVirtualOnlyTail(t *testing.T) {
	// .data extends virtually to 0x3000 but only 0x200 bytes are on disk.
	if _, ok := RVAToOffset(translationSections, 0x2300); ok {
		t.Fatal("virtual-only rva should report no file backing")
	}
	if _, ok := RVAToOffset(translationSections, 0x9000); ok {
		t.Fatal("unmapped rva should report no file backing")
	}
}
