package main

import (
	"strings"
)

// PE on-disk geometry constants.
const (
	lfanewOffset   = 0x3C // 4-byte pointer to the NT header
	ntToOptional   = 24   // PE signature (4) + COFF header (20)
	coffHeaderSize = 20

	sectionRecordSize = 40
	sectionNameSize   = 8

	optMagicPE32     = 0x010B
	optMagicPE32Plus = 0x020B

	// Optional header field offsets (identical for PE32 and PE32+).
	optEntryPointOffset = 0x10
	optChecksumOffset   = 0x40

	// Data directory table start, relative to the optional header.
	dataDirBasePE32     = 0x60
	dataDirBasePE32Plus = 0x70
	dataDirCount        = 16

	// COFF header field offsets, relative to the NT header.
	coffNumberOfSections = 6
	coffTimeDateStamp    = 8
	coffSizeOfOptional   = 20
	coffCharacteristics  = 22

	// DllCharacteristics, relative to the optional header.
	optDllCharacteristicsPE32     = 0x46
	optDllCharacteristicsPE32Plus = 0x46
)

// Data directory indices.
const (
	dirExport     = 0
	dirImport     = 1
	dirResource   = 2
	dirException  = 3
	dirSecurity   = 4
	dirBaseReloc  = 5
	dirDebug      = 6
	dirTLS        = 9
	dirLoadConfig = 10
	dirCOM        = 14 // CLR runtime header
)

// COFF characteristics bits.
const (
	imageFileRelocsStripped = 0x0001
	imageFileDLL            = 0x2000
)

// DllCharacteristics bits.
const (
	dllCharDynamicBase = 0x0040
)

// ImageLayout holds the offsets resolved once before the pipeline starts.
// Every offset is guaranteed to sit strictly inside the buffer as it was at
// resolution time; mutators still re-check against the current length
// because the buffer may have shrunk since.
type ImageLayout struct {
	NTHeaderOffset       int
	OptionalHeaderOffset int
	SectionTableOffset   int
	Is64Bit              bool
	SectionCount         int
}

// SectionDescriptor mirrors one 40-byte section table record.
type SectionDescriptor struct {
	Name             string
	VirtualAddress   uint32
	VirtualSize      uint32
	PointerToRawData uint32
	SizeOfRawData    uint32
	Characteristics  uint32
	HeaderOffset     int // file offset of the record itself
}

// RawEnd returns the file offset one past the section's raw data.
func (s *SectionDescriptor) RawEnd() uint32 {
	return s.PointerToRawData + s.SizeOfRawData
}

// ContainsOffset reports whether the file offset lies in the raw-data range.
func (s *SectionDescriptor) ContainsOffset(off uint32) bool {
	return s.SizeOfRawData > 0 && off >= s.PointerToRawData && off < s.RawEnd()
}

// ResolveLayout parses the header geometry out of the raw buffer. Any
// violation here is a FatalPrecondition: without a resolvable layout no
// mutation is meaningful.
func ResolveLayout(img *RawImage) (*ImageLayout, []SectionDescriptor, error) {
	lfanew, err := img.ReadU32(lfanewOffset)
	if err != nil {
		return nil, nil, fatalf("image too small for a DOS header (%d bytes)", img.Len())
	}
	ntOffset := int(int32(lfanew))
	if ntOffset <= 0 || ntOffset >= img.Len() {
		return nil, nil, fatalf("e_lfanew 0x%X does not resolve inside the image", lfanew)
	}

	sig, err := img.ReadU32(ntOffset)
	if err != nil || sig != 0x00004550 { // "PE\0\0"
		return nil, nil, fatalf("no PE signature at 0x%X", ntOffset)
	}

	optSize, err := img.ReadU16(ntOffset + coffSizeOfOptional)
	if err != nil {
		return nil, nil, fatalf("COFF header extends past the image")
	}
	sectionCount, err := img.ReadU16(ntOffset + coffNumberOfSections)
	if err != nil {
		return nil, nil, fatalf("COFF header extends past the image")
	}

	optOffset := ntOffset + ntToOptional
	magic, err := img.ReadU16(optOffset)
	if err != nil {
		return nil, nil, fatalf("optional header extends past the image")
	}
	var is64 bool
	switch magic {
	case optMagicPE32:
		is64 = false
	case optMagicPE32Plus:
		is64 = true
	default:
		return nil, nil, fatalf("unknown optional header magic 0x%04X", magic)
	}

	tableOffset := optOffset + int(optSize)
	tableSize := int(sectionCount) * sectionRecordSize
	if err := img.CheckRange(tableOffset, tableSize); err != nil {
		return nil, nil, fatalf("section table does not fit: %v", err)
	}

	layout := &ImageLayout{
		NTHeaderOffset:       ntOffset,
		OptionalHeaderOffset: optOffset,
		SectionTableOffset:   tableOffset,
		Is64Bit:              is64,
		SectionCount:         int(sectionCount),
	}

	sections := make([]SectionDescriptor, 0, sectionCount)
	for i := 0; i < int(sectionCount); i++ {
		rec := tableOffset + i*sectionRecordSize
		name := string(img.Bytes()[rec : rec+sectionNameSize])
		vsize, _ := img.ReadU32(rec + 8)
		vaddr, _ := img.ReadU32(rec + 12)
		rawSize, _ := img.ReadU32(rec + 16)
		rawPtr, _ := img.ReadU32(rec + 20)
		chars, _ := img.ReadU32(rec + 36)
		sections = append(sections, SectionDescriptor{
			Name:             strings.TrimRight(name, "\x00"),
			VirtualAddress:   vaddr,
			VirtualSize:      vsize,
			PointerToRawData: rawPtr,
			SizeOfRawData:    rawSize,
			Characteristics:  chars,
			HeaderOffset:     rec,
		})
	}
	return layout, sections, nil
}

// DataDirOffset returns the file offset of data directory entry index.
func (l *ImageLayout) DataDirOffset(index int) int {
	base := dataDirBasePE32
	if l.Is64Bit {
		base = dataDirBasePE32Plus
	}
	return l.OptionalHeaderOffset + base + index*8
}

// ReadDataDir reads the {VirtualAddress, Size} pair of a directory entry.
func (l *ImageLayout) ReadDataDir(img *RawImage, index int) (rva, size uint32, err error) {
	off := l.DataDirOffset(index)
	if rva, err = img.ReadU32(off); err != nil {
		return 0, 0, err
	}
	if size, err = img.ReadU32(off + 4); err != nil {
		return 0, 0, err
	}
	return rva, size, nil
}

// ClearDataDir zeroes both halves of a directory entry.
func (l *ImageLayout) ClearDataDir(img *RawImage, index int) error {
	off := l.DataDirOffset(index)
	if err := img.WriteU32(off, 0); err != nil {
		return err
	}
	return img.WriteU32(off+4, 0)
}
