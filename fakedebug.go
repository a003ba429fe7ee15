package main

import "encoding/binary"

// PlantFakeDebugDirectory synthesizes a one-entry CODEVIEW debug table in
// section slack and points the (empty) debug data directory at it. Tools
// that trust the directory now chase a decoy GUID and PDB name instead of
// reporting "debug info stripped", which is itself a signature.
//
// The entry must live at a mapped RVA, so it goes into the gap between a
// section's used bytes and its aligned raw end. When no section offers
// enough slack the last section's raw data grows by the shortfall, the
// one place the image is allowed to get bigger.
type PlantFakeDebugDirectory struct{}

func (PlantFakeDebugDirectory) Name() string { return "fake-debug" }

const debugTypeCodeView = 2

// decoyPDBs look like real MSVC artifact paths; one is drawn per run.
var decoyPDBs = []string{
	"D:\\a\\_work\\1\\s\\out\\Release\\app.pdb",
	"C:\\Users\\dev\\source\\repos\\svc\\x64\\Release\\svc.pdb",
	"E:\\bb\\build\\rel\\bin\\core.pdb",
}

func (PlantFakeDebugDirectory) Apply(mc *MutationContext) error {
	img, layout := mc.Img, mc.Layout

	rva, size, err := layout.ReadDataDir(img, dirDebug)
	if err != nil {
		return moduleFailf("fake-debug", "directory entry unreadable: %v", err)
	}
	if rva != 0 || size != 0 {
		return nil // a real (or earlier-planted) table is present
	}

	pdb := decoyPDBs[mc.Rng.Intn(len(decoyPDBs))]
	payloadLen := 4 + 16 + 4 + len(pdb) + 1 // "RSDS" + GUID + age + path
	need := debugRecordSize + payloadLen

	sec, off := findSlack(img, mc.Sections, need)
	if sec == nil {
		sec, off, err = growLastSection(img, layout, mc.Sections, need)
		if err != nil {
			return moduleFailf("fake-debug", "%v", err)
		}
	}
	entryRVA := sec.VirtualAddress + (uint32(off) - sec.PointerToRawData)

	// Payload first, then the record, then the directory entry: a fault
	// at any point leaves nothing dangling.
	payloadOff := off + debugRecordSize
	if err := img.CheckRange(off, need); err != nil {
		return moduleFailf("fake-debug", "slack range invalid: %v", err)
	}

	// The planted bytes must fall inside the section's virtual span, or
	// RVA-based consumers cannot resolve the entry they are meant to chase.
	endRel := uint32(off) - sec.PointerToRawData + uint32(need)
	if endRel > sec.VirtualSize {
		if err := img.WriteU32(sec.HeaderOffset+8, endRel); err != nil {
			return moduleFailf("fake-debug", "virtual size update failed: %v", err)
		}
		sec.VirtualSize = endRel
	}
	buf := img.Bytes()
	copy(buf[payloadOff:], "RSDS")
	for i := 0; i < 16; i++ {
		buf[payloadOff+4+i] = byte(mc.Rng.Intn(256))
	}
	binary.LittleEndian.PutUint32(buf[payloadOff+20:], uint32(1+mc.Rng.Intn(4))) // age
	copy(buf[payloadOff+24:], pdb)
	buf[payloadOff+24+len(pdb)] = 0

	rec := buf[off : off+debugRecordSize]
	binary.LittleEndian.PutUint32(rec[8:], 0)                          // versions
	binary.LittleEndian.PutUint32(rec[12:], debugTypeCodeView)         // Type
	binary.LittleEndian.PutUint32(rec[16:], uint32(payloadLen))        // SizeOfData
	binary.LittleEndian.PutUint32(rec[20:], entryRVA+debugRecordSize)  // AddressOfRawData
	binary.LittleEndian.PutUint32(rec[24:], uint32(payloadOff))        // PointerToRawData

	dirOff := layout.DataDirOffset(dirDebug)
	if err := img.WriteU32(dirOff, entryRVA); err != nil {
		return moduleFailf("fake-debug", "directory write failed: %v", err)
	}
	if err := img.WriteU32(dirOff+4, debugRecordSize); err != nil {
		return moduleFailf("fake-debug", "directory write failed: %v", err)
	}
	logDetail("fake-debug", "planted decoy CodeView entry at RVA 0x%X", entryRVA)
	return nil
}

// findSlack locates a mapped all-zero gap of at least need bytes between a
// section's virtual size and its raw end.
func findSlack(img *RawImage, sections []SectionDescriptor, need int) (*SectionDescriptor, int) {
	for i := range sections {
		s := &sections[i]
		if s.SizeOfRawData == 0 || s.VirtualSize >= s.SizeOfRawData {
			continue
		}
		slackOff := int(s.PointerToRawData + s.VirtualSize)
		slackLen := int(s.SizeOfRawData - s.VirtualSize)
		if slackLen < need || img.CheckRange(slackOff, slackLen) != nil {
			continue
		}
		clean := true
		for _, b := range img.Bytes()[slackOff : slackOff+slackLen] {
			if b != 0 {
				clean = false
				break
			}
		}
		if clean {
			return s, slackOff
		}
	}
	return nil, 0
}

// Optional header alignment fields, relative to the optional header.
const (
	optSectionAlignOffset = 0x20
	optFileAlignOffset    = 0x24
)

// growLastSection extends the final section's raw data far enough to hold
// need bytes, updating its header and the in-memory descriptor. Growth is
// capped at the section's already-aligned virtual span, so SizeOfImage and
// the rest of the layout stay valid without any recomputation.
func growLastSection(img *RawImage, layout *ImageLayout, sections []SectionDescriptor, need int) (*SectionDescriptor, int, error) {
	if len(sections) == 0 {
		return nil, 0, errNoRoom
	}
	last := &sections[len(sections)-1]
	if int(last.RawEnd()) != img.Len() {
		return nil, 0, errNoRoom // overlay (or truncated file) in the way
	}

	sectAlign, err := img.ReadU32(layout.OptionalHeaderOffset + optSectionAlignOffset)
	if err != nil || sectAlign == 0 {
		return nil, 0, errNoRoom
	}
	fileAlign, err := img.ReadU32(layout.OptionalHeaderOffset + optFileAlignOffset)
	if err != nil || fileAlign == 0 {
		return nil, 0, errNoRoom
	}
	// The appended bytes sit at the old raw end; the virtual size must
	// stretch over them without leaving the already-aligned span.
	mappedSpan := alignUp(last.VirtualSize, sectAlign)
	newVirtual := last.SizeOfRawData + uint32(need)
	if newVirtual > mappedSpan {
		return nil, 0, errNoRoom // would spill past what the loader maps
	}
	if newVirtual < last.VirtualSize {
		newVirtual = last.VirtualSize // zero-fill tail already covers it
	}

	growth := int(alignUp(uint32(need), fileAlign))
	off := img.Grow(growth)
	newRaw := last.SizeOfRawData + uint32(growth)
	if err := img.WriteU32(last.HeaderOffset+16, newRaw); err != nil {
		return nil, 0, err
	}
	if err := img.WriteU32(last.HeaderOffset+8, newVirtual); err != nil {
		return nil, 0, err
	}
	last.SizeOfRawData = newRaw
	last.VirtualSize = newVirtual
	return last, off, nil
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}

var errNoRoom = moduleFailf("fake-debug", "no section slack and last section not growable")
