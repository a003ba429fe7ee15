package main

// Translation between file offsets and relative virtual addresses.
//
// Both directions are a linear scan of the section table in on-disk order,
// first match wins. An unmapped RVA is a normal outcome (packed regions
// often have virtual ranges with no raw backing) and is reported through
// the ok result, never as an error.

// OffsetToRVA maps a file offset into the virtual address space.
func OffsetToRVA(sections []SectionDescriptor, off uint32) (uint32, bool) {
	for i := range sections {
		s := &sections[i]
		if s.ContainsOffset(off) {
			return s.VirtualAddress + (off - s.PointerToRawData), true
		}
	}
	return 0, false
}

// RVAToOffset maps a relative virtual address back onto the file.
func RVAToOffset(sections []SectionDescriptor, rva uint32) (uint32, bool) {
	for i := range sections {
		s := &sections[i]
		span := s.VirtualSize
		if span == 0 {
			span = s.SizeOfRawData
		}
		if rva >= s.VirtualAddress && rva < s.VirtualAddress+span {
			delta := rva - s.VirtualAddress
			if delta >= s.SizeOfRawData {
				// Virtual-only tail (zero fill), nothing on disk.
				return 0, false
			}
			return s.PointerToRawData + delta, true
		}
	}
	return 0, false
}
