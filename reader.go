package main

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// LoadImage reads the whole input into an exclusively-owned buffer. Inputs
// run to tens of megabytes, so the fast path maps the file read-only and
// copies out of the mapping; the mutators then work on private memory and
// the original file stays byte-identical until SaveImage.
func LoadImage(path string) (*RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Mapping can fail on network shares; fall back to a plain read.
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		return NewRawImage(data), nil
	}
	defer m.Unmap()

	data := make([]byte, len(m))
	copy(data, m)
	return NewRawImage(data), nil
}

// originalCertRange re-reads the certificate directory from the untouched
// source file. Mutators that need pristine metadata after the in-memory
// copy has been scrubbed take the source path as an explicit parameter.
func originalCertRange(path string) (off, size int, err error) {
	img, err := LoadImage(path)
	if err != nil {
		return 0, 0, err
	}
	layout, _, err := ResolveLayout(img)
	if err != nil {
		return 0, 0, err
	}
	rva, sz, err := layout.ReadDataDir(img, dirSecurity)
	if err != nil {
		return 0, 0, err
	}
	return int(rva), int(sz), nil // security entry holds a file offset
}
