package main

import (
	"encoding/binary"
	"fmt"
)

// RawImage owns the entire on-disk byte layout of the input executable.
// Mutators write into it in place; overlay trimming shrinks it and fake
// table synthesis may grow it, so nobody is allowed to cache its length.
type RawImage struct {
	data []byte
}

func NewRawImage(data []byte) *RawImage {
	return &RawImage{data: data}
}

func (img *RawImage) Len() int {
	return len(img.data)
}

func (img *RawImage) Bytes() []byte {
	return img.data
}

// CheckRange verifies that [off, off+size) lies inside the current buffer.
func (img *RawImage) CheckRange(off, size int) error {
	if off < 0 || size < 0 || off+size > len(img.data) {
		return fmt.Errorf("range [0x%X, 0x%X) outside image of %d bytes", off, off+size, len(img.data))
	}
	return nil
}

func (img *RawImage) ReadU16(off int) (uint16, error) {
	if err := img.CheckRange(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(img.data[off:]), nil
}

func (img *RawImage) ReadU32(off int) (uint32, error) {
	if err := img.CheckRange(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(img.data[off:]), nil
}

func (img *RawImage) ReadU64(off int) (uint64, error) {
	if err := img.CheckRange(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(img.data[off:]), nil
}

func (img *RawImage) WriteU16(off int, v uint16) error {
	if err := img.CheckRange(off, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(img.data[off:], v)
	return nil
}

func (img *RawImage) WriteU32(off int, v uint32) error {
	if err := img.CheckRange(off, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(img.data[off:], v)
	return nil
}

// Zero clears [off, off+size).
func (img *RawImage) Zero(off, size int) error {
	if err := img.CheckRange(off, size); err != nil {
		return err
	}
	for i := off; i < off+size; i++ {
		img.data[i] = 0
	}
	return nil
}

// Truncate shrinks the image to n bytes.
func (img *RawImage) Truncate(n int) error {
	if n < 0 || n > len(img.data) {
		return fmt.Errorf("truncate to %d outside image of %d bytes", n, len(img.data))
	}
	img.data = img.data[:n]
	return nil
}

// Grow extends the image by n zero bytes and returns the offset of the
// first appended byte.
func (img *RawImage) Grow(n int) int {
	off := len(img.data)
	img.data = append(img.data, make([]byte, n)...)
	return off
}
