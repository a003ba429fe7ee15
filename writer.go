package main

import "os"

// SaveImage serializes the mutated buffer plus exactly one trailing zero
// byte. The extra byte moves the file length and every whole-file hash
// away from anything computed over the original; the loader only maps
// what the headers describe, so it never sees the tail.
func SaveImage(path string, img *RawImage) error {
	out := make([]byte, img.Len()+1)
	copy(out, img.Bytes())
	return os.WriteFile(path, out, 0o755)
}
