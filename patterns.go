package main

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
)

// Byte pattern search and in-place replace. Buffers can be tens of
// megabytes and several mutators scan the whole file more than once, so the
// search phase fans out over read-only partitions. All writes happen after
// every worker has joined, in ascending match order, which keeps results
// identical for any worker count.

// parallelThreshold is the buffer size below which a single-threaded scan
// wins over goroutine setup.
const parallelThreshold = 1 << 20

// findFirst locates the first occurrence of needle at or after start.
// Returns -1 when not found; index 0 is a valid hit.
func findFirst(haystack, needle []byte, start int) int {
	if len(needle) == 0 || start < 0 || start > len(haystack)-len(needle) {
		return -1
	}
	idx := bytes.Index(haystack[start:], needle)
	if idx < 0 {
		return -1
	}
	return start + idx
}

// findAll collects every match index (including overlapping candidates) in
// ascending order. Partitions overlap by len(needle)-1 bytes so matches
// straddling a boundary are seen exactly once, by the partition that owns
// the match's first byte.
func findAll(haystack, needle []byte, workers int) []int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if len(haystack) < parallelThreshold || workers == 1 {
		return scanRange(haystack, needle, 0, len(haystack))
	}

	chunk := (len(haystack) + workers - 1) / workers
	results := make([][]int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if lo >= len(haystack) {
			break
		}
		if hi > len(haystack) {
			hi = len(haystack)
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			results[w] = scanRange(haystack, needle, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	var merged []int
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

// scanRange finds matches whose first byte lies in [lo, hi).
func scanRange(haystack, needle []byte, lo, hi int) []int {
	var out []int
	limit := hi + len(needle) - 1
	if limit > len(haystack) {
		limit = len(haystack)
	}
	window := haystack[:limit]
	for at := lo; at < hi; {
		idx := findFirst(window, needle, at)
		if idx < 0 || idx >= hi {
			break
		}
		out = append(out, idx)
		at = idx + 1
	}
	return out
}

// replaceAll overwrites every non-overlapping match of find with replace.
// replace longer than find is rejected: the engine never moves bytes, it
// only overwrites in place. Returns the number of replacements.
func replaceAll(img *RawImage, find, replace []byte) (int, error) {
	return replaceRange(img, 0, img.Len(), find, replace)
}

// replaceAllInSection scopes the replacement to one section's raw window.
// The section range is re-validated against the current buffer length.
func replaceAllInSection(img *RawImage, sec *SectionDescriptor, find, replace []byte) (int, error) {
	lo := int(sec.PointerToRawData)
	size := int(sec.SizeOfRawData)
	if err := img.CheckRange(lo, size); err != nil {
		return 0, fmt.Errorf("section %q raw range invalid: %w", sec.Name, err)
	}
	return replaceRange(img, lo, lo+size, find, replace)
}

func replaceRange(img *RawImage, lo, hi int, find, replace []byte) (int, error) {
	if len(replace) > len(find) {
		return 0, fmt.Errorf("replacement of %d bytes exceeds pattern of %d bytes", len(replace), len(find))
	}
	if len(find) == 0 {
		return 0, nil
	}
	buf := img.Bytes()
	if hi > len(buf) {
		hi = len(buf)
	}
	if lo < 0 || lo >= hi {
		return 0, nil
	}

	matches := findAll(buf[:hi], find, 0)
	count := 0
	lastEnd := lo
	for _, idx := range matches {
		if idx < lastEnd {
			continue // before the window, or overlaps the previous match
		}
		copy(buf[idx:idx+len(replace)], replace)
		lastEnd = idx + len(find)
		count++
	}
	return count, nil
}
