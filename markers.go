package main

// ScrubToolchainMarkers blanks the marker strings a compiler family leaves
// in the binary. Each scrub is narrow and only runs when the toolchain
// detector saw that family; marker bytes are too short to risk matching
// inside unrelated data.
//
// Two scrub shapes exist: whole NUL-terminated strings get zeroed
// entirely, while markers embedded in longer strings that must survive
// (a build ID inside a quoted pair, a hash inside a path) lose only the
// matched substring.
type ScrubToolchainMarkers struct{}

func (ScrubToolchainMarkers) Name() string { return "toolchain-markers" }

func (ScrubToolchainMarkers) Apply(mc *MutationContext) error {
	switch mc.Toolchain {
	case ToolchainGo:
		scrubGoBuildID(mc.Img)
	case ToolchainMinGW:
		scrubMinGWStrings(mc.Img)
	case ToolchainRust:
		scrubRustcHashes(mc.Img)
	}
	return nil
}

// scrubGoBuildID zeroes the ID between the quotes of `Go build ID: "..."`,
// keeping the quotes and the surrounding string intact.
func scrubGoBuildID(img *RawImage) {
	marker := []byte(`Go build ID: "`)
	buf := img.Bytes()
	at := findFirst(buf, marker, 0)
	if at < 0 {
		return
	}
	for i := at + len(marker); i < len(buf) && buf[i] != '"'; i++ {
		buf[i] = '0'
	}
	logDetail("toolchain-markers", "blanked Go build ID")
}

// scrubMinGWStrings zeroes whole GCC/MinGW version strings ("GCC: (...)"
// comment records and the mingw-w64 runtime banner prefix).
func scrubMinGWStrings(img *RawImage) {
	total := 0
	for _, marker := range [][]byte{
		[]byte("GCC: ("),
		[]byte("Mingw-w64 runtime failure:"),
	} {
		buf := img.Bytes()
		for at := findFirst(buf, marker, 0); at >= 0; at = findFirst(buf, marker, at+1) {
			end := at
			for end < len(buf) && buf[end] != 0 {
				buf[end] = 0
				end++
			}
			total++
		}
	}
	if total > 0 {
		logDetail("toolchain-markers", "zeroed %d GCC/MinGW string(s)", total)
	}
}

// scrubRustcHashes blanks the commit hash inside `/rustc/<40 hex>/` path
// prefixes; the path tail after the hash stays readable for panics.
func scrubRustcHashes(img *RawImage) {
	marker := []byte("/rustc/")
	buf := img.Bytes()
	count := 0
	for at := findFirst(buf, marker, 0); at >= 0; at = findFirst(buf, marker, at+1) {
		h := at + len(marker)
		if h+40 >= len(buf) || buf[h+40] != '/' {
			continue
		}
		ok := true
		for i := h; i < h+40; i++ {
			if !isHexDigit(buf[i]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i := h; i < h+40; i++ {
			buf[i] = '0'
		}
		count++
	}
	if count > 0 {
		logDetail("toolchain-markers", "blanked %d rustc hash(es)", count)
	}
}

func isHexDigit(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'f'
}
