package main

import (
	"strings"

	peparser "github.com/saferwall/pe"
)

// Toolchain is the coarse hint about which compiler family produced the
// input. It only gates the narrow marker-scrubbing mutators; everything
// else runs regardless.
type Toolchain int

const (
	ToolchainUnknown Toolchain = iota
	ToolchainMSVC
	ToolchainMinGW
	ToolchainGo
	ToolchainRust
)

func (t Toolchain) String() string {
	switch t {
	case ToolchainMSVC:
		return "MSVC"
	case ToolchainMinGW:
		return "GCC/MinGW"
	case ToolchainGo:
		return "Go"
	case ToolchainRust:
		return "Rust"
	default:
		return "unknown"
	}
}

// DetectToolchain combines raw marker scans over the loaded buffer with a
// structural parse of the original file. Wrong answers are cheap here:
// the worst case is a marker scrub that finds nothing.
func DetectToolchain(path string, img *RawImage) Toolchain {
	buf := img.Bytes()

	// Language runtimes brand their output unambiguously.
	if findFirst(buf, []byte("Go build ID: \""), 0) >= 0 ||
		findFirst(buf, []byte("\xff Go buildinf:"), 0) >= 0 {
		return ToolchainGo
	}
	if findFirst(buf, []byte("/rustc/"), 0) >= 0 {
		return ToolchainRust
	}

	if tc := detectFromStructure(path); tc != ToolchainUnknown {
		return tc
	}

	if findFirst(buf, []byte("GCC: ("), 0) >= 0 {
		return ToolchainMinGW
	}
	return ToolchainUnknown
}

// detectFromStructure leans on a full-fidelity parser for the signals the
// raw buffer cannot give cheaply: Rich header composition IDs (only MSVC
// emits them) and the imported runtime DLL set.
func detectFromStructure(path string) Toolchain {
	pe, err := peparser.New(path, &peparser.Options{})
	if err != nil {
		return ToolchainUnknown
	}
	defer pe.Close()
	if err := pe.Parse(); err != nil {
		return ToolchainUnknown
	}

	for _, imp := range pe.Imports {
		name := strings.ToLower(imp.Name)
		if strings.HasPrefix(name, "libgcc") || strings.HasPrefix(name, "libstdc++") ||
			strings.HasPrefix(name, "mingwm") || strings.HasPrefix(name, "libwinpthread") {
			return ToolchainMinGW
		}
	}
	for _, imp := range pe.Imports {
		name := strings.ToLower(imp.Name)
		if strings.HasPrefix(name, "vcruntime") || strings.HasPrefix(name, "msvcp") ||
			strings.HasPrefix(name, "api-ms-win-crt") {
			return ToolchainMSVC
		}
	}
	if len(pe.RichHeader.CompIDs) > 0 {
		return ToolchainMSVC
	}
	return ToolchainUnknown
}
