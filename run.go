package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// defaultOutputPath derives "<name>_mutated<ext>" next to the input.
func defaultOutputPath(input string) string {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_mutated"+ext)
}

// Mutate runs the whole flow for one input file: load, resolve, detect,
// mutate, save. It is the only function the CLI calls.
func Mutate(opts Options) error {
	if opts.OutputPath == "" {
		opts.OutputPath = defaultOutputPath(opts.InputPath)
	}

	img, err := LoadImage(opts.InputPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.InputPath, err)
	}

	layout, sections, err := ResolveLayout(img)
	if err != nil {
		return err
	}

	tc := DetectToolchain(opts.InputPath, img)
	if tc != ToolchainUnknown {
		log.Infof("toolchain: %s", tc)
	}

	mc := &MutationContext{
		Img:         img,
		Layout:      layout,
		Sections:    sections,
		Rng:         newRunSource(opts.Seed),
		SourcePath:  opts.InputPath,
		Legacy:      opts.Legacy,
		Toolchain:   tc,
		KeepOverlay: opts.KeepOverlay,
	}

	if err := DefaultPipeline().Run(mc); err != nil {
		return err
	}

	if err := SaveImage(opts.OutputPath, img); err != nil {
		return fmt.Errorf("save %s: %w", opts.OutputPath, err)
	}
	log.Infof("wrote %s (%d bytes)", opts.OutputPath, img.Len()+1)
	return nil
}
