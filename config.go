package main

import (
	"github.com/xyproto/env/v2"
)

// Options carries everything one invocation needs. The CLI fills it in;
// environment variables supply defaults so wrapper scripts don't have to
// repeat flags.
type Options struct {
	InputPath   string
	OutputPath  string
	Legacy      bool
	Seed        int64
	Verbose     bool
	NoColor     bool
	KeepOverlay bool
}

// optionsFromEnv seeds the defaults the flags may then override.
func optionsFromEnv() Options {
	return Options{
		Seed:    int64(env.Int("ASTRAL_SEED", 0)),
		Verbose: env.Bool("ASTRAL_VERBOSE"),
		NoColor: env.Bool("NO_COLOR"),
	}
}
