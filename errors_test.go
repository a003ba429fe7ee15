package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorSeverities(t *testing.T) {
	mf := moduleFailf("tls-dir", "structure truncated at 0x%X", 0x400)
	if isFatal(mf) {
		t.Fatal("module failure must not be fatal")
	}
	if got := mf.Error(); got != "tls-dir: structure truncated at 0x400" {
		t.Fatalf("unexpected message: %q", got)
	}

	fp := fatalf("managed image")
	if !isFatal(fp) {
		t.Fatal("precondition violation must be fatal")
	}

	// Severity survives wrapping.
	if !isFatal(fmt.Errorf("run failed: %w", fp)) {
		t.Fatal("fatal classification must survive wrapping")
	}
	var target *ModuleFailure
	if !errors.As(fmt.Errorf("step: %w", mf), &target) {
		t.Fatal("module failure must survive wrapping")
	}
	if target.Mutator != "tls-dir" {
		t.Fatalf("wrong mutator attribution: %q", target.Mutator)
	}
}
