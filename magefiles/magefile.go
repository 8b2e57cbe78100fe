//go:build mage

// Package main contains the Mage build targets of markup-extractor.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	markupextractor "github.com/kataras/markup-extractor"
)

const (
	binDir  = "bin"
	binName = "markup-extractor"
	cmdPkg  = "./cmd/markup-extractor"
)

// Default builds the CLI.
var Default = Build

// ldflags stamps the version from git, falling back to the source one.
func ldflags() string {
	version := markupextractor.Version
	if desc, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && desc != "" {
		version = desc
	}
	return "-s -w -X github.com/kataras/markup-extractor.Version=" + version
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-trimpath", "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Install installs the CLI into GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-trimpath", "-ldflags", ldflags(), cmdPkg)
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check vets, then tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Serve builds the CLI and starts the HTTP API on the default address.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve", "--verbose")
}
