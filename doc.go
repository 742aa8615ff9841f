// Package texshelf builds versioned PDF documentation with an external
// LaTeX toolchain and records what happened.
//
// # Build Pipeline
//
// A build runs these stages in order, stopping at the first failure:
//
//  1. bootstrap - prepare the build environment (optional)
//  2. generate  - render documentation sources into LaTeX
//  3. assets    - stage auxiliary PDF files into the build directory
//  4. compile   - run the TeX engine until cross-references stabilize
//  5. verify    - confirm the artifact exists
//
// Every stage shells out to tools named in the project manifest; texshelf
// never typesets anything itself. The manifest declares the bootstrap and
// generate commands, the build directory they populate, the master .tex
// file, and the engine configuration.
//
// # Quick Start
//
// Create a Service from a loaded manifest and run a build:
//
//	svc, err := texshelf.New(manifest)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := svc.Build(ctx, texshelf.Input{Version: "v1.2.3"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report)
//
// The report records per-stage timing, one entry per engine pass, and the
// produced artifact path. Use report.WriteFile to persist it as JSON.
//
// # The Shelf
//
// Finished PDFs live in a shelf directory: one immutable file per release
// identifier plus the current development build, described by an index and
// a generated README. Publishing, listing, and verification are exposed
// through the texshelf command (see cmd/texshelf).
//
// # External Requirements
//
// Compilation needs an installed TeX distribution (TeX Live or MiKTeX) and
// the DejaVu font family. Run `texshelf doctor` to check a machine before
// the first build.
package texshelf
