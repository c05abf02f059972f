// Package session drives one input file through the full pipeline --
// preprocessor, first pass, second pass -- and writes (or, on error,
// discards) its output files, per spec sections 5 and 6.
package session

import (
	"fmt"
	"os"
	"strings"

	"github.com/lookbusy1344/asm10/internal/diag"
	"github.com/lookbusy1344/asm10/internal/firstpass"
	"github.com/lookbusy1344/asm10/internal/preprocess"
	"github.com/lookbusy1344/asm10/internal/secondpass"
)

// Result is the outcome of assembling one basename.
type Result struct {
	Basename  string
	Expanded  string // the .am text
	First     *firstpass.Result
	Second    *secondpass.Result
	Diags     []*diag.Error // every error across all three stages
	Warnings  []*diag.Error // every warning across all three stages; never fails the build
	Succeeded bool
}

// Assemble runs the full pipeline over source text read from
// "<basename>.as" and returns the combined result. It does not touch the
// filesystem beyond what source provides -- see WriteOutputs for the file
// side effects described in spec section 6.
func Assemble(basename, source string) *Result {
	filename := basename + ".as"

	pp := preprocess.New(filename)
	expanded := pp.Run(source)

	res := &Result{Basename: basename, Expanded: expanded}
	res.Diags = append(res.Diags, pp.Diagnostics().Errors...)
	res.Warnings = append(res.Warnings, pp.Diagnostics().Warnings...)
	if pp.Diagnostics().HasErrors() {
		res.Succeeded = false
		return res
	}

	fr := firstpass.Run(filename, expanded)
	res.First = fr
	res.Diags = append(res.Diags, fr.Diags.Errors...)
	res.Warnings = append(res.Warnings, fr.Diags.Warnings...)
	if fr.Diags.HasErrors() {
		res.Succeeded = false
		return res
	}

	sr := secondpass.Run(filename, fr)
	res.Second = sr
	res.Diags = append(res.Diags, sr.Diags.Errors...)
	res.Warnings = append(res.Warnings, sr.Diags.Warnings...)
	res.Succeeded = !sr.Diags.HasErrors()
	return res
}

// WriteOutputs writes the .am/.ob/.ent/.ext files for a successful
// result. On a failed result it deletes any partially written files for
// this basename instead, per spec section 5's cleanup discipline, and
// returns an error describing the failure instead of writing anything.
func WriteOutputs(dir string, res *Result) error {
	base := joinDir(dir, res.Basename)

	if !res.Succeeded {
		removeIfExists(base + ".ob")
		removeIfExists(base + ".ent")
		removeIfExists(base + ".ext")
		return fmt.Errorf("%s: assembly failed with %d error(s)", res.Basename, len(res.Diags))
	}

	if err := os.WriteFile(base+".am", []byte(res.Expanded), 0644); err != nil {
		return fmt.Errorf("writing %s.am: %w", res.Basename, err)
	}

	if err := os.WriteFile(base+".ob", []byte(secondpass.RenderObject(res.Second.Object)), 0644); err != nil {
		removeIfExists(base + ".ob")
		return fmt.Errorf("writing %s.ob: %w", res.Basename, err)
	}

	if len(res.Second.Entries) > 0 {
		if err := os.WriteFile(base+".ent", []byte(secondpass.RenderLabels(res.Second.Entries)), 0644); err != nil {
			removeIfExists(base + ".ob")
			removeIfExists(base + ".ent")
			return fmt.Errorf("writing %s.ent: %w", res.Basename, err)
		}
	}

	if len(res.Second.Externals) > 0 {
		sorted := secondpass.SortedExternals(res.Second.Externals)
		if err := os.WriteFile(base+".ext", []byte(secondpass.RenderLabels(sorted)), 0644); err != nil {
			removeIfExists(base + ".ob")
			removeIfExists(base + ".ent")
			removeIfExists(base + ".ext")
			return fmt.Errorf("writing %s.ext: %w", res.Basename, err)
		}
	}

	return nil
}

func removeIfExists(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}

func joinDir(dir, basename string) string {
	if dir == "" || dir == "." {
		return basename
	}
	return strings.TrimRight(dir, "/") + "/" + basename
}

// AssembleFile reads "<dir>/<basename>.as" and runs Assemble on its
// contents. Missing input files are reported, not fatal to the caller.
func AssembleFile(dir, basename string) (*Result, error) {
	path := joinDir(dir, basename) + ".as"
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided assembly basename
	if err != nil {
		return nil, fmt.Errorf("%s.as: %w", basename, err)
	}
	return Assemble(basename, string(content)), nil
}
