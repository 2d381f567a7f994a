// Package doccking supports the use of docck in your Go tests. A test
// keeps its check template under the testdata directory, named after the
// test, and runs it against the directory with the generated output:
//
//	func TestRendering(t *testing.T) {
//		out := renderDocs(t) // whatever produces the HTML
//		doccking.Fatal(t, "", out)
//	}
//
// with the directives in testdata/TestRendering.docck.
package doccking

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fractalqb/docck"
)

// GoTestdataDir is the name of Go's default directory for testdata (see go
// help test).
const GoTestdataDir = "testdata"

const (
	StdSuffix = ".docck"
	NoSuffix  = "\x00"
)

// TemplateRepo locates check templates for tests below a directory.
type TemplateRepo struct {
	Dir    string
	Suffix string
}

// Filename returns the template file for the current test. Without a hint
// it is <Dir>/<test name><suffix>, with a hint <Dir>/<test name>/<hint>.
func (tr TemplateRepo) Filename(t *testing.T, hint string) string {
	suffix := tr.Suffix
	switch suffix {
	case "":
		suffix = StdSuffix
	case NoSuffix:
		suffix = ""
	}
	if hint == "" {
		return filepath.Join(tr.Dir, t.Name()+suffix)
	}
	if suffix == "" || strings.HasSuffix(hint, suffix) {
		return filepath.Join(tr.Dir, t.Name(), hint)
	}
	return filepath.Join(tr.Dir, t.Name(), hint+suffix)
}

type Config struct {
	// TemplateName locates the check template for a test, defaults to
	// TemplateRepo{Dir: GoTestdataDir}.Filename.
	TemplateName func(t *testing.T, hint string) string
}

var defaultConfig = Config{
	TemplateName: TemplateRepo{Dir: GoTestdataDir}.Filename,
}

// Error checks docDir against the test's template and reports failed
// directives with t.Error.
func Error(t *testing.T, hint, docDir string) error {
	return defaultConfig.Error(t, hint, docDir)
}

// Fatal is like Error but stops the test on the first failing template.
func Fatal(t *testing.T, hint, docDir string) {
	defaultConfig.Fatal(t, hint, docDir)
}

func (cfg Config) Error(t *testing.T, hint, docDir string) error {
	err := cfg.check(t, hint, docDir)
	if err != nil {
		t.Error(err)
	}
	return err
}

func (cfg Config) Fatal(t *testing.T, hint, docDir string) {
	if err := cfg.check(t, hint, docDir); err != nil {
		t.Fatal(err)
	}
}

func (cfg Config) check(t *testing.T, hint, docDir string) error {
	name := cfg.TemplateName
	if name == nil {
		name = defaultConfig.TemplateName
	}
	template := name(t, hint)
	if _, err := os.Stat(template); os.IsNotExist(err) {
		return fmt.Errorf("check template %s does not exist", template)
	}
	ck := docck.Check{Dir: docDir}
	res, err := ck.File(template)
	if res != nil && res.ErrCount() > 0 {
		var sb strings.Builder
		res.WriteTo(&sb)
		t.Log(sb.String())
	}
	if err != nil {
		return err
	}
	if n := res.ErrCount(); n > 0 {
		return fmt.Errorf("%s: encountered %d errors", template, n)
	}
	return nil
}
