package docck

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/testerr"
)

func ExampleTemplateReader() {
	tr := NewTemplateString("example", `Prose before the checks is ignored.
@has foo.html
@!has 'missing file.html'
More prose. @count foo.html //li 3
`)
	for {
		d, err := tr.Next()
		if err != nil {
			break
		}
		fmt.Println(d.Line, d.Negated, d.Name, d.Args)
	}
	// Output:
	// 2 false has [foo.html]
	// 3 true has [missing file.html]
	// 4 false count [foo.html //li 3]
}

func readAll(t *testing.T, tr *TemplateReader) (ds []*Directive, errs []error) {
	t.Helper()
	for {
		d, err := tr.Next()
		switch {
		case errors.Is(err, io.EOF):
			return ds, errs
		case err != nil:
			errs = append(errs, err)
		default:
			ds = append(ds, d)
		}
	}
}

func TestTemplateReader_continuation(t *testing.T) {
	t.Run("re-indented argument", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "@has foo.html \\\n    'bar'\n")
		d := testerr.Shall1(tr.Next()).BeNil(t)
		if d.Line != 1 {
			t.Errorf("directive on line %d, want 1", d.Line)
		}
		if !slices.Equal(d.Args, []string{"foo.html", "bar"}) {
			t.Errorf("wrong args %q", d.Args)
		}
		if d.Context != "@has foo.html 'bar'" {
			t.Errorf("wrong context %q", d.Context)
		}
	})
	t.Run("shared prefix is dropped once", func(t *testing.T) {
		tr := NewTemplateString(t.Name(),
			"// @has foo.html \\\n//     'pat tern'\n",
		)
		d := testerr.Shall1(tr.Next()).BeNil(t)
		if !slices.Equal(d.Args, []string{"foo.html", "pat tern"}) {
			t.Errorf("wrong args %q", d.Args)
		}
	})
	t.Run("multi line group keeps first line number", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), `ignored prose
@count foo.html \
    '//li' \
    3
@has foo.html
`)
		ds, errs := readAll(t, tr)
		if len(errs) > 0 {
			t.Fatal(errs)
		}
		if len(ds) != 2 {
			t.Fatalf("read %d directives, want 2", len(ds))
		}
		if ds[0].Line != 2 || ds[1].Line != 5 {
			t.Errorf("directive lines %d and %d, want 2 and 5", ds[0].Line, ds[1].Line)
		}
		if !slices.Equal(ds[0].Args, []string{"foo.html", "//li", "3"}) {
			t.Errorf("wrong args %q", ds[0].Args)
		}
	})
	t.Run("trailing backslash at EOF", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "@has foo.html \\")
		_, err := tr.Next()
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Fatalf("got %v, want *SyntaxError", err)
		}
		if synErr.Message() != "Trailing backslash at the end of the file" {
			t.Errorf("wrong message %q", synErr.Message())
		}
		if _, err = tr.Next(); !errors.Is(err, io.EOF) {
			t.Errorf("got %v after syntax error, want EOF", err)
		}
	})
	t.Run("trailing backslash reports the last line", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "@has foo.html \\\n    'bar' \\")
		_, err := tr.Next()
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Fatalf("got %v, want *SyntaxError", err)
		}
		if synErr.Line != 2 || synErr.Text != `    'bar' \` {
			t.Errorf("reported %d: %q, want the last physical line",
				synErr.Line, synErr.Text)
		}
	})
}

func TestTemplateReader_recognition(t *testing.T) {
	t.Run("marker needs whitespace before it", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "mail@hastings.example\n")
		if _, err := tr.Next(); !errors.Is(err, io.EOF) {
			t.Errorf("glued @ not ignored: %v", err)
		}
	})
	t.Run("hyphenated names", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "@valid-html foo.html\n")
		d := testerr.Shall1(tr.Next()).BeNil(t)
		if d.Name != "valid-html" {
			t.Errorf("wrong name %q", d.Name)
		}
	})
	t.Run("negation", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "@!has foo.html\n")
		d := testerr.Shall1(tr.Next()).BeNil(t)
		if !d.Negated || d.Name != "has" {
			t.Errorf("read %+v, want negated has", d)
		}
	})
	t.Run("non-whitespace after name", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "@has* foo.html\n@has bar.html\n")
		_, err := tr.Next()
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Fatalf("got %v, want *SyntaxError", err)
		}
		if synErr.Message() != "Invalid template syntax" {
			t.Errorf("wrong message %q", synErr.Message())
		}
		// the broken line is skipped, not fatal
		d := testerr.Shall1(tr.Next()).BeNil(t)
		if !slices.Equal(d.Args, []string{"bar.html"}) {
			t.Errorf("wrong args %q after skipped line", d.Args)
		}
	})
	t.Run("unterminated quote", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "@has foo.html 'oops\n")
		_, err := tr.Next()
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Fatalf("got %v, want *SyntaxError", err)
		}
	})
	t.Run("line longer than the default scanner buffer", func(t *testing.T) {
		pattern := strings.Repeat("x", 128*1024)
		tr := NewTemplateString(t.Name(), "@has foo.html '"+pattern+"'\n")
		d := testerr.Shall1(tr.Next()).BeNil(t)
		if len(d.Args) != 2 || d.Args[1] != pattern {
			t.Error("long line not read intact")
		}
	})
	t.Run("later marker on the same line", func(t *testing.T) {
		tr := NewTemplateString(t.Name(), "see @ the @has foo.html\n")
		d := testerr.Shall1(tr.Next()).BeNil(t)
		if d.Name != "has" || !slices.Equal(d.Args, []string{"foo.html"}) {
			t.Errorf("read %+v", d)
		}
	})
}
