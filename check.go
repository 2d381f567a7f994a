package docck

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"git.fractalqb.de/fractalqb/icontainer/islist"
)

// FailedCheck is the error of a directive whose condition did not hold,
// e.g. a pattern that did not match or a missing file. It is logged as a
// diagnostic and the run continues.
type FailedCheck struct{ Cause string }

func (e FailedCheck) Error() string { return e.Cause }

// InvalidDirective is the error of a directive that is structurally
// unusable: unknown name, wrong argument count, unsupported query shape or
// the Placeholder before any real path. Negation does not apply to it.
type InvalidDirective struct{ Cause string }

func (e InvalidDirective) Error() string { return e.Cause }

// Diagnostic is one logged check failure. Message is the headline printed
// after the source line number, Detail an optional cause and Context the
// original directive text.
type Diagnostic struct {
	Line    int
	Message string
	Detail  string
	Context string

	lsNext *Diagnostic
}

// ListNext to implement intrusive singly linked list
func (d *Diagnostic) ListNext() islist.Node {
	if d.lsNext == nil {
		return nil
	}
	return d.lsNext
}

// SetListNext to implement intrusive singly linked list
func (d *Diagnostic) SetListNext(n islist.Node) {
	if n == nil {
		d.lsNext = nil
	} else {
		d.lsNext = n.(*Diagnostic)
	}
}

func (d *Diagnostic) write(w io.Writer) (n int64, err error) {
	c, err := fmt.Fprintf(w, "%d: %s\n", d.Line, d.Message)
	n += int64(c)
	if err != nil {
		return n, err
	}
	if d.Detail != "" {
		c, err = fmt.Fprintf(w, "\t%s\n", d.Detail)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	if d.Context != "" {
		c, err = fmt.Fprintf(w, "\t%s\n", d.Context)
		n += int64(c)
	}
	return n, err
}

// Result collects the diagnostics of one check run in source order. The
// number of diagnostics is the run's failure signal: a run with
// ErrCount() == 0 passed.
type Result struct {
	diags *islist.List
	count int
}

func (r *Result) ErrCount() int { return r.count }

// Each calls do for every diagnostic in the order they were logged.
func (r *Result) Each(do func(*Diagnostic)) {
	if r.diags == nil {
		return
	}
	for d := r.diags.Front().(*Diagnostic); d != nil; d = d.lsNext {
		do(d)
	}
}

// WriteTo writes all diagnostics in the template checker's report format,
// one "<line>: <message>" line plus indented detail and directive text.
func (r *Result) WriteTo(w io.Writer) (n int64, err error) {
	r.Each(func(d *Diagnostic) {
		if err != nil {
			return
		}
		var c int64
		c, err = d.write(w)
		n += c
	})
	return n, err
}

func (r *Result) add(d *Diagnostic) {
	if r.diags == nil {
		r.diags = islist.New(d)
	} else {
		r.diags.PushBack(d)
	}
	r.count++
}

func (r *Result) failed(d *Directive, cause string) {
	neg := ""
	if d.Negated {
		neg = "!"
	}
	r.add(&Diagnostic{
		Line:    d.Line,
		Message: fmt.Sprintf("@%s%s check failed", neg, d.Name),
		Detail:  cause,
		Context: d.Context,
	})
}

func (r *Result) invalid(d *Directive, cause string) {
	r.add(&Diagnostic{Line: d.Line, Message: cause, Context: d.Context})
}

// Check runs the directives of a template against the files below Dir. The
// zero value is valid apart from Dir and a Check can be reused; every run
// gets its own file cache and result. It must not be used concurrently.
type Check struct {
	// Dir is the target directory all directive paths resolve against.
	Dir string
}

// File checks the template read from file. See Reader.
func (ck *Check) File(template string) (*Result, error) {
	tr, err := OpenTemplateFile(template)
	if err != nil {
		return nil, err
	}
	defer tr.Close()
	return ck.run(tr)
}

// Reader checks the template read from r. The returned Result lists all
// failed and invalid directives. A non-nil error means the run was
// aborted, either by an I/O problem or by a target file that could not be
// parsed (*ParseError); the Result still holds the diagnostics logged up
// to that point.
func (ck *Check) Reader(name string, r io.Reader) (*Result, error) {
	return ck.run(NewTemplateReader(name, r))
}

// String checks the template given as a string. See Reader.
func (ck *Check) String(name, template string) (*Result, error) {
	return ck.run(NewTemplateString(name, template))
}

func (ck *Check) run(tpl *TemplateReader) (*Result, error) {
	res := new(Result)
	files := NewCachedFiles(ck.Dir)
	for {
		d, err := tpl.Next()
		var synErr *SyntaxError
		switch {
		case errors.Is(err, io.EOF):
			return res, nil
		case errors.As(err, &synErr):
			res.add(&Diagnostic{
				Line:    synErr.Line,
				Message: synErr.Message(),
				Context: synErr.Text,
			})
			continue
		case err != nil:
			return res, err
		}
		if err = checkDirective(d, files, res); err != nil {
			return res, err
		}
	}
}

// checkDirective evaluates one directive and logs its outcome. The only
// non-nil error it returns is fatal for the run.
func checkDirective(d *Directive, files *CachedFiles, res *Result) error {
	ret, cause, err := evalDirective(d, files)
	var (
		fail    FailedCheck
		invalid InvalidDirective
	)
	switch {
	case err == nil:
		if ret == d.Negated {
			res.failed(d, cause)
		}
	case errors.As(err, &fail):
		res.failed(d, fail.Cause)
	case errors.As(err, &invalid):
		res.invalid(d, invalid.Cause)
	default:
		return err
	}
	return nil
}

// evalDirective dispatches on the directive name. It returns the raw
// condition value before negation and the cause text for a failure
// diagnostic. Errors: FailedCheck and InvalidDirective become diagnostics,
// anything else aborts the run.
func evalDirective(d *Directive, files *CachedFiles) (ret bool, cause string, err error) {
	switch d.Name {
	case "has", "matches":
		return evalStringTest(d, files)
	case "count":
		return evalCountTest(d, files)
	case "valid-html", "valid-links":
		return false, "", InvalidDirective{Cause: "Unimplemented @" + d.Name}
	}
	return false, "", InvalidDirective{Cause: "Unrecognized @" + d.Name}
}

func evalStringTest(d *Directive, files *CachedFiles) (ret bool, cause string, err error) {
	regex := d.Name == "matches"
	switch {
	case len(d.Args) == 1 && !regex: // @has <path>: file existence
		_, err := files.File(d.Args[0])
		var fail FailedCheck
		switch {
		case err == nil:
			return true, "", nil
		case errors.As(err, &fail):
			// negation turns a missing file into a passed check
			return false, fail.Cause, nil
		}
		return false, "", err
	case len(d.Args) == 2: // raw text match
		data, err := files.File(d.Args[0])
		if err != nil {
			return false, "", err
		}
		ret, err := match(d.Args[1], data, regex)
		return ret, "`PATTERN` did not match", err
	case len(d.Args) == 3: // tree query match
		tree, err := files.Tree(d.Args[0])
		if err != nil {
			return false, "", err
		}
		pth, err := parseQuery(d.Args[1])
		if err != nil {
			return false, "", err
		}
		cause = "`XPATH PATTERN` did not match"
		for _, n := range pth.Find(tree) {
			var candidate string
			if a := pth.Attr(); a != "" {
				var ok bool
				if candidate, ok = n.Attr[a]; !ok {
					continue // absent attribute is no empty-string match
				}
			} else {
				candidate = n.Flatten()
			}
			ok, err := match(d.Args[2], candidate, regex)
			if err != nil {
				return false, "", err
			}
			if ok {
				return true, cause, nil
			}
		}
		return false, cause, nil
	}
	return false, "", invalidArgCount(d)
}

func evalCountTest(d *Directive, files *CachedFiles) (ret bool, cause string, err error) {
	if len(d.Args) != 3 {
		return false, "", invalidArgCount(d)
	}
	expected, err := strconv.Atoi(d.Args[2])
	if err != nil {
		return false, "", InvalidDirective{
			Cause: fmt.Sprintf("Invalid count %q", d.Args[2]),
		}
	}
	tree, err := files.Tree(d.Args[0])
	if err != nil {
		return false, "", err
	}
	pth, err := parseQuery(d.Args[1])
	if err != nil {
		return false, "", err
	}
	found := pth.Count(tree)
	return expected == found,
		fmt.Sprintf("Expected %d occurrences but found %d", expected, found),
		nil
}

func parseQuery(query string) (*Path, error) {
	pth, err := ParsePath(query)
	if err != nil {
		return nil, InvalidDirective{Cause: err.Error()}
	}
	return pth, nil
}

func match(pattern, candidate string, regex bool) (bool, error) {
	ok, err := Match(candidate, pattern, regex)
	if err != nil {
		return false, InvalidDirective{
			Cause: fmt.Sprintf("Invalid pattern %q: %s", pattern, err),
		}
	}
	return ok, nil
}

func invalidArgCount(d *Directive) error {
	return InvalidDirective{
		Cause: fmt.Sprintf("Invalid number of @%s arguments", d.Name),
	}
}
