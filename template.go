package docck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
)

// Directive is one check command read from a template. It is created by a
// TemplateReader and never modified afterwards.
type Directive struct {
	// Negated is set when the directive name was prefixed with '!'.
	Negated bool
	// Name is the directive name without '@' and '!'.
	Name string
	// Args are the unquoted arguments in source order.
	Args []string
	// Line is the number of the first physical line, starting at 1.
	Line int
	// Context is the complete logical line the directive was read from.
	Context string
}

// SyntaxError reports a template line that cannot be used as a directive.
// It is not fatal for reading the template, callers log it and continue
// with the next line.
type SyntaxError struct {
	Line int
	Text string
	msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.msg)
}

// Message returns the problem description without the line prefix.
func (e *SyntaxError) Message() string { return e.msg }

// TemplateReader reads directives from a template text. Lines without a
// directive marker are skipped. A physical line ending with a single
// backslash is joined with the following line, see the package
// documentation for the joining rules.
type TemplateReader struct {
	src string
	rd  io.Reader
	scn *bufio.Scanner
	lno int
}

// maxLineLen caps the length of one physical template line. Templates are
// source files, a line this long is broken input rather than a real check.
const maxLineLen = 16 * 1024 * 1024

func NewTemplateReader(name string, r io.Reader) *TemplateReader {
	scn := bufio.NewScanner(r)
	scn.Buffer(nil, maxLineLen)
	return &TemplateReader{
		src: name,
		rd:  r,
		scn: scn,
	}
}

func NewTemplateString(name, text string) *TemplateReader {
	return NewTemplateReader(name, strings.NewReader(text))
}

func OpenTemplateFile(file string) (*TemplateReader, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	return NewTemplateReader(file, r), nil
}

func (tr *TemplateReader) Close() error {
	tr.scn = nil
	if c, ok := tr.rd.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (tr *TemplateReader) Name() string { return tr.src }

// Line returns the number of the most recently read physical line.
func (tr *TemplateReader) Line() int { return tr.lno }

// Next returns the next directive of the template. It returns io.EOF after
// the last directive. A *SyntaxError return describes a broken line that
// was skipped; reading can simply be continued.
func (tr *TemplateReader) Next() (*Directive, error) {
	for {
		lno, line, err := tr.logicalLine()
		if err != nil {
			return nil, err
		}
		d, err := parseDirective(lno, line)
		switch {
		case err != nil:
			return nil, err
		case d != nil:
			return d, nil
		}
	}
}

// logicalLine reads the next logical line, joining backslash continuations.
// A continuation line first has the longest prefix it shares with the first
// physical line of the group removed and is then trimmed of leading
// whitespace. This way continuations can be re-indented without repeating
// the shared lead-in.
func (tr *TemplateReader) logicalLine() (lno int, line string, err error) {
	var (
		first     string // first physical line of a continuation group
		last      string // most recent physical line as it was read
		catenated strings.Builder
	)
	joining := false
	for {
		if !tr.scn.Scan() {
			if err = tr.scn.Err(); err != nil {
				return tr.lno, "", err
			}
			if joining {
				return lno, "", &SyntaxError{
					Line: tr.lno,
					Text: last,
					msg:  "Trailing backslash at the end of the file",
				}
			}
			return tr.lno, "", io.EOF
		}
		tr.lno++
		l := strings.TrimRight(tr.scn.Text(), "\r")
		last = l
		if joining {
			l = strings.TrimLeft(l[commonPrefixLen(l, first):], " \t")
		} else {
			lno = tr.lno
		}
		if strings.HasSuffix(l, `\`) {
			l = l[:len(l)-1]
			if !joining {
				first = l
				joining = true
			}
			catenated.WriteString(l)
			continue
		}
		catenated.WriteString(l)
		return lno, catenated.String(), nil
	}
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// parseDirective recognizes a directive in a logical line. The marker '@'
// must be at the start of the line or preceded by whitespace and must be
// followed by an optional '!' and a directive name. Lines without such a
// marker yield (nil, nil).
func parseDirective(lno int, line string) (*Directive, error) {
	for i := 0; i < len(line); i++ {
		if line[i] != '@' {
			continue
		}
		if i > 0 {
			r, _ := utf8.DecodeLastRuneInString(line[:i])
			if !unicode.IsSpace(r) {
				continue
			}
		}
		rest := line[i+1:]
		negated := strings.HasPrefix(rest, "!")
		if negated {
			rest = rest[1:]
		}
		name := scanDirectiveName(rest)
		if name == "" {
			continue
		}
		args := rest[len(name):]
		if args != "" && args[0] != ' ' && args[0] != '\t' {
			return nil, &SyntaxError{Line: lno, Text: line, msg: "Invalid template syntax"}
		}
		split, err := shellquote.Split(args)
		if err != nil {
			return nil, &SyntaxError{
				Line: lno, Text: line,
				msg: fmt.Sprintf("Invalid directive arguments: %s", err),
			}
		}
		return &Directive{
			Negated: negated,
			Name:    name,
			Args:    split,
			Line:    lno,
			Context: line,
		}, nil
	}
	return nil, nil
}

// scanDirectiveName returns the longest prefix of s matching
// [A-Za-z]+(-[A-Za-z]+)*.
func scanDirectiveName(s string) string {
	i := scanLetters(s, 0)
	if i == 0 {
		return ""
	}
	for i < len(s) && s[i] == '-' {
		j := scanLetters(s, i+1)
		if j == i+1 {
			break
		}
		i = j
	}
	return s[:i]
}

func scanLetters(s string, i int) int {
	for i < len(s) {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		i++
	}
	return i
}
