package docck

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Placeholder repeats the most recently used path when given as the path
// argument of a directive.
const Placeholder = "-"

// CachedFiles resolves directive paths against a root directory and
// memoizes what has been read. Raw text and parsed tree of a path are
// cached independently, each is computed at most once per run. CachedFiles
// also keeps the "last used path" the Placeholder resolves to. It is
// scoped to a single check run and not safe for concurrent use.
type CachedFiles struct {
	root     string
	files    map[string]string
	trees    map[string]*Tree
	lastPath string
}

func NewCachedFiles(root string) *CachedFiles {
	return &CachedFiles{
		root:  root,
		files: make(map[string]string),
		trees: make(map[string]*Tree),
	}
}

// Root returns the directory paths are resolved against.
func (cf *CachedFiles) Root() string { return cf.root }

// ResolvePath normalizes p and remembers it as the last used path. The
// Placeholder resolves to the previously remembered path; using it before
// any real path is an InvalidDirective error.
func (cf *CachedFiles) ResolvePath(p string) (string, error) {
	if p != Placeholder {
		p = path.Clean(p)
		cf.lastPath = p
		return p, nil
	}
	if cf.lastPath == "" {
		return "", InvalidDirective{
			Cause: "Tried to use the previous path in the first command",
		}
	}
	return cf.lastPath, nil
}

// File returns the raw content of p. A missing or unreadable file is a
// FailedCheck error, the condition is recoverable per directive.
func (cf *CachedFiles) File(p string) (string, error) {
	p, err := cf.ResolvePath(p)
	if err != nil {
		return "", err
	}
	if data, ok := cf.files[p]; ok {
		return data, nil
	}
	data, err := cf.read(p)
	if err != nil {
		return "", err
	}
	cf.files[p] = string(data)
	return cf.files[p], nil
}

// Tree returns the parsed tree of p. A missing file is a FailedCheck
// error; a file that cannot be parsed is a *ParseError, which aborts the
// whole run.
func (cf *CachedFiles) Tree(p string) (*Tree, error) {
	p, err := cf.ResolvePath(p)
	if err != nil {
		return nil, err
	}
	if t, ok := cf.trees[p]; ok {
		return t, nil
	}
	data, err := cf.read(p)
	if err != nil {
		return nil, err
	}
	t, err := ParseTree(p, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	cf.trees[p] = t
	return t, nil
}

func (cf *CachedFiles) read(p string) ([]byte, error) {
	abspath := filepath.Join(cf.root, filepath.FromSlash(p))
	if st, err := os.Stat(abspath); err != nil || st.IsDir() {
		return nil, FailedCheck{Cause: fmt.Sprintf("File does not exist %q", p)}
	}
	data, err := os.ReadFile(abspath)
	if err != nil {
		return nil, FailedCheck{Cause: fmt.Sprintf("File does not exist %q", p)}
	}
	return data, nil
}
