package docck

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/testerr"
)

const queryDoc = `<html><head><title>T</title></head><body>
<h1 class="fqn">Crate <span>demo</span></h1>
<div class="impl"><code>one</code><p><code>two</code></p></div>
<div class="impl2"><code>three</code></div>
<ul><li>a</li><li>b</li><li>c</li></ul>
<a href="x.html">X</a><a>no href</a>
</body></html>`

func queryTree(t *testing.T) *Tree {
	t.Helper()
	return testerr.Shall1(ParseTreeString(t.Name(), queryDoc)).BeNil(t)
}

func findTexts(t *testing.T, tree *Tree, query string) []string {
	t.Helper()
	pth := testerr.Shall1(ParsePath(query)).BeNil(t)
	var res []string
	for _, n := range pth.Find(tree) {
		if a := pth.Attr(); a != "" {
			if v, ok := n.Attr[a]; ok {
				res = append(res, v)
			}
		} else {
			res = append(res, n.Flatten())
		}
	}
	return res
}

func ExamplePath_Find() {
	tree, err := ParseTreeString("example", queryDoc)
	if err != nil {
		fmt.Println(err)
		return
	}
	pth, err := ParsePath(`.//div[@class='impl']//code`)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range pth.Find(tree) {
		fmt.Println(n.Flatten())
	}
	// Output:
	// one
	// two
}

func TestPath_find(t *testing.T) {
	tree := queryTree(t)
	check := func(t *testing.T, query string, want ...string) {
		t.Helper()
		got := findTexts(t, tree, query)
		if len(got) != len(want) {
			t.Fatalf("%s: found %q, want %q", query, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s: found %q, want %q", query, got, want)
			}
		}
	}

	t.Run("descendants in document order", func(t *testing.T) {
		check(t, "//code", "one", "two", "three")
	})
	t.Run("deep match before shallow match", func(t *testing.T) {
		nested := testerr.Shall1(ParseTreeString(t.Name(),
			`<body><div><p><code>first</code></p></div><code>second</code><div><code>third</code></div></body>`,
		)).BeNil(t)
		got := findTexts(t, nested, "//code")
		if !slices.Equal(got, []string{"first", "second", "third"}) {
			t.Errorf("found %q", got)
		}
		got = findTexts(t, nested, "//div//code")
		if !slices.Equal(got, []string{"first", "third"}) {
			t.Errorf("below div found %q", got)
		}
	})
	t.Run("child step", func(t *testing.T) {
		check(t, "//ul/li", "a", "b", "c")
		check(t, "//div/code", "one", "three")
	})
	t.Run("wildcard", func(t *testing.T) {
		check(t, "//ul/*", "a", "b", "c")
	})
	t.Run("nested descendant", func(t *testing.T) {
		check(t, ".//div[@class='impl']//code", "one", "two")
	})
	t.Run("attribute predicates", func(t *testing.T) {
		check(t, "//a[@href]", "X")
		check(t, `//a[@href="x.html"]`, "X")
		check(t, `//a[@href='nope.html']`)
	})
	t.Run("child element predicate", func(t *testing.T) {
		check(t, "//div[code]", "onetwo", "three")
	})
	t.Run("positions", func(t *testing.T) {
		check(t, "//li[1]", "a")
		check(t, "//li[2]", "b")
		check(t, "//li[last()]", "c")
		check(t, "//li[last()-1]", "b")
		check(t, "//li[4]")
	})
	t.Run("parent dedups", func(t *testing.T) {
		pth := testerr.Shall1(ParsePath("//code/..")).BeNil(t)
		if n := len(pth.Find(tree)); n != 3 {
			t.Errorf("found %d parents, want 3", n)
		}
	})
	t.Run("self", func(t *testing.T) {
		check(t, "//code/.", "one", "two", "three")
	})
	t.Run("text terminal", func(t *testing.T) {
		check(t, "//title/text()", "T")
	})
	t.Run("attribute terminal", func(t *testing.T) {
		check(t, "//a/@href", "x.html")
	})
	t.Run("root element is reachable", func(t *testing.T) {
		check(t, "//title", "T")
		if n := len(findTexts(t, tree, "//html/body")); n != 1 {
			t.Error("cannot step from the top element")
		}
	})
	t.Run("flattened match text", func(t *testing.T) {
		check(t, `//h1[@class='fqn']`, "Crate demo")
	})
}

func TestPath_count(t *testing.T) {
	tree := queryTree(t)
	for query, want := range map[string]int{
		"//code":        3,
		"//body/*":      6,
		"//a":           2,
		"//a/@href":     1, // attribute count skips a without href
		"//div[@class]": 2,
	} {
		pth := testerr.Shall1(ParsePath(query)).BeNil(t)
		if got := pth.Count(tree); got != want {
			t.Errorf("%s: counted %d, want %d", query, got, want)
		}
	}
}

func TestParsePath_rejects(t *testing.T) {
	for _, query := range []string{
		"title",          // non-absolute
		"./title",        // non-absolute
		"/html/body",     // non-absolute in the fragment's sense
		"//",             // no step
		"//a[",           // unterminated predicate
		"//a[]",          // empty predicate
		"//a[0]",         // positions are 1-based
		"//a[@]",         // missing attribute name
		"//a[@x=y]",      // unquoted value
		"//a[foo(1)]",    // unsupported function
		"//a/",           // trailing slash
		"//a///b",        // empty step
		"//a b",          // junk in step name
		"//a/@href/more", // attribute selector must be terminal
	} {
		if _, err := ParsePath(query); err == nil {
			t.Errorf("accepted %q", query)
		}
	}
	_, err := ParsePath("h1")
	if err == nil || !strings.Contains(err.Error(), "Non-absolute XPath") {
		t.Errorf("non-absolute error message: %v", err)
	}
}
