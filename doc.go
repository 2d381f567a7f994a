/*
Package docck checks generated HTML documentation against a template of
check directives. The template is an ordinary text file, often the very
source the documentation was generated from, with directives like @has
or @count embedded in it. Each directive states one thing that must
hold for a file in the output directory: that the file exists, that a
pattern occurs in its raw text or that a path query into its parsed
HTML finds a node with matching text, a matching attribute or a given
number of occurrences. Every line of the template without a directive
marker is ignored, so directives can live right inside prose, comments
or source code.

# Directives

A directive starts with '@', optionally followed by '!' to negate the
condition, then a name of letters and hyphens and a whitespace
separated argument list. The '@' must stand at the beginning of the
line or after whitespace. Arguments may be quoted with single or
double quotes to include whitespace. A line ending with a single
backslash continues on the next line; the continuation drops the
prefix it shares with the first line of the group and its remaining
leading whitespace, so continuations can be re-indented freely.

	@has PATH

checks that the file PATH exists. PATH is relative to the checked
directory. The placeholder '-' repeats the most recently used PATH of
an earlier directive.

	@has PATH PATTERN
	@matches PATH PATTERN

check that PATTERN occurs in the raw text of PATH. One occurrence is
enough. For @has the pattern and the file are whitespace-normalized,
every run of whitespace compares equal to a single space. For @matches
the pattern is a regular expression searched over the unmodified file;
inline flags such as (?i) or (?m) and the \A and \z anchors work as
usual.

	@has PATH XPATH PATTERN
	@matches PATH XPATH PATTERN

parse PATH as HTML and check that some node matched by XPATH satisfies
PATTERN, with the same literal/regexp distinction as above. If XPATH
ends in '/@attr' the attribute value of the matched nodes is compared,
nodes without the attribute never match. Otherwise the node's complete
character data with all child elements stripped is compared, which
conveniently ignores syntax highlighting spans and the like. An empty
PATTERN ("") checks the mere presence of a matching node or attribute.

	@count PATH XPATH COUNT

checks that XPATH matches exactly COUNT times in PATH.

Any directive can be negated: @!has foo.html checks that foo.html does
not exist. The directives @valid-html and @valid-links are recognized
but not implemented and always reported as invalid.

# Path queries

XPATH must be absolute, starting with '//' or './/'. The supported
fragment consists of the steps 'tag', '*', '.', '..' and '//', the
predicates [@attr], [@attr='value'], [tag], [POS], [last()] and
[last()-POS] with 1-based positions, and the terminals /text() and
/@attr. Examples:

	//pre                     any pre element
	//a[@href]                any a element with an href attribute
	//*[@class='impl']//code  code elements below class="impl"
	//h1[@class='fqn']/span[1]/a[last()]/@class
	                          class of the last a in the h1's first span

Queries outside the fragment are rejected as invalid directives rather
than interpreted on a best-effort basis.

# Parsing

The checked files are near-well-formed generated markup, not arbitrary
HTML, and the parser is tuned for exactly that: named and numeric
character references are decoded, void elements like <br> close
immediately, explicit <.../> syntax closes any element and attributes
without a value get the empty string. The non-breaking space counts as
an ordinary space. Beyond this every opened element needs its matching
closing tag: a file that violates that is broken output, and checking
aborts with a *ParseError instead of counting a failed directive.

# Results

A run evaluates all directives in source order and logs a Diagnostic
for every failed or invalid one; the run passes iff no diagnostic was
logged. See Check for the entry point and the cmd/docck command for
the command line front end.
*/
package docck
