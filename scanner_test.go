package css

import (
	"fmt"
	"reflect"
	"testing"
)

type pos struct {
	line int
	col  int
}

func (p pos) String() string {
	if p.line == 0 && p.col == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d:", p.line, p.col)
}

// token is the projection of a Node the scanner tests compare against:
// just the fields the tokenizer is responsible for.
type token struct {
	pos     pos
	kind    Kind
	val     string
	repr    string
	unit    string
	start   uint32
	end     uint32
	isIdent bool
	hasInt  bool
	iv      int64
}

func (t token) String() string {
	switch t.kind {
	case Number, Percentage, Dimension:
		return fmt.Sprintf("{%s%s %q %q int=%v/%d}", t.pos, t.kind, t.repr, t.unit, t.hasInt, t.iv)
	case UnicodeRange:
		return fmt.Sprintf("{%s%s 0x%x-0x%x}", t.pos, t.kind, t.start, t.end)
	case Hash:
		return fmt.Sprintf("{%s%s %q id=%v}", t.pos, t.kind, t.val, t.isIdent)
	default:
		return fmt.Sprintf("{%s%s %q}", t.pos, t.kind, t.val)
	}
}

func project(n Node, withPos bool) token {
	tok := token{
		kind:    n.Kind,
		val:     n.Value,
		repr:    n.Repr,
		unit:    n.Unit,
		start:   n.RangeStart,
		end:     n.RangeEnd,
		isIdent: n.IsIdentifier,
		hasInt:  n.HasInt,
		iv:      n.Int,
	}
	if withPos {
		tok.pos = pos{n.Line, n.Col}
	}
	return tok
}

var scannerTests = []struct {
	name  string
	input string
	want  []token
	pos   bool
}{
	{
		name:  "basic rule",
		input: `img { foo: "Hello, 世界" }`,
		want: []token{
			{kind: Ident, val: "img"},
			{kind: Whitespace, val: " "},
			{kind: Literal, val: "{"},
			{kind: Whitespace, val: " "},
			{kind: Ident, val: "foo"},
			{kind: Literal, val: ":"},
			{kind: Whitespace, val: " "},
			{kind: String, val: "Hello, 世界"},
			{kind: Whitespace, val: " "},
			{kind: Literal, val: "}"},
		},
	},
	{
		name:  "numeric forms",
		input: `font-size:+2.34em;border:0;fraction:.1;e:1e-10`,
		want: []token{
			{kind: Ident, val: "font-size"},
			{kind: Literal, val: ":"},
			{kind: Dimension, repr: "+2.34", unit: "em"},
			{kind: Literal, val: ";"},
			{kind: Ident, val: "border"},
			{kind: Literal, val: ":"},
			{kind: Number, repr: "0", hasInt: true, iv: 0},
			{kind: Literal, val: ";"},
			{kind: Ident, val: "fraction"},
			{kind: Literal, val: ":"},
			{kind: Number, repr: ".1"},
			{kind: Literal, val: ";"},
			{kind: Ident, val: "e"},
			{kind: Literal, val: ":"},
			{kind: Number, repr: "1e-10"},
		},
	},
	{
		name:  "integer flag",
		input: `42 -17 3.14 2e3 50%`,
		want: []token{
			{kind: Number, repr: "42", hasInt: true, iv: 42},
			{kind: Whitespace, val: " "},
			{kind: Number, repr: "-17", hasInt: true, iv: -17},
			{kind: Whitespace, val: " "},
			{kind: Number, repr: "3.14"},
			{kind: Whitespace, val: " "},
			{kind: Number, repr: "2e3"},
			{kind: Whitespace, val: " "},
			{kind: Percentage, repr: "50", hasInt: true, iv: 50},
		},
	},
	{
		name:  "escape decoding",
		input: `\41 BC \26 B`,
		want: []token{
			{kind: Ident, val: "ABC"},
			{kind: Whitespace, val: " "},
			{kind: Ident, val: "&B"},
		},
	},
	{
		name:  "hash forms",
		input: `#foo #123 #-x #\31 23`,
		want: []token{
			{kind: Hash, val: "foo", isIdent: true},
			{kind: Whitespace, val: " "},
			{kind: Hash, val: "123"},
			{kind: Whitespace, val: " "},
			{kind: Hash, val: "-x", isIdent: true},
			{kind: Whitespace, val: " "},
			{kind: Hash, val: "123", isIdent: true},
		},
	},
	{
		name:  "unicode ranges",
		input: `u+0102?? u+01-05 u+Fa`,
		want: []token{
			{kind: UnicodeRange, start: 0x010200, end: 0x0102ff},
			{kind: Whitespace, val: " "},
			{kind: UnicodeRange, start: 0x01, end: 0x05},
			{kind: Whitespace, val: " "},
			{kind: UnicodeRange, start: 0xfa, end: 0xfa},
		},
	},
	{
		name:  "cdo cdc",
		input: `<!-- x -->`,
		want: []token{
			{kind: Literal, val: "<!--"},
			{kind: Whitespace, val: " "},
			{kind: Ident, val: "x"},
			{kind: Whitespace, val: " "},
			{kind: Literal, val: "-->"},
		},
	},
	{
		name:  "custom property ident",
		input: `--main-color`,
		want: []token{
			{kind: Ident, val: "--main-color"},
		},
	},
	{
		name: "string escaped newline",
		input: `"foo\
bar"`,
		want: []token{
			{kind: String, val: "foobar"},
		},
	},
	{
		name:  "string hex escape",
		input: `"a\d\a "`,
		want: []token{
			{kind: String, val: "a\r\n"},
		},
	},
	{
		name:  "bad string newline",
		input: "name: \"foo\n",
		want: []token{
			{kind: Ident, val: "name"},
			{kind: Literal, val: ":"},
			{kind: Whitespace, val: " "},
			{kind: ParseErrorNode},
			{kind: Whitespace, val: "\n"},
		},
	},
	{
		name:  "eof in string",
		input: `"foo`,
		want: []token{
			{kind: ParseErrorNode},
		},
	},
	{
		name:  "url forms",
		input: `url(data:foo\A  ) url( /x )`,
		want: []token{
			{kind: URL, val: "data:foo\n"},
			{kind: Whitespace, val: " "},
			{kind: URL, val: "/x"},
		},
	},
	{
		name:  "bad url",
		input: `url(a"b) x`,
		want: []token{
			{kind: ParseErrorNode},
			{kind: Whitespace, val: " "},
			{kind: Ident, val: "x"},
		},
	},
	{
		name:  "eof in url",
		input: `url(foo`,
		want: []token{
			{kind: ParseErrorNode},
		},
	},
	{
		name:  "comment",
		input: `a/* b */c`,
		want: []token{
			{kind: Ident, val: "a"},
			{kind: Comment, val: " b "},
			{kind: Ident, val: "c"},
		},
	},
	{
		name:  "unterminated comment",
		input: `a /* b`,
		want: []token{
			{kind: Ident, val: "a"},
			{kind: Whitespace, val: " "},
			{kind: Comment, val: " b"},
		},
	},
	{
		name:  "newline normalization",
		input: "a\rb\fc",
		want: []token{
			{kind: Ident, val: "a"},
			{kind: Whitespace, val: "\n"},
			{kind: Ident, val: "b"},
			{kind: Whitespace, val: "\n"},
			{kind: Ident, val: "c"},
		},
	},
	{
		name:  "nul replacement",
		input: "a\x00b",
		want: []token{
			{kind: Ident, val: "a�b"},
		},
	},
	{
		name:  "lone delims",
		input: `+ . < @ \`,
		want: []token{
			{kind: Literal, val: "+"},
			{kind: Whitespace, val: " "},
			{kind: Literal, val: "."},
			{kind: Whitespace, val: " "},
			{kind: Literal, val: "<"},
			{kind: Whitespace, val: " "},
			{kind: Literal, val: "@"},
			{kind: Whitespace, val: " "},
			{kind: ParseErrorNode},
		},
	},
	{
		name: "multiline positions",
		pos:  true,
		input: "a {\n" +
			"\tcolor: red;\n" +
			"}",
		want: []token{
			{pos: pos{1, 1}, kind: Ident, val: "a"},
			{pos: pos{1, 2}, kind: Whitespace, val: " "},
			{pos: pos{1, 3}, kind: Literal, val: "{"},
			{pos: pos{1, 4}, kind: Whitespace, val: "\n\t"},
			{pos: pos{2, 2}, kind: Ident, val: "color"},
			{pos: pos{2, 7}, kind: Literal, val: ":"},
			{pos: pos{2, 8}, kind: Whitespace, val: " "},
			{pos: pos{2, 9}, kind: Ident, val: "red"},
			{pos: pos{2, 12}, kind: Literal, val: ";"},
			{pos: pos{2, 13}, kind: Whitespace, val: "\n"},
			{pos: pos{3, 1}, kind: Literal, val: "}"},
		},
	},
}

func TestScanner(t *testing.T) {
	for _, test := range scannerTests {
		name := test.name
		if name == "" {
			name = test.input
		}
		t.Run(name, func(t *testing.T) {
			var got []token
			for _, n := range tokenizeRaw(test.input) {
				tok := project(n, test.pos)
				if n.Kind == ParseErrorNode {
					// the tests only assert that an error token appears
					// where expected, not its message text
					tok = token{pos: tok.pos, kind: ParseErrorNode}
				}
				got = append(got, tok)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("got:\n\t%v\nwant:\n\t%v", got, test.want)
			}
		})
	}
}

// Positions must be non-decreasing in (line, col) lexicographic order
// across the flat token stream.
func TestScannerPositionsMonotonic(t *testing.T) {
	inputs := []string{
		"a { color: red }\n.b { margin: 0 }\n",
		"@media print {\n  a { color: #fff }\n}\n",
		"/* c */ x\n\ny",
	}
	for _, input := range inputs {
		prev := pos{1, 1}
		for _, n := range tokenizeRaw(input) {
			cur := pos{n.Line, n.Col}
			if cur.line < prev.line || (cur.line == prev.line && cur.col < prev.col) {
				t.Errorf("input %q: token at %v after token at %v", input, cur, prev)
			}
			prev = cur
		}
	}
}

func TestScannerErrKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{`"foo`, ErrEOFInString},
		{"\"foo\nx", ErrBadString},
		{`url(foo`, ErrEOFInURL},
		{`url(a(b)`, ErrBadURL},
	}
	for _, test := range tests {
		var found string
		for _, n := range tokenizeRaw(test.input) {
			if n.Kind == ParseErrorNode {
				found = n.ErrKind
				break
			}
		}
		if found != test.kind {
			t.Errorf("tokenize(%q): error kind = %q, want %q", test.input, found, test.kind)
		}
	}
}

// Inputs that once sent a hand-rolled tokenizer into a loop or a panic.
func TestScannerDegenerateInputs(t *testing.T) {
	tests := []string{
		"\x80",
		"+",
		"-",
		"u+",
		"#",
		"\\",
		"url(",
		"0\x00\x000\x00\x000",
		"((((((((",
		"))))))))",
	}
	for _, test := range tests {
		tokenizeRaw(test) // must terminate
	}
}
