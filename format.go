package css

import (
	"fmt"
	"strconv"
	"strings"
)

// The serializer walks any Node back into CSS text: per-kind textual
// rendering of escaped strings, URLs, and identifiers, plus a token-pair
// "ambiguous reparse" guard that inserts an empty comment between nodes
// whose naive concatenation would otherwise re-tokenize differently.

// Serialize concatenates the textual form of every node, inserting an
// empty comment between adjacent nodes whose concatenation would
// otherwise re-tokenize differently.
func Serialize(nodes []Node) string {
	var b strings.Builder
	var prev *Node
	for i := range nodes {
		n := &nodes[i]
		s := serializeNode(*n)
		if s == "" {
			continue
		}
		if prev != nil && needsSeparator(*prev, *n) {
			b.WriteString("/**/")
		}
		b.WriteString(s)
		prev = n
	}
	return b.String()
}

func serializeNode(n Node) string {
	switch n.Kind {
	case Whitespace:
		return n.Value
	case Comment:
		return "/*" + n.Value + "*/"
	case Ident:
		return identLikeText(n.Raw, n.Value)
	case AtKeyword:
		return "@" + identLikeText(n.Raw, n.Value)
	case Hash:
		return "#" + identLikeText(n.Raw, n.Value)
	case String:
		return serializeStringValue(n.Value)
	case URL:
		return "url(" + serializeURLContent(n.Value) + ")"
	case Number:
		return n.Repr
	case Percentage:
		return n.Repr + "%"
	case Dimension:
		return n.Repr + identLikeText(n.RawUnit, n.Unit)
	case UnicodeRange:
		return serializeUnicodeRange(n)
	case Literal:
		return n.Value
	case ParenBlock:
		return "(" + Serialize(n.Children) + ")"
	case SquareBlock:
		return "[" + Serialize(n.Children) + "]"
	case CurlyBlock:
		return "{" + Serialize(n.Children) + "}"
	case FunctionBlock:
		return identLikeText(n.Raw, n.Name) + "(" + Serialize(n.Children) + ")"
	case QualifiedRule:
		return Serialize(n.Prelude) + "{" + Serialize(n.Children) + "}"
	case AtRule:
		s := "@" + identLikeText(n.Raw, n.Name) + Serialize(n.Prelude)
		if n.HasBlock {
			return s + "{" + Serialize(n.Children) + "}"
		}
		return s + ";"
	case Declaration:
		s := identLikeText(n.Raw, n.Name) + ":" + Serialize(n.Children)
		if n.Important {
			s += "!important"
		}
		return s
	case ParseErrorNode:
		return ""
	default:
		return ""
	}
}

// identLikeText prefers the exact source text captured at tokenization
// (raw) so that re-serializing a parsed tree is byte-identical modulo the
// spec's whitespace/comment normalization; it falls back to escaping value
// for nodes built programmatically without a raw source span.
func identLikeText(raw, value string) string {
	if raw != "" {
		return raw
	}
	s, ok := serializeIdentifier(value)
	if !ok {
		return value
	}
	return s
}

func serializeStringValue(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteRune(c)
		case c == '\n':
			b.WriteString(`\A `)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func serializeURLContent(v string) string {
	var b strings.Builder
	for _, c := range v {
		switch {
		case c == '"' || c == '\'' || c == '\\' || c == '(' || c == ')' || isWhitespace(c) || isNonPrintable(c):
			fmt.Fprintf(&b, `\%x `, c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func serializeUnicodeRange(n Node) string {
	if n.RangeStart == n.RangeEnd {
		return "U+" + strings.ToUpper(strconv.FormatUint(uint64(n.RangeStart), 16))
	}
	return "U+" + strings.ToUpper(strconv.FormatUint(uint64(n.RangeStart), 16)) +
		"-" + strings.ToUpper(strconv.FormatUint(uint64(n.RangeEnd), 16))
}

// SerializeIdentifier escapes name as a CSS identifier, or reports
// ok=false if it is not representable: a bare "-" and the empty string can
// never be a valid ident, escaped or otherwise.
func SerializeIdentifier(name string) (string, bool) {
	return serializeIdentifier(name)
}

func serializeIdentifier(name string) (string, bool) {
	if name == "" || name == "-" {
		return "", false
	}
	runes := []rune(name)
	var b strings.Builder
	for i, c := range runes {
		switch {
		case c == 0:
			b.WriteRune('�')
		case c >= 0x80:
			b.WriteRune(c)
		case (c >= 0x01 && c <= 0x1f) || c == 0x7f:
			writeHexEscape(&b, c)
		case isDigit(c) && i == 0:
			writeHexEscape(&b, c)
		case isDigit(c) && i == 1 && runes[0] == '-':
			writeHexEscape(&b, c)
		case isNameCodePoint(c):
			b.WriteRune(c)
		default:
			b.WriteByte('\\')
			b.WriteRune(c)
		}
	}
	return b.String(), true
}

func writeHexEscape(b *strings.Builder, c rune) {
	fmt.Fprintf(b, `\%x `, c)
}

// needsSeparator implements CSS Syntax 3 §9's "serialize a list of
// component values" disambiguation table: node pairs whose naive textual
// concatenation would retokenize as something other than two separate
// tokens. Rows the table lists for tokens this layer never produces
// (bad-string, bad-url) are omitted.
func needsSeparator(prev, next Node) bool {
	switch {
	case prev.Kind == Ident:
		return startsNameOrNumber(next) || next.Kind == ParenBlock
	case prev.Kind == AtKeyword || prev.Kind == Hash || prev.Kind == Dimension:
		return startsNameOrNumber(next)
	case isLiteral(prev, "#") || isLiteral(prev, "-"):
		return startsNameOrNumber(next)
	case prev.Kind == Number:
		return startsNameOrNumber(next) || isLiteral(next, "%")
	case isLiteral(prev, "@"):
		return startsName(next) || next.Kind == UnicodeRange ||
			isLiteral(next, "-") || isLiteral(next, "-->")
	case prev.Kind == UnicodeRange:
		return startsName(next) || next.Kind == Number || next.Kind == Percentage ||
			next.Kind == Dimension || isLiteral(next, "?")
	case isLiteral(prev, ".") || isLiteral(prev, "+"):
		return next.Kind == Number || next.Kind == Percentage || next.Kind == Dimension
	case isLiteral(prev, "/"):
		return isLiteral(next, "*")
	}
	return false
}

// startsName reports whether n's serialized text begins with an
// ident-sequence, which a preceding name-ended token would absorb.
func startsName(n Node) bool {
	switch n.Kind {
	case Ident, FunctionBlock, URL:
		return true
	}
	return false
}

// startsNameOrNumber additionally covers tokens beginning with a digit,
// sign, or '.', plus the "-" delim and CDC, which can all extend a
// preceding name or numeric literal.
func startsNameOrNumber(n Node) bool {
	switch n.Kind {
	case Ident, FunctionBlock, URL, Number, Percentage, Dimension, UnicodeRange:
		return true
	}
	return isLiteral(n, "-") || isLiteral(n, "-->")
}

func isLiteral(n Node, v string) bool {
	return n.Kind == Literal && n.Value == v
}
