package css

import "strings"

// The rule and declaration parser operates on a stream of already-built
// component values, whether that stream comes straight off the
// tokenizer/builder (parsing from text) or was handed in by a caller that
// already has a []Node (parsing from nodes). nodeSource abstracts over the
// two so the grammar below is written once: Scan/Unscan becomes next/unread,
// over this module's tagged Node instead of an interface hierarchy of
// Token/SimpleBlock/Function.
type nodeSource interface {
	next() (Node, bool)
	unread(Node)
}

// nodeSlice is a nodeSource over a caller-supplied []Node, used by the
// "_or_nodes" entry points (e.g. ParseOneRuleNodes) that accept an
// already-built component-value list instead of raw text.
type nodeSlice struct {
	nodes    []Node
	pos      int
	pushback []Node
}

func (s *nodeSlice) next() (Node, bool) {
	if n := len(s.pushback); n > 0 {
		v := s.pushback[n-1]
		s.pushback = s.pushback[:n-1]
		return v, true
	}
	if s.pos >= len(s.nodes) {
		return Node{}, false
	}
	v := s.nodes[s.pos]
	s.pos++
	return v, true
}

func (s *nodeSlice) unread(n Node) {
	s.pushback = append(s.pushback, n)
}

// ParseStylesheet is the top-level entry point for a whole CSS file.
// CDO/CDC ("<!--"/"-->") are swallowed as whitespace at this level.
func ParseStylesheet(text string, skipComments, skipWhitespace bool) []Node {
	out := consumeRuleList(newBuilder(text), true)
	return filterTopLevel(out, skipComments, skipWhitespace)
}

// ParseStylesheetBytes runs the byte decoder before parsing.
func ParseStylesheetBytes(data []byte, protocolEncoding, environmentEncoding string, skipComments, skipWhitespace bool) []Node {
	text := DecodeBytes(data, protocolEncoding, environmentEncoding)
	return ParseStylesheet(text, skipComments, skipWhitespace)
}

// ParseRuleList is like ParseStylesheet, but CDO/CDC are not treated as
// whitespace (used for rule bodies like @media{}).
func ParseRuleList(text string, skipComments, skipWhitespace bool) []Node {
	out := consumeRuleList(newBuilder(text), false)
	return filterTopLevel(out, skipComments, skipWhitespace)
}

func consumeRuleList(src nodeSource, topLevel bool) []Node {
	var out []Node
	for {
		n, ok := src.next()
		if !ok {
			return out
		}
		switch {
		case n.Kind == Whitespace || n.Kind == Comment:
			out = append(out, n)
		case n.Kind == Literal && (n.Value == "<!--" || n.Value == "-->"):
			if topLevel {
				continue
			}
			src.unread(n)
			out = append(out, consumeQualifiedRule(src))
		case n.Kind == AtKeyword:
			out = append(out, consumeAtRule(src, n))
		default:
			src.unread(n)
			out = append(out, consumeQualifiedRule(src))
		}
	}
}

// consumeQualifiedRule accumulates prelude component values until a
// top-level CurlyBlock, whose content becomes the rule's body. EOF before
// the block is a parse error.
func consumeQualifiedRule(src nodeSource) Node {
	var prelude []Node
	line, col, havePos := 0, 0, false
	for {
		n, ok := src.next()
		if !ok {
			if !havePos {
				return newError(1, 1, ErrInvalid, "unexpected EOF while parsing qualified rule")
			}
			return newError(line, col, ErrInvalid, "unexpected EOF while parsing qualified rule")
		}
		if !havePos {
			line, col, havePos = n.Line, n.Col, true
		}
		if n.Kind == CurlyBlock {
			return Node{Kind: QualifiedRule, Line: line, Col: col, Prelude: prelude, Children: n.Children}
		}
		prelude = append(prelude, n)
	}
}

// consumeAtRule accumulates prelude until ';' (statement at-rule, HasBlock
// false) or a top-level CurlyBlock (block at-rule). EOF with neither is not
// an error; it is accepted silently, yielding a blockless at-rule.
func consumeAtRule(src nodeSource, kw Node) Node {
	r := Node{Kind: AtRule, Name: strings.ToLower(kw.Value), Raw: kw.Raw, Line: kw.Line, Col: kw.Col}
	for {
		n, ok := src.next()
		if !ok {
			return r
		}
		switch {
		case n.Kind == Literal && n.Value == ";":
			return r
		case n.Kind == CurlyBlock:
			r.HasBlock = true
			r.Children = n.Children
			return r
		default:
			r.Prelude = append(r.Prelude, n)
		}
	}
}

// ParseOneRule parses exactly one rule, returning a
// ParseError("extra-input") if non-whitespace/non-comment content follows
// it.
func ParseOneRule(text string) Node {
	return parseOneRule(newBuilder(text))
}

// ParseOneRuleNodes is the []Node-input form of ParseOneRule.
func ParseOneRuleNodes(nodes []Node) Node {
	return parseOneRule(&nodeSlice{nodes: nodes})
}

func parseOneRule(src nodeSource) Node {
	first, ok := skipToContent(src)
	if !ok {
		return newError(1, 1, ErrEmpty, "no rule found")
	}
	var rule Node
	if first.Kind == AtKeyword {
		rule = consumeAtRule(src, first)
	} else {
		src.unread(first)
		rule = consumeQualifiedRule(src)
	}
	if n, ok := skipToContent(src); ok {
		return newError(n.Line, n.Col, ErrExtraInput, "unexpected content after rule")
	}
	return rule
}

// skipToContent discards leading Whitespace/Comment nodes and returns the
// next non-trivial one, or ok=false at EOF.
func skipToContent(src nodeSource) (Node, bool) {
	for {
		n, ok := src.next()
		if !ok {
			return Node{}, false
		}
		if n.Kind == Whitespace || n.Kind == Comment {
			continue
		}
		return n, true
	}
}

// ParseBlocksContents is the CSS-nesting-aware consumer of a rule body,
// accepting Declaration, AtRule, and nested QualifiedRule nodes.
// ParseDeclarationList is a deprecated alias that returns the identical
// result.
func ParseBlocksContents(text string, skipComments, skipWhitespace bool) []Node {
	out := consumeBlocksContents(newBuilder(text))
	return filterTopLevel(out, skipComments, skipWhitespace)
}

// ParseBlocksContentsNodes is the []Node-input form of ParseBlocksContents.
func ParseBlocksContentsNodes(nodes []Node, skipComments, skipWhitespace bool) []Node {
	out := consumeBlocksContents(&nodeSlice{nodes: nodes})
	return filterTopLevel(out, skipComments, skipWhitespace)
}

// ParseDeclarationList is a deprecated alias of ParseBlocksContents, kept
// for callers written against the older declaration-list-only name.
func ParseDeclarationList(text string, skipComments, skipWhitespace bool) []Node {
	return ParseBlocksContents(text, skipComments, skipWhitespace)
}

// ParseDeclarationListNodes is a deprecated alias of ParseBlocksContentsNodes.
func ParseDeclarationListNodes(nodes []Node, skipComments, skipWhitespace bool) []Node {
	return ParseBlocksContentsNodes(nodes, skipComments, skipWhitespace)
}

func consumeBlocksContents(src nodeSource) []Node {
	var out []Node
	for {
		n, ok := src.next()
		if !ok {
			return out
		}
		switch {
		case n.Kind == Whitespace || n.Kind == Comment:
			out = append(out, n)
		case n.Kind == Literal && n.Value == ";":
			continue
		case n.Kind == AtKeyword:
			out = append(out, consumeAtRule(src, n))
		case n.Kind == Ident:
			out = append(out, consumeDeclarationOrNestedRule(src, n))
		default:
			src.unread(n)
			out = append(out, consumeNestedRule(src, n.Line, n.Col))
		}
	}
}

// consumeDeclarationOrNestedRule disambiguates the two things a leading
// ident can begin inside a block's contents: a declaration ("color: red")
// or a nested rule's selector ("div a { ... }"). Only the token after the
// ident decides, so the lookahead is unwound onto src when it turns out to
// be a rule.
func consumeDeclarationOrNestedRule(src nodeSource, name Node) Node {
	var trivia []Node
	for {
		n, ok := src.next()
		if !ok {
			return newError(name.Line, name.Col, ErrInvalid, "expected ':' after property name")
		}
		if n.Kind == Whitespace || n.Kind == Comment {
			trivia = append(trivia, n)
			continue
		}
		if n.Kind == Literal && n.Value == ":" {
			return buildDeclaration(name, consumeUntilSemicolon(src))
		}
		src.unread(n)
		for i := len(trivia) - 1; i >= 0; i-- {
			src.unread(trivia[i])
		}
		src.unread(name)
		return consumeNestedRule(src, name.Line, name.Col)
	}
}

// consumeNestedRule is consumeQualifiedRule as CSS Nesting wants it inside
// a block's contents: a top-level ';' before the {}-block invalidates the
// rule instead of joining its prelude, and parsing resumes after it.
func consumeNestedRule(src nodeSource, line, col int) Node {
	var prelude []Node
	for {
		n, ok := src.next()
		if !ok {
			return newError(line, col, ErrInvalid, "expected declaration or nested rule")
		}
		switch {
		case n.Kind == Literal && n.Value == ";":
			return newError(line, col, ErrInvalid, "expected declaration or nested rule")
		case n.Kind == CurlyBlock:
			return Node{Kind: QualifiedRule, Line: line, Col: col, Prelude: prelude, Children: n.Children}
		default:
			prelude = append(prelude, n)
		}
	}
}

// consumeUntilSemicolon gathers component values up to (but not including) a
// top-level ';', or EOF.
func consumeUntilSemicolon(src nodeSource) []Node {
	var list []Node
	for {
		n, ok := src.next()
		if !ok {
			return list
		}
		if n.Kind == Literal && n.Value == ";" {
			return list
		}
		list = append(list, n)
	}
}

// ParseOneDeclaration parses exactly one declaration, or returns a
// ParseError.
func ParseOneDeclaration(text string) Node {
	return parseOneDeclaration(newBuilder(text))
}

// ParseOneDeclarationNodes is the []Node-input form of ParseOneDeclaration.
func ParseOneDeclarationNodes(nodes []Node) Node {
	return parseOneDeclaration(&nodeSlice{nodes: nodes})
}

func parseOneDeclaration(src nodeSource) Node {
	name, ok := skipToContent(src)
	if !ok {
		return newError(1, 1, ErrEmpty, "no declaration found")
	}
	if name.Kind != Ident {
		return newError(name.Line, name.Col, ErrInvalid, "expected identifier")
	}
	colon, ok := skipToContent(src)
	if !ok || colon.Kind != Literal || colon.Value != ":" {
		return newError(name.Line, name.Col, ErrInvalid, "expected ':' after property name")
	}
	value := consumeUntilSemicolon(src)
	if n, ok := skipToContent(src); ok {
		return newError(n.Line, n.Col, ErrExtraInput, "unexpected content after declaration")
	}
	return buildDeclaration(name, value)
}

// buildDeclaration strips a trailing "! important" marker from a
// declaration's value and reports ParseError("empty") if nothing but
// whitespace/comments remains. The value sequence itself is kept as
// written, surrounding whitespace included.
func buildDeclaration(name Node, rawValue []Node) Node {
	value, important := stripImportant(rawValue)
	if len(trimNodes(value)) == 0 {
		return newError(name.Line, name.Col, ErrEmpty, "empty declaration value")
	}
	return Node{
		Kind:      Declaration,
		Name:      name.Value,
		Raw:       name.Raw,
		Line:      name.Line,
		Col:       name.Col,
		Children:  value,
		Important: important,
	}
}

func trimNodes(v []Node) []Node {
	i := 0
	for i < len(v) && (v[i].Kind == Whitespace || v[i].Kind == Comment) {
		i++
	}
	j := len(v)
	for j > i && (v[j-1].Kind == Whitespace || v[j-1].Kind == Comment) {
		j--
	}
	return v[i:j]
}

// stripImportant detects a trailing "!" optional-whitespace/comments
// "important" (case-insensitive) optional-whitespace/comments at the end of
// a trimmed declaration value.
func stripImportant(value []Node) ([]Node, bool) {
	v := trimTrailingTrivia(value)
	if len(v) == 0 {
		return value, false
	}
	last := v[len(v)-1]
	if last.Kind != Ident || !strings.EqualFold(last.Value, "important") {
		return value, false
	}
	v = trimTrailingTrivia(v[:len(v)-1])
	if len(v) == 0 {
		return value, false
	}
	bang := v[len(v)-1]
	if bang.Kind != Literal || bang.Value != "!" {
		return value, false
	}
	return v[:len(v)-1], true
}

func trimTrailingTrivia(v []Node) []Node {
	j := len(v)
	for j > 0 && (v[j-1].Kind == Whitespace || v[j-1].Kind == Comment) {
		j--
	}
	return v[:j]
}

// filterTopLevel drops top-level Whitespace/Comment nodes per the
// skipWhitespace/skipComments flags. The flags never affect parsing, only
// the returned sequence: a comment can separate two idents that would
// otherwise merge, so comments are only dropped after the tree is built.
func filterTopLevel(nodes []Node, skipComments, skipWhitespace bool) []Node {
	if !skipComments && !skipWhitespace {
		return nodes
	}
	out := nodes[:0:0]
	for _, n := range nodes {
		if skipComments && n.Kind == Comment {
			continue
		}
		if skipWhitespace && n.Kind == Whitespace {
			continue
		}
		out = append(out, n)
	}
	return out
}
