/*
Package css implements a low-level tokenizer, parser, and serializer for CSS
conforming to the CSS Syntax Module Level 3 specification,
https://www.w3.org/TR/css-syntax-3/. It knows tokens, blocks, functions,
rules, and declarations; it does not know which properties, selectors, or
at-rules exist, and it does not validate CSS.

# Component values

ParseComponentValueList is the lowest public layer: the flat stream of
component values with blocks and functions already nested:

	for _, n := range css.ParseComponentValueList(`a { color: red }`, false) {
		// inspect n.Kind, n.Value, n.Line, n.Col
	}

# Parsing

ParseStylesheet is the usual entry point for a whole CSS file; it returns a
list of QualifiedRule, AtRule, and ParseError nodes (plus Whitespace/Comment
unless filtered out):

	for _, n := range css.ParseStylesheet(src, true, true) {
		switch n.Kind {
		case css.QualifiedRule:
			// n.Prelude is the selector's component values, n.Children its body
		case css.AtRule:
			// n.Name, n.Prelude, and n.Children if n.HasBlock
		}
	}

ParseBlocksContents parses the body of a rule's {}-block (the nesting-aware
replacement for the deprecated ParseDeclarationList), yielding a mix of
Declaration, AtRule, QualifiedRule, and ParseError nodes. This is how a
nested rule's content is walked a level deeper.

ParseStylesheetBytes additionally runs the byte decoder (BOM/protocol/
@charset/environment fallback chain, see decode.go) before tokenizing.

# Serializing

Serialize walks any node list back into CSS text; the result re-tokenizes to
a structurally equivalent stream:

	css.Serialize(css.ParseStylesheet(src, false, false))

# Errors

Parse errors never abort a parse. They appear inline as nodes with
Kind == css.ParseErrorNode, carrying an ErrKind/ErrMsg pair (see errors.go).

# Subpackages

Package nth parses the CSS <An+B> microsyntax used by :nth-child() and
friends. Package color3 parses CSS Color Level 4 <color> values into RGBA.
*/
package css
