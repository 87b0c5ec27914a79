// Package nth parses the CSS <An+B> microsyntax, the grammar behind
// :nth-child(An+B) and its siblings, as plain functions over a token
// stream with no parser-generator or regular-expression dependency.
package nth

import (
	"strconv"
	"strings"

	css "github.com/crawshawlabs/csssyntax"
)

// Parse takes the component values inside an :nth-child()-style function's
// parentheses and returns the (a, b) pair of the <An+B> production, or
// ok=false if the input does not match the grammar.
//
// The tricky part is that the tokenizer can split "An+B" across a variable
// number of tokens depending on whitespace and sign placement: "2n+1" is
// Dimension(2,"n") Number(+1), "2n + 1" is Dimension(2,"n") Literal("+")
// Number(1), but "n-2" is a single
// Ident("n-2") because '-' and digits are both valid ident-continuation
// codepoints. Rather than special-case every tokenization, Parse
// re-flattens the surviving tokens' own text into one compact string and
// parses that string against the <An+B> grammar directly; the result is
// identical regardless of which of the token-boundary variants produced it.
func Parse(input []css.Node) (a, b int64, ok bool) {
	tokens := significant(input)
	if len(tokens) == 0 {
		return 0, 0, false
	}

	if len(tokens) == 1 && tokens[0].Kind == css.Ident {
		switch strings.ToLower(tokens[0].Value) {
		case "odd":
			return 2, 1, true
		case "even":
			return 2, 0, true
		}
	}

	var s string
	for i, t := range tokens {
		// A number is always the B term (or a lone integer), so it can
		// only be the final token; rejecting it elsewhere keeps the
		// flattening from gluing "2 n" or "1 2" into a valid-looking
		// compact form.
		if t.Kind == css.Number && i != len(tokens)-1 {
			return 0, 0, false
		}
		frag, ok := tokenFragment(t)
		if !ok {
			return 0, 0, false
		}
		s += frag
	}
	return parseCompact(strings.ToLower(s))
}

// ParseString tokenizes text and parses it as an <An+B> production.
func ParseString(text string) (a, b int64, ok bool) {
	return Parse(css.ParseComponentValueList(text, true))
}

func significant(nodes []css.Node) []css.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n.Kind == css.Whitespace || n.Kind == css.Comment {
			continue
		}
		out = append(out, n)
	}
	return out
}

// tokenFragment renders the handful of token kinds the <An+B> grammar can
// contain as the exact text they'd contribute to a hand-written "2n+1".
func tokenFragment(n css.Node) (string, bool) {
	switch n.Kind {
	case css.Number:
		return n.Repr, true
	case css.Dimension:
		return n.Repr + n.Unit, true
	case css.Ident:
		return n.Value, true
	case css.Literal:
		if n.Value == "+" || n.Value == "-" {
			return n.Value, true
		}
	}
	return "", false
}

// parseCompact parses a whitespace-free string against the grammar
// `[+-]?digits?n([+-]digits)?` or a lone signed integer `[+-]?digits`.
func parseCompact(s string) (a, b int64, ok bool) {
	i, n := 0, len(s)

	aSign := int64(1)
	if i < n && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			aSign = -1
		}
		i++
	}

	digitsStart := i
	for i < n && isDigit(s[i]) {
		i++
	}
	hasDigits := i > digitsStart
	aVal := int64(1)
	if hasDigits {
		v, err := strconv.ParseInt(s[digitsStart:i], 10, 64)
		if err != nil {
			return 0, 0, false
		}
		aVal = v
	}

	if i < n && s[i] == 'n' {
		i++
		a = aSign * aVal
		if i == n {
			return a, 0, true
		}
		if s[i] != '+' && s[i] != '-' {
			return 0, 0, false
		}
		bSign := int64(1)
		if s[i] == '-' {
			bSign = -1
		}
		i++
		bStart := i
		for i < n && isDigit(s[i]) {
			i++
		}
		if i == bStart || i != n {
			return 0, 0, false
		}
		bv, err := strconv.ParseInt(s[bStart:i], 10, 64)
		if err != nil {
			return 0, 0, false
		}
		return a, bSign * bv, true
	}

	if i == n && hasDigits {
		return 0, aSign * aVal, true
	}
	return 0, 0, false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
