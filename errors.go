package css

// ParseError kind strings. These are carried as the ErrKind field of a
// Node with Kind == ParseErrorNode; they are not Go errors, because CSS
// parsing never aborts out-of-band: every error is an inline node and the
// parse continues at the next safe resync point.
const (
	ErrInvalid     = "invalid"
	ErrEOFInString = "eof-in-string"
	ErrEOFInURL    = "eof-in-url"
	ErrBadString   = "bad-string"
	ErrBadURL      = "bad-url"
	ErrEmpty       = "empty"
	ErrExtraInput  = "extra-input"
)
