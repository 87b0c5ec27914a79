package css

import "testing"

func TestDecodeBytes(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		protocol string
		env      string
		want     string
	}{
		{
			name: "plain ascii",
			data: []byte("p{}"),
			want: "p{}",
		},
		{
			name: "utf8 bom stripped",
			data: []byte("\xef\xbb\xbfp{}"),
			want: "p{}",
		},
		{
			name: "utf16le bom",
			data: []byte{0xff, 0xfe, 'p', 0, '{', 0, '}', 0},
			want: "p{}",
		},
		{
			name: "utf16be bom",
			data: []byte{0xfe, 0xff, 0, 'p', 0, '{', 0, '}'},
			want: "p{}",
		},
		{
			name: "charset rule",
			data: []byte("@charset \"windows-1252\"; h\xe9"),
			want: `@charset "windows-1252"; hé`,
		},
		{
			name:     "protocol beats charset rule",
			data:     []byte("@charset \"utf-8\"; \xe9"),
			protocol: "windows-1252",
			want:     `@charset "utf-8"; é`,
		},
		{
			name:     "bom beats protocol",
			data:     []byte("\xef\xbb\xbf\xc3\xa9"),
			protocol: "windows-1252",
			want:     "é",
		},
		{
			name: "utf16 charset label means utf8",
			data: []byte(`@charset "utf-16le"; a`),
			want: `@charset "utf-16le"; a`,
		},
		{
			name: "unknown charset label falls through",
			data: []byte(`@charset "not-a-real-label"; a`),
			want: `@charset "not-a-real-label"; a`,
		},
		{
			name: "environment fallback",
			data: []byte("\xe9"),
			env:  "windows-1252",
			want: "é",
		},
		{
			name:     "unknown protocol label ignored",
			data:     []byte("\xe9"),
			protocol: "no-such-encoding",
			env:      "windows-1252",
			want:     "é",
		},
		{
			name: "invalid utf8 replaced",
			data: []byte("a\xffb"),
			want: "a�b",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := DecodeBytes(test.data, test.protocol, test.env)
			if got != test.want {
				t.Errorf("DecodeBytes = %q, want %q", got, test.want)
			}
		})
	}
}

func TestSniffCharsetRule(t *testing.T) {
	tests := []struct {
		data  string
		label string
		ok    bool
	}{
		{`@charset "utf-8"; p{}`, "utf-8", true},
		{`@charset "x";`, "x", true},
		{`@charset "unterminated`, "", false},
		{`@Charset "utf-8";`, "", false}, // prefix is case-sensitive bytes
		{` @charset "utf-8";`, "", false},
		{"@charset \"\xffutf-8\";", "", false}, // non-ASCII label byte
	}
	for _, test := range tests {
		label, ok := sniffCharsetRule([]byte(test.data))
		if ok != test.ok || label != test.label {
			t.Errorf("sniffCharsetRule(%q) = %q, %v; want %q, %v", test.data, label, ok, test.label, test.ok)
		}
	}
}
