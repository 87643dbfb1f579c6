package sanitize

import "testing"

func TestEscape(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"mixed markup", `<b>&'"</b>`, "&lt;b&gt;&amp;&#x27;&quot;&lt;/b&gt;"},
		{"plain text", "hello world", "hello world"},
		{"empty", "", ""},
		{"script tag", `<script>alert("x")</script>`, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"},
		{"existing entity is escaped once", "&lt;", "&amp;lt;"},
		{"unicode untouched", "héllo – 世界", "héllo – 世界"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Escape(tc.in); got != tc.want {
				t.Fatalf("Escape(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEscape_NotIdempotent(t *testing.T) {
	once := Escape("&")
	if twice := Escape(once); twice != "&amp;amp;" {
		t.Fatalf("expected double escape to re-escape, got %q", twice)
	}
}

func TestEscapeAll(t *testing.T) {
	got := EscapeAll([]string{"a<b", "c"})
	if len(got) != 2 || got[0] != "a&lt;b" || got[1] != "c" {
		t.Fatalf("unexpected result: %v", got)
	}
}
