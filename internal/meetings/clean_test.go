// v0
// internal/meetings/clean_test.go
package meetings

import "testing"

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "already clean", "already clean"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"tags", "<p>budget <b>review</b> held</p>", "budget review held"},
		{"entities", "roads &amp; bridges", "roads & bridges"},
		{"script dropped", "<script>alert(1)</script>agenda items", "agenda items"},
		{"nested", "<div><ul><li>one</li><li>two</li></ul></div>", "one two"},
		{"broken markup", "<p>unclosed <em>item", "unclosed item"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripHTML(tc.in); got != tc.want {
				t.Fatalf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
