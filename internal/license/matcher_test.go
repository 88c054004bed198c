package license

import "testing"

func TestMatches(t *testing.T) {
	cases := []struct {
		current, allowed string
		want             bool
	}{
		{"example.com", "example.com", true},
		{"a.example.com", "example.com", true},
		{"deep.a.example.com", "example.com", true},
		{"notexample.com", "example.com", false},
		{"evil-example.com", "example.com", false},
		{"example.com.evil.net", "example.com", false},
		{"example.com", "com", false},
		{"com", "com", true},
		{"intranet", "intranet", true},
		{"host.intranet", "intranet", false},
		{"Example.com", "example.com", false},
		{"exampleXcom", "example.com", false},
		{"a.exampleXcom", "example.com", false},
		{"sub.ex*mple.com", "ex*mple.com", true},
		{"sub.example.com", "ex*mple.com", false},
		{"example.com", "", false},
	}
	for _, c := range cases {
		if got := Matches(c.current, c.allowed); got != c.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", c.current, c.allowed, got, c.want)
		}
	}
}

func TestAllowListAny(t *testing.T) {
	list := AllowList{"other.org", "example.com"}
	entry, ok := list.Any("shop.example.com")
	if !ok || entry != "example.com" {
		t.Fatalf("expected match on example.com, got %q %v", entry, ok)
	}
	if _, ok := list.Any("evil-example.com"); ok {
		t.Fatalf("unexpected match for evil-example.com")
	}
	if _, ok := AllowList(nil).Any("example.com"); ok {
		t.Fatalf("empty list must not match")
	}
}
