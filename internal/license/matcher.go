package license

import "strings"

// Matches reports whether current is licensed by the allowed entry.
//
// An entry always matches itself. An entry containing a dot also matches any
// subdomain of it ("shop.example.com" for "example.com"); dotless entries
// match only exactly. Comparison is byte-exact with no case folding.
func Matches(current, allowed string) bool {
	if current == allowed {
		return true
	}
	if !strings.Contains(allowed, ".") {
		return false
	}
	return strings.HasSuffix(current, "."+allowed)
}

// Any returns the first entry of list that matches current.
func (l AllowList) Any(current string) (string, bool) {
	for _, allowed := range l {
		if Matches(current, allowed) {
			return allowed, true
		}
	}
	return "", false
}
