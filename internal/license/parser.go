package license

import (
	"bufio"
	"io"
	"strings"
)

// AllowList holds licensed domains exactly as they appear in the source (trimmed only).
type AllowList []string

// statusLicensed is the only status token that grants a license.
const statusLicensed = "yes"

// Parse converts the raw list text into an AllowList.
func Parse(raw string) AllowList {
	list, _ := ParseReader(strings.NewReader(raw))
	return list
}

// ParseReader reads "domain|status[|...]" lines. Blank lines, "#" comments,
// lines with fewer than two fields and lines whose status is not exactly
// "yes" are skipped. The returned error is only a read error; entries parsed
// before it are still returned.
func ParseReader(r io.Reader) (AllowList, error) {
	list := AllowList{}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		if strings.TrimSpace(parts[1]) != statusLicensed {
			continue
		}
		list = append(list, strings.TrimSpace(parts[0]))
	}
	return list, s.Err()
}
