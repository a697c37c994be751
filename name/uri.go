package name

import (
	"strings"

	"github.com/pkg/errors"
)

const hexDigits = "0123456789ABCDEF"

func isUnreserved(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '-' || b == '.' || b == '_' || b == '~'
}

func onlyPeriods(c Component) bool {
	for _, b := range c {
		if b != '.' {
			return false
		}
	}
	return true
}

func escapeComponent(sb *strings.Builder, c Component) {
	// a run of periods (including none) is ambiguous in a URI, so it carries three extra
	if onlyPeriods(c) {
		sb.WriteString("...")
		sb.Write(c)
		return
	}
	for _, b := range c {
		if isUnreserved(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
}

func unhex(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func unescapeComponent(s string) (Component, error) {
	c := make(Component, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			c = append(c, s[i])
			continue
		}
		if i+2 >= len(s) {
			return nil, errors.Errorf("truncated escape in %q", s)
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return nil, errors.Errorf("bad escape in %q", s)
		}
		c = append(c, hi<<4|lo)
		i += 2
	}
	if onlyPeriods(c) {
		if len(c) < 3 {
			return nil, errors.Errorf("illegal component %q", s)
		}
		c = c[3:]
	}
	return c, nil
}

// Parse parses a name URI such as "/example/data/%00%05" or "ndn:/example".
func Parse(uri string) (Name, error) {
	uri = strings.TrimSpace(uri)
	uri = strings.TrimPrefix(uri, "ndn:")
	uri = strings.TrimPrefix(uri, "//")
	if !strings.HasPrefix(uri, "/") {
		return nil, errors.Errorf("name %q must start with /", uri)
	}
	res := Name{}
	for _, part := range strings.Split(uri[1:], "/") {
		if part == "" {
			continue
		}
		c, err := unescapeComponent(part)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

// MustParse is like Parse but panics on error.
func MustParse(uri string) Name {
	n, err := Parse(uri)
	if err != nil {
		panic(err)
	}
	return n
}
