package dialect

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// stripComment drops a trailing '#' comment that is outside quotes.
func stripComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return strings.TrimSpace(line[:i])
		}
	}
	return strings.TrimSpace(line)
}

// fields splits s on whitespace, keeping quoted runs together and
// removing the quotes.
func fields(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		in    bool
	)
	flush := func() {
		if in {
			out = append(out, cur.String())
			cur.Reset()
			in = false
		}
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			in = true
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			in = true
		}
	}
	flush()
	return out
}

// quote wraps s in double quotes when it would not survive fields as a
// single token.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'#;") {
		return s
	}
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

// formatScale prints whole scales as integers and others with at most two
// decimals.
func formatScale(s float64) string {
	if !(s > 0) {
		s = 1
	}
	return strconv.FormatFloat(math.Round(s*100)/100, 'f', -1, 64)
}

func formatRefresh(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func parseScale(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid scale %q", ErrMalformedLine, s)
	}
	return v, nil
}

// parseMode parses WxH with an optional @R and optional Hz suffix.
func parseMode(s string) (w, h int, refresh float64, err error) {
	size, rate, hasRate := strings.Cut(s, "@")
	ws, hs, ok := strings.Cut(strings.ToLower(size), "x")
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: invalid mode %q", ErrMalformedLine, s)
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: invalid mode %q", ErrMalformedLine, s)
	}
	if hasRate {
		rate = strings.TrimSuffix(strings.TrimSuffix(rate, "Hz"), "hz")
		refresh, err = strconv.ParseFloat(rate, 64)
		if err != nil || refresh < 0 {
			return 0, 0, 0, fmt.Errorf("%w: invalid refresh rate in %q", ErrMalformedLine, s)
		}
	}
	return w, h, refresh, nil
}

// parsePair parses "AsepB" into two integers.
func parsePair(s, sep string) (int, int, error) {
	as, bs, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("%w: invalid position %q", ErrMalformedLine, s)
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(as))
	b, err2 := strconv.Atoi(strings.TrimSpace(bs))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: invalid position %q", ErrMalformedLine, s)
	}
	return a, b, nil
}
