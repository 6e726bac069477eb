package format

import (
	"fmt"
	"strings"
)

const alphabetRadix = 26

// NumberToAlphabet converts a zero-based index to a spreadsheet-style
// alphabetic label: 0 -> "A", 25 -> "Z", 26 -> "AA", 28 -> "AC".
func NumberToAlphabet(n int) string {
	if n < 0 {
		return ""
	}
	count := 1
	p := alphabetRadix
	for n >= p {
		n -= p
		count++
		p *= alphabetRadix
	}
	buf := make([]byte, count)
	for i := count - 1; i >= 0; i-- {
		buf[i] = byte('A' + n%alphabetRadix)
		n /= alphabetRadix
	}
	return string(buf)
}

// AlphabetToNumber converts an alphabetic label back to its zero-based
// index. Returns -1 for an empty or non-alphabetic label.
func AlphabetToNumber(alphabet string) int {
	if alphabet == "" {
		return -1
	}
	upper := strings.ToUpper(alphabet)
	p := 1
	res := -1
	for i := len(upper) - 1; i >= 0; i-- {
		ch := upper[i]
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		res += int(ch-'A')*p + p
		p *= alphabetRadix
	}
	return res
}

// SecondsToClock renders a second count as "HH:MM:SS". With showDay, whole
// days are split off as a "<n>D " prefix. Negative input renders as "--".
func SecondsToClock(seconds int64, showDay bool) string {
	if seconds < 0 {
		return "--"
	}
	var prefix string
	if showDay {
		days := seconds / 86400
		seconds %= 86400
		if days >= 1 {
			prefix = fmt.Sprintf("%dD ", days)
		}
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", prefix, h, m, s)
}
