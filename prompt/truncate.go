package prompt

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// budgetFill is the share of the budget optional sections may fill.
const budgetFill = 0.98

type layoutFunc func([]section) string

// fit enforces the token budget on secs:
//
//  1. Within budget, the full layout is returned unchanged.
//  2. When the critical sections alone do not fit, the system and code
//     bodies are cut in proportion to their size and a truncation notice is
//     appended. No optional section is included.
//  3. Otherwise optional sections are added by priority until the next one
//     would pass 98% of the budget. Included sections keep document order.
func fit(secs []section, layout layoutFunc, maxTokens int) string {
	full := layout(secs)
	if maxTokens <= 0 || EstimateTokens(full) <= maxTokens {
		return full
	}

	var critical, optional []section
	for _, s := range secs {
		if s.critical() {
			critical = append(critical, s)
		} else {
			optional = append(optional, s)
		}
	}
	omitted := append(append([]section(nil), critical...), section{id: secNotice, body: OmittedNotice})
	if EstimateTokens(layout(omitted)) > maxTokens {
		return degrade(critical, maxTokens)
	}

	sort.SliceStable(optional, func(i, j int) bool { return optional[i].priority() < optional[j].priority() })
	included := make(map[sectionID]bool)
	limit := float64(maxTokens) * budgetFill
	for _, s := range optional {
		included[s.id] = true
		if float64(EstimateTokens(layout(pick(secs, included)))) > limit {
			delete(included, s.id)
			break
		}
	}
	if len(included) == 0 {
		return layout(omitted)
	}
	return layout(pick(secs, included))
}

// pick returns the critical sections plus the included ones, in document
// order.
func pick(secs []section, included map[sectionID]bool) []section {
	out := make([]section, 0, len(secs))
	for _, s := range secs {
		if s.critical() || included[s.id] {
			out = append(out, s)
		}
	}
	return out
}

// degrade cuts the system and code bodies so the critical sections fit the
// budget. The default layout is used since its length grows one for one with
// the bodies. When even empty bodies do not fit, the output no longer shrinks
// with the budget but never grows as it decreases.
func degrade(critical []section, maxTokens int) string {
	maxChars := maxTokens*4 + 3
	secs := append(append([]section(nil), critical...), section{id: secNotice, body: TruncatedNotice})

	sys, code := -1, -1
	var sysBody, codeBody string
	for i := range secs {
		switch secs[i].id {
		case secSystem:
			sys, sysBody = i, secs[i].body
			secs[i].body = ""
		case secCode:
			code, codeBody = i, secs[i].body
			secs[i].body = ""
		}
	}

	avail := maxChars - len(defaultLayout(secs))
	if avail < 0 {
		avail = 0
	}
	sysChars := 0
	if total := len(sysBody) + len(codeBody); total > 0 {
		sysChars = avail * len(sysBody) / total
	}
	codeChars := avail - sysChars

	if sys >= 0 {
		secs[sys].body = cutHead(sysBody, sysChars)
	}
	if code >= 0 {
		secs[code].body = cutAround(codeBody, CursorMarker, codeChars)
	}
	return defaultLayout(secs)
}

// cutHead keeps at most n bytes from the start of s, on a rune boundary.
func cutHead(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// cutTail keeps at most n bytes from the end of s, on a rune boundary.
func cutTail(s string, n int) string {
	if n >= len(s) {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

// cutAround keeps at most n bytes of s centered on marker: two thirds of the
// room before it, the rest after, with unused room on one side given to the
// other. Without the marker the tail of s is kept.
func cutAround(s, marker string, n int) string {
	if n >= len(s) {
		return s
	}
	idx := strings.Index(s, marker)
	if idx < 0 {
		return cutTail(s, n)
	}
	room := n - len(marker)
	if room < 0 {
		return ""
	}
	pre, post := s[:idx], s[idx+len(marker):]
	after := room / 3
	if after > len(post) {
		after = len(post)
	}
	before := room - after
	if before > len(pre) {
		before = len(pre)
		after = room - before
	}
	return cutTail(pre, before) + marker + cutHead(post, after)
}

// defaultLayout joins the rendered sections with blank lines.
func defaultLayout(secs []section) string {
	parts := make([]string, 0, len(secs))
	for _, s := range secs {
		parts = append(parts, s.render())
	}
	return strings.Join(parts, "\n\n")
}
