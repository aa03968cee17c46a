package orchestrator

import "strings"

// Inner-state leak filtering. Replies are spoken text; parenthesised spans
// are allowed only for short stage directions (（笑）,（叹气）). Anything
// that narrates inner state or strategy is scrubbed before delivery.

// forbiddenMarkers inside a paren span always mean a leak, whatever the
// span length.
var forbiddenMarkers = []string{
	"内心OS", "内心os", "心理活动", "策略", "心想", "思考", "潜台词", "计划",
}

// allowedInterjections are the stage directions a span may consist of.
var allowedInterjections = []string{
	"笑", "大笑", "苦笑", "微笑", "叹气", "叹息", "摇头", "点头",
	"哭", "流泪", "汗", "额", "嗯", "啊", "哈", "哼", "撇嘴", "耸肩",
	"沉默", "停顿",
}

type parenSpan struct {
	start, end int // byte offsets including the parens
	content    string
}

// HasLeak reports whether the reply narrates inner state.
func HasLeak(s string) bool {
	for _, span := range parenSpans(s) {
		if spanLeaks(span.content) {
			return true
		}
	}
	return false
}

// Scrub removes leaking paren spans, keeping allowed stage directions.
// Scrubbing is run to a fixpoint so scrubbing a scrubbed reply is a no-op.
func Scrub(s string) string {
	for i := 0; i < 4; i++ {
		next := scrubOnce(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func scrubOnce(s string) string {
	spans := parenSpans(s)
	if len(spans) == 0 {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	last := 0
	for _, span := range spans {
		if !spanLeaks(span.content) {
			continue
		}
		b.WriteString(s[last:span.start])
		last = span.end
	}
	b.WriteString(s[last:])
	return strings.TrimSpace(b.String())
}

// parenSpans finds every full-width and half-width parenthesised span.
// Mixed pairs are tolerated because models emit them.
func parenSpans(s string) []parenSpan {
	var spans []parenSpan
	runes := []rune(s)
	offset := 0
	depth := 0
	start := 0
	var content []rune
	for _, r := range runes {
		size := len(string(r))
		switch {
		case r == '（' || r == '(':
			if depth == 0 {
				start = offset
				content = content[:0]
			}
			depth++
		case r == '）' || r == ')':
			if depth > 0 {
				depth--
				if depth == 0 {
					spans = append(spans, parenSpan{
						start:   start,
						end:     offset + size,
						content: string(content),
					})
				}
			}
		default:
			if depth > 0 {
				content = append(content, r)
			}
		}
		offset += size
	}
	// An unclosed span still counts; models truncate mid-leak.
	if depth > 0 {
		spans = append(spans, parenSpan{start: start, end: len(s), content: string(content)})
	}
	return spans
}

func spanLeaks(content string) bool {
	trimmed := strings.TrimSpace(content)
	for _, marker := range forbiddenMarkers {
		if strings.Contains(trimmed, marker) {
			return true
		}
	}
	if len([]rune(trimmed)) <= 2 {
		return false
	}
	return !onlyInterjections(trimmed)
}

// onlyInterjections reports whether the span is built purely from allowed
// stage directions and punctuation.
func onlyInterjections(content string) bool {
	rest := content
	for {
		before := rest
		for _, w := range allowedInterjections {
			rest = strings.ReplaceAll(rest, w, "")
		}
		rest = strings.Trim(rest, " 　,，、。.!！?？~…-")
		if rest == "" {
			return true
		}
		if rest == before {
			return false
		}
	}
}
