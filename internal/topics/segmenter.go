package topics

import "strings"

// Section is one segmented piece of a document: a heading candidate and the
// body text that follows it up to the next candidate.
type Section struct {
	Heading string
	Body    string
}

const maxHeadingLen = 80

var headingPrefixes = []string{
	"chapter", "section", "part", "unit", "lesson",
	"chương", "bài", "phần", "mục",
}

// SegmentText splits extracted document text into heading-led sections.
// Text before the first heading candidate is grouped under an empty heading.
func SegmentText(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	current := Section{}
	var body strings.Builder

	flush := func() {
		current.Body = strings.TrimSpace(body.String())
		if current.Heading != "" || current.Body != "" {
			sections = append(sections, current)
		}
		body.Reset()
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if isHeadingCandidate(line) {
			flush()
			current = Section{Heading: line}
			continue
		}
		if line != "" {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()

	return sections
}

// isHeadingCandidate is a layout heuristic: short single lines without
// terminal sentence punctuation, with a chapter-style prefix, numbering,
// or all-caps emphasis.
func isHeadingCandidate(line string) bool {
	if line == "" || len(line) > maxHeadingLen {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		return false
	}

	lower := strings.ToLower(line)
	for _, prefix := range headingPrefixes {
		if strings.HasPrefix(lower, prefix+" ") {
			return true
		}
	}
	if startsWithNumbering(line) {
		return true
	}
	if line == strings.ToUpper(line) && line != strings.ToLower(line) {
		return true
	}
	return false
}

func startsWithNumbering(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return false
	}
	return line[i] == '.' || line[i] == ')'
}
