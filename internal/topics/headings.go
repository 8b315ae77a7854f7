package topics

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// noisePhrases lists lowercase NFC-normalized markers of structural headings,
// grouped by category. Matching is by substring so surrounding numbering and
// punctuation from heterogeneous document formats does not matter. New noise
// categories are added here, not in code.
var noisePhrases = map[string][]string{
	"table_of_contents": {
		"mục lục",
		"table of contents",
	},
	"answer_appendix": {
		"phụ lục đáp án",
		"answer appendix",
		"answer key",
		"đáp án chi tiết",
	},
	"index_glossary_references": {
		"bảng chú giải",
		"glossary",
		"subject index",
		"tài liệu tham khảo",
		"reference list",
		"bibliography",
	},
}

// IsBadHeadingCandidate reports whether an extracted heading line is
// structural or navigational noise rather than a genuine learning topic.
// Unknown headings are accepted; only curated noise phrases reject.
func IsBadHeadingCandidate(text string) bool {
	candidate := norm.NFC.String(strings.ToLower(strings.TrimSpace(text)))
	if candidate == "" {
		return false
	}
	for _, phrases := range noisePhrases {
		for _, phrase := range phrases {
			if strings.Contains(candidate, phrase) {
				return true
			}
		}
	}
	return false
}
