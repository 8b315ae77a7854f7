package topics

import "testing"

func TestIsBadHeadingCandidateRejectsNoise(t *testing.T) {
	cases := []string{
		"Mục lục",
		"MỤC LỤC",
		"Mục lục.",
		"Table of Contents",
		"TABLE OF CONTENTS",
		"Phụ lục đáp án",
		"Phụ lục: Đáp án chi tiết",
		"Answer Key",
		"Glossary",
	}
	for _, heading := range cases {
		if !IsBadHeadingCandidate(heading) {
			t.Errorf("IsBadHeadingCandidate(%q) = false, want true", heading)
		}
	}
}

func TestIsBadHeadingCandidateAcceptsContent(t *testing.T) {
	cases := []string{
		"Chapter 3: Newtonian Mechanics",
		"Chương 2: Dao động điều hòa",
		"Photosynthesis",
		"1.2 Linear Equations",
		"User Preferences in Interface Design",
		"",
	}
	for _, heading := range cases {
		if IsBadHeadingCandidate(heading) {
			t.Errorf("IsBadHeadingCandidate(%q) = true, want false", heading)
		}
	}
}

func TestIsBadHeadingCandidateHandlesDecomposedUnicode(t *testing.T) {
	// "Mục lục" with combining diacritics, as some PDF extractors emit it.
	decomposed := "Mục lục"
	if !IsBadHeadingCandidate(decomposed) {
		t.Fatalf("decomposed Vietnamese heading should be rejected")
	}
}
