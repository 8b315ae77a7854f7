package exams

import "testing"

func TestGetTemplatePosttestStandard(t *testing.T) {
	tmpl, ok := GetTemplate("posttest_standard")
	if !ok {
		t.Fatalf("posttest_standard should exist")
	}

	counts := TemplateToAssessmentCounts(tmpl)
	want := AssessmentCounts{EasyCount: 0, MediumCount: 10, HardMCQCount: 6, HardCount: 3}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	if counts.Total() != 19 {
		t.Fatalf("Total() = %d, want 19", counts.Total())
	}
}

func TestGetTemplateUnknownName(t *testing.T) {
	if _, ok := GetTemplate("nonexistent_template_xyz"); ok {
		t.Fatalf("unknown template should be absent")
	}
	// Lookup is case-sensitive.
	if _, ok := GetTemplate("Posttest_Standard"); ok {
		t.Fatalf("lookup should be case-sensitive")
	}
}

func TestTemplateToAssessmentCountsZeroesOmittedBuckets(t *testing.T) {
	cases := []struct {
		name    string
		targets map[Bucket]int
		want    AssessmentCounts
	}{
		{
			name:    "medium only",
			targets: map[Bucket]int{BucketMedium: 4},
			want:    AssessmentCounts{MediumCount: 4},
		},
		{
			name:    "hard forms are independent",
			targets: map[Bucket]int{BucketHardMCQ: 2, BucketHard: 7},
			want:    AssessmentCounts{HardMCQCount: 2, HardCount: 7},
		},
		{
			name:    "empty targets",
			targets: map[Bucket]int{},
			want:    AssessmentCounts{},
		},
		{
			name:    "nil targets",
			targets: nil,
			want:    AssessmentCounts{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TemplateToAssessmentCounts(AssessmentTemplate{Name: "t", BucketTargets: tc.targets})
			if got != tc.want {
				t.Fatalf("counts = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestTemplateToAssessmentCountsIsIdempotent(t *testing.T) {
	tmpl, ok := GetTemplate("posttest_standard")
	if !ok {
		t.Fatalf("posttest_standard should exist")
	}

	first := TemplateToAssessmentCounts(tmpl)
	second := TemplateToAssessmentCounts(tmpl)
	if first != second {
		t.Fatalf("repeated resolution should yield equal counts: %+v vs %+v", first, second)
	}

	// Results are independently owned: mutating one does not affect a later
	// resolution of the same template.
	first.MediumCount = 99
	third := TemplateToAssessmentCounts(tmpl)
	if third.MediumCount != 10 {
		t.Fatalf("mutating a result must not affect the template, got %+v", third)
	}
}

func TestGetTemplateReturnsIndependentCopy(t *testing.T) {
	tmpl, ok := GetTemplate("quick_quiz")
	if !ok {
		t.Fatalf("quick_quiz should exist")
	}
	tmpl.BucketTargets[BucketEasy] = 42

	fresh, _ := GetTemplate("quick_quiz")
	if fresh.BucketTargets[BucketEasy] != 3 {
		t.Fatalf("registry must not observe caller mutations, got %d", fresh.BucketTargets[BucketEasy])
	}
}
