package exams

// Bucket labels a difficulty bucket recognized by assessment templates.
type Bucket string

// Recognized difficulty buckets. BucketHardMCQ restricts hard questions to
// multiple-choice form for auto-gradability; BucketHard allows any form.
// Both may be non-zero on the same template.
const (
	BucketEasy    Bucket = "easy"
	BucketMedium  Bucket = "medium"
	BucketHardMCQ Bucket = "hard_mcq"
	BucketHard    Bucket = "hard"
)

// AssessmentTemplate describes target question counts per difficulty bucket
// for a generated exam or quiz.
type AssessmentTemplate struct {
	Name          string
	BucketTargets map[Bucket]int
}

// AssessmentCounts is the concrete count breakdown derived from a template.
type AssessmentCounts struct {
	EasyCount    int `json:"easyCount"`
	MediumCount  int `json:"mediumCount"`
	HardMCQCount int `json:"hardMcqCount"`
	HardCount    int `json:"hardCount"`
}

// Total returns the number of questions the counts describe.
func (c AssessmentCounts) Total() int {
	return c.EasyCount + c.MediumCount + c.HardMCQCount + c.HardCount
}

// templates is the static template catalog, read-only after init.
var templates = map[string]AssessmentTemplate{
	"posttest_standard": {
		Name: "posttest_standard",
		BucketTargets: map[Bucket]int{
			BucketMedium:  10,
			BucketHardMCQ: 6,
			BucketHard:    3,
		},
	},
	"pretest_standard": {
		Name: "pretest_standard",
		BucketTargets: map[Bucket]int{
			BucketEasy:   5,
			BucketMedium: 5,
		},
	},
	"quick_quiz": {
		Name: "quick_quiz",
		BucketTargets: map[Bucket]int{
			BucketEasy:   3,
			BucketMedium: 2,
		},
	},
}

// GetTemplate returns the template matching name exactly, or false when
// unknown. Callers must handle absence; it is never an error here.
func GetTemplate(name string) (AssessmentTemplate, bool) {
	t, ok := templates[name]
	if !ok {
		return AssessmentTemplate{}, false
	}
	targets := make(map[Bucket]int, len(t.BucketTargets))
	for bucket, count := range t.BucketTargets {
		targets[bucket] = count
	}
	return AssessmentTemplate{Name: t.Name, BucketTargets: targets}, true
}

// TemplateToAssessmentCounts derives the concrete count breakdown from a
// template. Buckets absent from the template resolve to zero; the result
// shares no state with the template.
func TemplateToAssessmentCounts(t AssessmentTemplate) AssessmentCounts {
	return AssessmentCounts{
		EasyCount:    t.BucketTargets[BucketEasy],
		MediumCount:  t.BucketTargets[BucketMedium],
		HardMCQCount: t.BucketTargets[BucketHardMCQ],
		HardCount:    t.BucketTargets[BucketHard],
	}
}

// TemplateNames returns the catalog's template names.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}
