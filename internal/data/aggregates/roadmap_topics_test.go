package aggregates

import (
	"math"
	"testing"
	"unicode/utf8"

	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
)

func TestNormalizeAILabels(t *testing.T) {
	out, err := normalizeAILabels([]domainagg.AILabel{
		{Slug: " Backend ", Confidence: 0.8, IsPrimary: true},
		{Slug: "backend", Confidence: 0.3},
		{Slug: "database", Confidence: 0.5},
	})
	if err != nil {
		t.Fatalf("normalizeAILabels: %v", err)
	}
	if len(out) != 2 || out[0].Slug != "backend" || out[0].Confidence != 0.8 || out[1].Slug != "database" {
		t.Fatalf("unexpected labels: %+v", out)
	}

	bad := [][]domainagg.AILabel{
		{{Slug: "", Confidence: 0.5}},
		{{Slug: "a", Confidence: 0}},
		{{Slug: "a", Confidence: 1.5}},
		{{Slug: "a", Confidence: math.NaN()}},
		{{Slug: "a", Confidence: 0.5, IsPrimary: true}, {Slug: "b", Confidence: 0.4, IsPrimary: true}},
	}
	for i, in := range bad {
		if _, err := normalizeAILabels(in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestTopicNameFromSlug(t *testing.T) {
	names := map[string]string{
		"machine-learning":  "Machine Learning",
		"ui-ux-design":      "Ui Ux Design",
		"go":                "Go",
		"édition-numérique": "Édition Numérique",
		"ölçme_değerlendir": "Ölçme Değerlendir",
		"--":                "",
	}
	for in, want := range names {
		if got := TopicNameFromSlug(in); got != want {
			t.Fatalf("TopicNameFromSlug(%q): want=%q got=%q", in, want, got)
		}
		if !utf8.ValidString(TopicNameFromSlug(in)) {
			t.Fatalf("TopicNameFromSlug(%q) produced invalid UTF-8", in)
		}
	}
}
