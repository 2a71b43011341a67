package scoring

import (
	"strings"
	"testing"
	"time"

	"requesthub_backend/internal/requests/repository"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func richRequest() repository.Request {
	contactID := uuid.New()
	propertyID := uuid.New()
	visit := testNow.AddDate(0, 0, 5)
	return repository.Request{
		ID:                 uuid.New(),
		Status:             "new",
		Priority:           "medium",
		LeadSource:         "referral",
		Product:            "full home renovation",
		Message:            strings.Repeat("We want to renovate the entire ground floor and are ready to start. ", 3),
		Budget:             "€120.000",
		RelationToProperty: "owner",
		ContactID:          &contactID,
		PropertyID:         &propertyID,
		Area:               "Amsterdam",
		RequestedVisitAt:   &visit,
		HasAttachments:     true,
	}
}

func TestComputeRichRequestScoresHigh(t *testing.T) {
	result := Compute(richRequest(), []string{"Amsterdam", "Utrecht"}, testNow)

	if result.OverallScore <= 80 {
		t.Fatalf("expected score above 80 for a fully qualified request, got %d", result.OverallScore)
	}
	if result.Grade != "A" && result.Grade != "B" {
		t.Fatalf("expected grade A or B, got %q", result.Grade)
	}
	if result.Priority != "urgent" && result.Priority != "high" {
		t.Fatalf("expected urgent or high priority, got %q", result.Priority)
	}
	if result.Factors.Completeness != 100 {
		t.Fatalf("expected full completeness, got %d", result.Factors.Completeness)
	}
	if result.Factors.GeographicFit != 90 {
		t.Fatalf("expected in-area geographic score 90, got %d", result.Factors.GeographicFit)
	}
}

func TestComputeEmptyRequestScoresLow(t *testing.T) {
	result := Compute(repository.Request{ID: uuid.New()}, nil, testNow)

	if result.OverallScore >= 40 {
		t.Fatalf("expected score below 40 for an empty request, got %d", result.OverallScore)
	}
	if result.Grade != "D" && result.Grade != "F" {
		t.Fatalf("expected grade D or F, got %q", result.Grade)
	}
	if result.Priority != "low" {
		t.Fatalf("expected low priority, got %q", result.Priority)
	}
	if len(result.Recommendations) == 0 {
		t.Fatal("expected recommendations for a weak lead")
	}
}

func TestComputeScoreBounds(t *testing.T) {
	for _, req := range []repository.Request{richRequest(), {ID: uuid.New()}} {
		result := Compute(req, []string{"Amsterdam"}, testNow)
		if result.OverallScore < 0 || result.OverallScore > 100 {
			t.Fatalf("score out of bounds: %d", result.OverallScore)
		}
		for _, f := range []int{
			result.Factors.Completeness, result.Factors.SourceQuality, result.Factors.Engagement,
			result.Factors.BudgetAlignment, result.Factors.Complexity, result.Factors.GeographicFit,
			result.Factors.Urgency,
		} {
			if f < 0 || f > 100 {
				t.Fatalf("factor out of bounds: %d", f)
			}
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	req := richRequest()
	first := Compute(req, []string{"Amsterdam"}, testNow)
	second := Compute(req, []string{"Amsterdam"}, testNow)
	if first.OverallScore != second.OverallScore || first.Factors != second.Factors {
		t.Fatalf("same input produced different results: %+v vs %+v", first, second)
	}
}

func TestConversionProbabilityCapped(t *testing.T) {
	result := Compute(richRequest(), []string{"Amsterdam"}, testNow)
	if result.ConversionProbability >= 1.0 {
		t.Fatalf("conversion probability must stay below 1, got %f", result.ConversionProbability)
	}
	if result.ConversionProbability > 0.95 {
		t.Fatalf("conversion probability exceeds cap: %f", result.ConversionProbability)
	}
}

func TestConversionProbabilityMonotonic(t *testing.T) {
	low := Compute(repository.Request{ID: uuid.New()}, nil, testNow)
	high := Compute(richRequest(), []string{"Amsterdam"}, testNow)
	if high.ConversionProbability <= low.ConversionProbability {
		t.Fatalf("higher score should yield higher conversion probability: %f vs %f",
			high.ConversionProbability, low.ConversionProbability)
	}
}

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{95, "A"}, {90, "A"}, {89, "B"}, {80, "B"},
		{79, "C"}, {70, "C"}, {69, "D"}, {60, "D"}, {59, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := gradeFor(tc.score); got != tc.want {
			t.Errorf("gradeFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestPriorityThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "urgent"}, {85, "urgent"}, {84, "high"}, {70, "high"},
		{69, "medium"}, {50, "medium"}, {49, "low"}, {0, "low"},
	}
	for _, tc := range cases {
		if got := priorityFor(tc.score); got != tc.want {
			t.Errorf("priorityFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestBudgetScoreBands(t *testing.T) {
	cases := []struct {
		budget string
		want   int
	}{
		{"", 20},
		{"€150.000", 100},
		{"100k", 100},
		{"around 60,000", 85},
		{"30k", 70},
		{"12000", 55},
		{"5000", 40},
		{"flexible", 50},
	}
	for _, tc := range cases {
		if got := budgetScore(tc.budget); got != tc.want {
			t.Errorf("budgetScore(%q) = %d, want %d", tc.budget, got, tc.want)
		}
	}
}

func TestSourceScoreKnownAndUnknown(t *testing.T) {
	if got := sourceScore("referral"); got != 95 {
		t.Fatalf("referral should score 95, got %d", got)
	}
	if got := sourceScore("Repeat_Customer"); got != 90 {
		t.Fatalf("source matching should be case-insensitive, got %d", got)
	}
	if got := sourceScore("carrier pigeon"); got != defaultSourceScore {
		t.Fatalf("unknown source should land on the default, got %d", got)
	}
}

func TestUrgencyScoreVisitProximity(t *testing.T) {
	mk := func(days int) repository.Request {
		visit := testNow.AddDate(0, 0, days)
		return repository.Request{RequestedVisitAt: &visit}
	}
	near := urgencyScore(mk(3), testNow)
	mid := urgencyScore(mk(10), testNow)
	far := urgencyScore(mk(60), testNow)
	if !(near > mid && mid > far) {
		t.Fatalf("urgency should decrease with visit distance: %d, %d, %d", near, mid, far)
	}
}

func TestUrgencyKeywordBoost(t *testing.T) {
	plain := urgencyScore(repository.Request{Message: "please contact us"}, testNow)
	urgent := urgencyScore(repository.Request{Message: "this is URGENT, water everywhere"}, testNow)
	if urgent <= plain {
		t.Fatalf("urgency keyword should raise the score: %d vs %d", urgent, plain)
	}
}

func TestGeographicScoreTrimsAndIgnoresCase(t *testing.T) {
	if got := geographicScore(" amsterdam ", []string{"Amsterdam"}); got != 90 {
		t.Fatalf("expected 90 for in-area match, got %d", got)
	}
	if got := geographicScore("", []string{""}); got != 40 {
		t.Fatalf("empty area must never count as in-area, got %d", got)
	}
}
