// Package scoring computes lead-quality scores from request attributes.
package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
)

// Factor weights. Must sum to 1.0.
const (
	weightCompleteness = 0.20
	weightSource       = 0.15
	weightEngagement   = 0.15
	weightBudget       = 0.20
	weightComplexity   = 0.10
	weightGeographic   = 0.10
	weightUrgency      = 0.10
)

// conversionCap bounds the conversion probability strictly below 1.
const conversionCap = 0.95

// Factors is the per-dimension breakdown, each in [0,100].
type Factors struct {
	Completeness    int `json:"completeness"`
	SourceQuality   int `json:"sourceQuality"`
	Engagement      int `json:"engagement"`
	BudgetAlignment int `json:"budgetAlignment"`
	Complexity      int `json:"complexity"`
	GeographicFit   int `json:"geographicFit"`
	Urgency         int `json:"urgency"`
}

// Result is the recomputable scoring outcome. It is not persisted as its
// own entity; the service writes score and priority back onto the request.
type Result struct {
	OverallScore          int      `json:"overallScore"`
	Grade                 string   `json:"grade"`
	Priority              string   `json:"priority"`
	ConversionProbability float64  `json:"conversionProbability"`
	Factors               Factors  `json:"factors"`
	Recommendations       []string `json:"recommendations"`
}

// sourceScores maps lead sources to fixed quality scores. Unknown sources
// land mid-low.
var sourceScores = map[string]int{
	"referral":        95,
	"repeat_customer": 90,
	"partner":         80,
	"website":         75,
	"social_media":    60,
	"advertisement":   55,
	"cold_outreach":   30,
}

const defaultSourceScore = 40

var urgencyKeywords = []string{"urgent", "asap", "emergency", "immediately", "spoed", "right away"}

var amountPattern = regexp.MustCompile(`(\d[\d.,]*)\s*(k)?`)

// Compute derives the full scoring result from a hydrated request.
// Pure function of its inputs; the write-back side effect lives in Service.
func Compute(req repository.Request, serviceAreas []string, now time.Time) Result {
	factors := Factors{
		Completeness:    completenessScore(req),
		SourceQuality:   sourceScore(req.LeadSource),
		Engagement:      engagementScore(req),
		BudgetAlignment: budgetScore(req.Budget),
		Complexity:      complexityScore(req.Product),
		GeographicFit:   geographicScore(req.Area, serviceAreas),
		Urgency:         urgencyScore(req, now),
	}

	weighted := float64(factors.Completeness)*weightCompleteness +
		float64(factors.SourceQuality)*weightSource +
		float64(factors.Engagement)*weightEngagement +
		float64(factors.BudgetAlignment)*weightBudget +
		float64(factors.Complexity)*weightComplexity +
		float64(factors.GeographicFit)*weightGeographic +
		float64(factors.Urgency)*weightUrgency

	overall := int(math.Round(weighted))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	return Result{
		OverallScore:          overall,
		Grade:                 gradeFor(overall),
		Priority:              priorityFor(overall),
		ConversionProbability: math.Min(float64(overall)/100*0.9, conversionCap),
		Factors:               factors,
		Recommendations:       recommendations(overall, factors),
	}
}

func gradeFor(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func priorityFor(score int) string {
	switch {
	case score >= 85:
		return domain.PriorityUrgent
	case score >= 70:
		return domain.PriorityHigh
	case score >= 50:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// completenessScore is the fraction of should-be-present fields that are
// filled, scaled to 100.
func completenessScore(req repository.Request) int {
	present := 0
	fields := []bool{
		req.LeadSource != "",
		req.Product != "",
		req.Message != "",
		req.Budget != "",
		req.RelationToProperty != "",
		req.ContactID != nil,
		req.PropertyID != nil,
		req.RequestedVisitAt != nil,
	}
	for _, ok := range fields {
		if ok {
			present++
		}
	}
	return present * 100 / len(fields)
}

func sourceScore(source string) int {
	if score, ok := sourceScores[strings.ToLower(strings.TrimSpace(source))]; ok {
		return score
	}
	return defaultSourceScore
}

func engagementScore(req repository.Request) int {
	score := 50
	if len(req.Message) > 100 {
		score += 20
	}
	if containsUrgencyKeyword(req.Message) {
		score += 10
	}
	if req.HasAttachments {
		score += 15
	}
	if req.RequestedVisitAt != nil {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

// budgetScore classifies the free-text budget field into bands. An empty
// budget is the worst signal; an unparseable non-empty one lands mid.
func budgetScore(budget string) int {
	trimmed := strings.TrimSpace(budget)
	if trimmed == "" {
		return 20
	}

	amount := parseBudgetAmount(trimmed)
	switch {
	case amount >= 100_000:
		return 100
	case amount >= 50_000:
		return 85
	case amount >= 25_000:
		return 70
	case amount >= 10_000:
		return 55
	case amount > 0:
		return 40
	default:
		return 50
	}
}

// parseBudgetAmount extracts the largest monetary amount mentioned in the
// budget text, handling separators and a trailing "k" multiplier.
func parseBudgetAmount(text string) float64 {
	var max float64
	for _, match := range amountPattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		digits := strings.NewReplacer(",", "", ".", "").Replace(match[1])
		value, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if match[2] == "k" {
			value *= 1000
		}
		if value > max {
			max = value
		}
	}
	return max
}

// complexityScore classifies the product/category by keyword into bands.
func complexityScore(product string) int {
	p := strings.ToLower(product)
	switch {
	case p == "":
		return 50
	case strings.Contains(p, "renovation") || strings.Contains(p, "construction") || strings.Contains(p, "extension"):
		return 90
	case strings.Contains(p, "kitchen") || strings.Contains(p, "bathroom"):
		return 75
	case strings.Contains(p, "roof") || strings.Contains(p, "hvac") || strings.Contains(p, "electrical") || strings.Contains(p, "plumbing") || strings.Contains(p, "heat pump"):
		return 65
	case strings.Contains(p, "paint") || strings.Contains(p, "maintenance") || strings.Contains(p, "repair"):
		return 45
	default:
		return 50
	}
}

// geographicScore is binary for now: inside a known service area or not.
func geographicScore(area string, serviceAreas []string) int {
	normalized := strings.ToLower(strings.TrimSpace(area))
	for _, known := range serviceAreas {
		if normalized == strings.ToLower(strings.TrimSpace(known)) && normalized != "" {
			return 90
		}
	}
	return 40
}

func urgencyScore(req repository.Request, now time.Time) int {
	score := 50
	if req.RequestedVisitAt != nil {
		days := req.RequestedVisitAt.Sub(now).Hours() / 24
		switch {
		case days <= 7:
			score += 35
		case days <= 14:
			score += 25
		case days <= 30:
			score += 15
		}
	}
	if containsUrgencyKeyword(req.Message) {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

func containsUrgencyKeyword(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func recommendations(overall int, factors Factors) []string {
	recs := make([]string, 0, 4)
	if overall >= 85 {
		recs = append(recs, "High-quality lead: schedule contact immediately")
	}
	if factors.Completeness < 70 {
		recs = append(recs, "Gather missing request details before outreach")
	}
	if factors.BudgetAlignment < 40 {
		recs = append(recs, "Qualify budget expectations early in the conversation")
	}
	if factors.GeographicFit < 50 {
		recs = append(recs, "Confirm the request falls inside the service area")
	}
	if factors.Engagement < 50 {
		recs = append(recs, "Low engagement signals: verify the request is genuine")
	}
	return recs
}
