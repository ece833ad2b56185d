package service

import (
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/noah-isme/tutorlink-api/internal/models"
)

// Score weights. They sum to 1 so the weighted blend stays within [0, 100].
const (
	expertiseWeight    = 0.40
	availabilityWeight = 0.25
	formatWeight       = 0.15
	budgetWeight       = 0.20

	maxRatingBonus = 5.0
	maxRating      = 5.0
	maxScore       = 100.0

	exactExpertiseScore   = 100.0
	partialExpertiseScore = 60.0
)

// MatchRequest is the request side of a score computation with availability already
// classified.
type MatchRequest struct {
	Subject      string
	Availability models.Availability
	Format       models.MeetingFormat
	BudgetMin    float64
	BudgetMax    float64
}

// MatchTutor is the tutor side of a score computation.
type MatchTutor struct {
	AreasOfExpertise    []string
	SelfReportedCourses []string
	Availability        models.Availability
	PreferredFormat     models.MeetingFormat
	HourlyRate          *float64
}

// NewMatchRequest classifies a stored tutoring request for scoring.
func NewMatchRequest(req *models.TutoringRequest) MatchRequest {
	if req == nil {
		return MatchRequest{Availability: models.MalformedAvailability()}
	}
	return MatchRequest{
		Subject:      req.CourseSubject,
		Availability: req.Availability(),
		Format:       req.MeetingFormat,
		BudgetMin:    req.BudgetMin,
		BudgetMax:    req.BudgetMax,
	}
}

// NewMatchTutor classifies a stored tutor profile for scoring.
func NewMatchTutor(profile *models.Profile) MatchTutor {
	if profile == nil {
		return MatchTutor{Availability: models.MalformedAvailability()}
	}
	return MatchTutor{
		AreasOfExpertise:    profile.AreasOfExpertise,
		SelfReportedCourses: profile.SelfReportedCourses,
		Availability:        profile.AvailabilitySlots(),
		PreferredFormat:     profile.PreferredFormat,
		HourlyRate:          profile.HourlyRate,
	}
}

// ComputeMatchScore returns the tutor's fit for the request in [0, 100]. A nil rating
// contributes no bonus.
func ComputeMatchScore(req MatchRequest, tutor MatchTutor, averageRating *float64) float64 {
	return ComputeMatchBreakdown(req, tutor, averageRating).Total
}

// ComputeMatchBreakdown is ComputeMatchScore with the intermediate sub-scores kept.
func ComputeMatchBreakdown(req MatchRequest, tutor MatchTutor, averageRating *float64) models.MatchBreakdown {
	b := models.MatchBreakdown{
		Expertise:    expertiseScore(req.Subject, tutor.AreasOfExpertise, tutor.SelfReportedCourses),
		Availability: availabilityScore(req.Availability, tutor.Availability),
		Format:       formatScore(req.Format, tutor.PreferredFormat),
		Budget:       budgetScore(req.BudgetMin, req.BudgetMax, tutor.HourlyRate),
	}
	b.Weighted = b.Expertise*expertiseWeight +
		b.Availability*availabilityWeight +
		b.Format*formatWeight +
		b.Budget*budgetWeight
	b.RatingBonus = ratingBonus(averageRating)
	b.Total = math.Min(round2(b.Weighted+b.RatingBonus), maxScore)
	return b
}

func expertiseScore(subject string, areas, courses []string) float64 {
	needle := strings.ToLower(subject)
	pool := lo.Map(append(append([]string{}, areas...), courses...), func(entry string, _ int) string {
		return strings.ToLower(entry)
	})
	if lo.Contains(pool, needle) {
		return exactExpertiseScore
	}
	partial := lo.SomeBy(pool, func(entry string) bool {
		return strings.Contains(entry, needle) || strings.Contains(needle, entry)
	})
	if partial {
		return partialExpertiseScore
	}
	return 0
}

func availabilityScore(requested, offered models.Availability) float64 {
	if !requested.WellFormed || !offered.WellFormed {
		return 0
	}
	if len(requested.Slots) == 0 {
		return 0
	}
	covered := lo.CountBy(requested.Slots, func(slot models.AvailabilitySlot) bool {
		return lo.SomeBy(offered.Slots, slot.Overlaps)
	})
	return math.Min(maxScore*float64(covered)/float64(len(requested.Slots)), maxScore)
}

func formatScore(requested, preferred models.MeetingFormat) float64 {
	if requested == preferred || requested == models.FormatBoth || preferred == models.FormatBoth {
		return 100
	}
	return 0
}

func budgetScore(low, high float64, rate *float64) float64 {
	if rate == nil {
		return 0
	}
	r := *rate
	if r >= low && r <= high {
		return 100
	}
	var distance float64
	if r < low {
		distance = low - r
	} else {
		distance = r - high
	}
	span := math.Max(high-low, 1)
	return math.Max(0, 100-100*distance/span)
}

func ratingBonus(rating *float64) float64 {
	if rating == nil {
		return 0
	}
	return (*rating / maxRating) * maxRatingBonus
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
