package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/Giftea/skillbazaar/internal/models"
)

// Analytics aggregates marketplace-wide statistics over one catalog snapshot.
type Analytics struct {
	TotalSkills     int            `json:"total_skills"`
	TotalCalls      int64          `json:"total_calls"`
	TotalRevenueUSD float64        `json:"total_revenue_usd"`
	TopSkills       []TopSkill     `json:"top_skills"`
	Categories      map[string]int `json:"categories"`
	LastUpdated     time.Time      `json:"last_updated"`
}

// TopSkill is one leaderboard row with its revenue contribution.
type TopSkill struct {
	Name       string  `json:"name"`
	UsageCount int64   `json:"usage_count"`
	RevenueUSD float64 `json:"revenue_usd"`
}

// AnalyticsService derives statistics from the skill catalog on demand.
type AnalyticsService struct {
	skills *SkillService
	now    func() time.Time
}

// NewAnalyticsService constructs the aggregator.
func NewAnalyticsService(skills *SkillService) (*AnalyticsService, error) {
	if skills == nil {
		return nil, errors.New("analytics service: skill service is required")
	}
	return &AnalyticsService{skills: skills, now: time.Now}, nil
}

// Compute reads the current catalog snapshot and aggregates it. The store is
// never mutated.
func (s *AnalyticsService) Compute(ctx context.Context) (*Analytics, error) {
	if s == nil {
		return nil, errors.New("analytics service: service not initialised")
	}

	records, err := s.skills.List(ensuredContext(ctx))
	if err != nil {
		return nil, err
	}

	result := ComputeAnalytics(records, s.now())
	return &result, nil
}

const topSkillCount = 3

// ComputeAnalytics is the pure aggregation over a catalog snapshot:
// totals, revenue rounded to 4 decimals, the top three skills by usage with
// ties broken by snapshot order, and a category histogram.
func ComputeAnalytics(records []models.Skill, now time.Time) Analytics {
	analytics := Analytics{
		TotalSkills: len(records),
		TopSkills:   []TopSkill{},
		Categories:  make(map[string]int, 4),
		LastUpdated: now,
	}

	var revenue float64
	for _, skill := range records {
		analytics.TotalCalls += skill.UsageCount
		revenue += float64(skill.UsageCount) * skill.PriceUSD
		analytics.Categories[skill.Category]++
	}
	analytics.TotalRevenueUSD = round4(revenue)

	ranked := make([]models.Skill, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].UsageCount > ranked[j].UsageCount
	})

	limit := topSkillCount
	if len(ranked) < limit {
		limit = len(ranked)
	}
	for _, skill := range ranked[:limit] {
		analytics.TopSkills = append(analytics.TopSkills, TopSkill{
			Name:       skill.Name,
			UsageCount: skill.UsageCount,
			RevenueUSD: round4(float64(skill.UsageCount) * skill.PriceUSD),
		})
	}

	return analytics
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
