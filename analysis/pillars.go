// Package analysis implements the eight pillar fundamentals scorer. Each
// pillar grades one metric into a strong/fair/weak bucket; the aggregate is a
// weighted average over the pillars the data source could actually supply.
package analysis

import (
	"finance-gateway/models"
)

// Bucket boundaries. Valuation multiples and the liabilities ratio are
// lower-is-better; returns and growth rates are higher-is-better.
const (
	peStrongMax = 22.5
	peFairMax   = 35.0

	roicStrongMin = 10.0
	roicFairMin   = 5.0

	sharesChangeFairMax = 2.0

	growthStrongMin = 5.0

	liabilitiesStrongMax = 5.0
	liabilitiesFairMax   = 8.0
)

// Sub-scores assigned to each bucket
const (
	scoreStrong = 100.0
	scoreFair   = 50.0
	scoreWeak   = 0.0
)

// pillarWeight is the weight of a single pillar. All eight weigh the same.
const pillarWeight = 100.0 / float64(8)

// pillarSpec describes how one pillar grades its metric
type pillarSpec struct {
	pillar models.Pillar
	value  func(*models.Fundamentals) *float64
	bucket func(float64) models.PillarStatus
	passed func(float64) bool
}

var pillarSpecs = []pillarSpec{
	{
		pillar: models.PillarPERatio,
		value:  func(f *models.Fundamentals) *float64 { return f.PERatio },
		bucket: bucketLowerBetter(peStrongMax, peFairMax),
		passed: func(v float64) bool { return v > 0 && v < peStrongMax },
	},
	{
		pillar: models.PillarROIC,
		value:  func(f *models.Fundamentals) *float64 { return f.ROIC },
		bucket: bucketHigherBetter(roicStrongMin, roicFairMin),
		passed: func(v float64) bool { return v > roicStrongMin },
	},
	{
		pillar: models.PillarSharesOutstanding,
		value:  func(f *models.Fundamentals) *float64 { return f.SharesOutstandingChange },
		bucket: func(v float64) models.PillarStatus {
			// A shrinking share count is the buyback signal; mild dilution is
			// tolerable, heavy dilution is not
			switch {
			case v < 0:
				return models.StatusStrong
			case v <= sharesChangeFairMax:
				return models.StatusFair
			default:
				return models.StatusWeak
			}
		},
		passed: func(v float64) bool { return v < 0 },
	},
	{
		pillar: models.PillarCashFlowGrowth,
		value:  func(f *models.Fundamentals) *float64 { return f.OperatingCashFlowGrowth },
		bucket: bucketHigherBetter(growthStrongMin, 0),
		passed: func(v float64) bool { return v > 0 },
	},
	{
		pillar: models.PillarNetIncomeGrowth,
		value:  func(f *models.Fundamentals) *float64 { return f.NetIncomeGrowth },
		bucket: bucketHigherBetter(growthStrongMin, 0),
		passed: func(v float64) bool { return v > 0 },
	},
	{
		pillar: models.PillarRevenueGrowth,
		value:  func(f *models.Fundamentals) *float64 { return f.RevenueGrowth },
		bucket: bucketHigherBetter(growthStrongMin, 0),
		passed: func(v float64) bool { return v > 0 },
	},
	{
		pillar: models.PillarLiabilities,
		value:  func(f *models.Fundamentals) *float64 { return f.LiabilitiesRatio },
		bucket: bucketLowerBetter(liabilitiesStrongMax, liabilitiesFairMax),
		passed: func(v float64) bool { return v >= 0 && v < liabilitiesStrongMax },
	},
	{
		pillar: models.PillarPriceToFCF,
		value:  func(f *models.Fundamentals) *float64 { return f.PriceToFreeCashFlow },
		bucket: bucketLowerBetter(peStrongMax, peFairMax),
		passed: func(v float64) bool { return v > 0 && v < peStrongMax },
	},
}

// bucketLowerBetter grades a metric where smaller values are better. Negative
// values (a negative P/E means negative earnings) grade weak.
func bucketLowerBetter(strongMax, fairMax float64) func(float64) models.PillarStatus {
	return func(v float64) models.PillarStatus {
		switch {
		case v <= 0:
			return models.StatusWeak
		case v < strongMax:
			return models.StatusStrong
		case v <= fairMax:
			return models.StatusFair
		default:
			return models.StatusWeak
		}
	}
}

// bucketHigherBetter grades a metric where larger values are better
func bucketHigherBetter(strongMin, fairMin float64) func(float64) models.PillarStatus {
	return func(v float64) models.PillarStatus {
		switch {
		case v > strongMin:
			return models.StatusStrong
		case v >= fairMin:
			return models.StatusFair
		default:
			return models.StatusWeak
		}
	}
}

// ScorePillars grades every pillar against a fundamentals record. Pillars
// whose metric the source did not supply come back unavailable with zero
// sub-score; they are excluded from the aggregate, not counted against it.
func ScorePillars(f *models.Fundamentals) []models.PillarResult {
	results := make([]models.PillarResult, 0, len(pillarSpecs))
	for _, spec := range pillarSpecs {
		result := models.PillarResult{
			Pillar: spec.pillar,
			Weight: pillarWeight,
			Status: models.StatusUnavailable,
		}
		if v := spec.value(f); v != nil {
			result.Value = v
			result.Available = true
			result.Status = spec.bucket(*v)
			result.Passed = spec.passed(*v)
			switch result.Status {
			case models.StatusStrong:
				result.SubScore = scoreStrong
			case models.StatusFair:
				result.SubScore = scoreFair
			default:
				result.SubScore = scoreWeak
			}
		}
		results = append(results, result)
	}
	return results
}

// Aggregate computes the weighted score over the available pillars and fills
// the summary fields of the report. With no available pillars the score stays
// nil and the recommendation is insufficient_data.
func Aggregate(report *models.PillarReport) {
	var weighted, availableWeight float64
	passed := 0
	for _, p := range report.Pillars {
		if !p.Available {
			continue
		}
		availableWeight += p.Weight
		weighted += p.SubScore * p.Weight
		if p.Passed {
			passed++
		}
	}

	report.AvailableWeight = availableWeight
	report.ChecksPassed = passed

	if availableWeight == 0 {
		report.Score = nil
		report.Recommendation = models.RecommendationInsufficientData
		return
	}

	score := weighted / availableWeight
	report.Score = &score
	report.Recommendation = recommend(score)
}

// recommend maps an aggregate score onto a recommendation label
func recommend(score float64) models.Recommendation {
	switch {
	case score >= 80:
		return models.RecommendationStrongBuy
	case score >= 60:
		return models.RecommendationBuy
	case score >= 40:
		return models.RecommendationHold
	case score >= 20:
		return models.RecommendationSell
	default:
		return models.RecommendationStrongSell
	}
}
