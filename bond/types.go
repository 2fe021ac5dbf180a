package bond

import (
	"fmt"
	"strings"
)

// RateType states how the coupon rate is quoted.
type RateType string

const (
	RateNominal   RateType = "Nominal"
	RateEffective RateType = "Effective"
)

// Capitalization is the compounding convention of a nominal rate.
type Capitalization string

const (
	CapDaily      Capitalization = "Daily"
	CapBiweekly   Capitalization = "Biweekly"
	CapMonthly    Capitalization = "Monthly"
	CapBimonthly  Capitalization = "Bimonthly"
	CapQuarterly  Capitalization = "Quarterly"
	CapFourMonth  Capitalization = "FourMonth"
	CapSemiannual Capitalization = "Semiannual"
	CapAnnual     Capitalization = "Annual"
)

// Capitalizations lists every supported convention, shortest period first.
var Capitalizations = []Capitalization{
	CapDaily, CapBiweekly, CapMonthly, CapBimonthly,
	CapQuarterly, CapFourMonth, CapSemiannual, CapAnnual,
}

// GraceType is the deferral applied during the grace window.
type GraceType string

const (
	GraceNone    GraceType = "None"
	GracePartial GraceType = "Partial"
	GraceTotal   GraceType = "Total"
)

// GraceMarker tags a schedule row with the regime it was built under.
type GraceMarker string

const (
	MarkerInitial  GraceMarker = ""
	MarkerStandard GraceMarker = "S"
	MarkerPartial  GraceMarker = "P"
	MarkerTotal    GraceMarker = "T"
)

// Frequencies are the supported coupon counts per year.
var Frequencies = []int{1, 2, 3, 4, 6, 12}

// BondInput holds the structuring parameters of one bond.
//
// All rates and cost percentages are in percent (e.g. 10 for 10%).
type BondInput struct {
	Nominal        float64
	Years          int
	Frequency      int
	DaysPerYear    int
	RateType       RateType
	Capitalization Capitalization // required iff RateType is RateNominal
	CouponRate     float64

	GraceType    GraceType
	GracePeriods int
	// GraceYears optionally restates the grace window in years. When set it
	// must equal GracePeriods / Frequency; Ng always comes from GracePeriods.
	GraceYears float64

	StructuringPct float64
	PlacementPct   float64
	DepositoryPct  float64

	// DiscountRate is the issuer's cost of capital (Kd), optional.
	DiscountRate *float64
	// OpportunityRate is the holder's opportunity cost (COK), optional.
	OpportunityRate *float64
}

// TotalPeriods returns N = Years × Frequency.
func (in BondInput) TotalPeriods() int {
	return in.Years * in.Frequency
}

// GraceWindow returns the grace window in years, GracePeriods / Frequency.
// It is 0 without a grace type.
func (in BondInput) GraceWindow() float64 {
	if in.Frequency <= 0 {
		return 0
	}
	return float64(in.GracePeriodCount()) / float64(in.Frequency)
}

// GracePeriodCount returns Ng: GracePeriods under a partial or total grace,
// 0 otherwise.
func (in BondInput) GracePeriodCount() int {
	switch in.GraceType {
	case GracePartial, GraceTotal:
		return in.GracePeriods
	default:
		return 0
	}
}

// FlowRow is one period of the cash-flow schedule.
//
// Interest is signed negative (a cost to the issuer). Row 0 is the issue
// date and carries only the initial flows and the nominal as closing balance.
type FlowRow struct {
	Period         int
	Marker         GraceMarker
	OpeningBalance float64
	Interest       float64
	Payment        float64
	Amortization   float64
	IssuerFlow     float64
	HolderFlow     float64
	ClosingBalance float64
	PresentValue   float64
	// WeightedTime is PV × n × periodDays/360 (duration numerator term).
	WeightedTime float64
	// ConvexityFactor is PV × n × (n+1) × periodDays/360 × 2.
	ConvexityFactor float64
}

// BondConstants are the structural values derived from a BondInput.
type BondConstants struct {
	Frequency      int
	PeriodsPerYear int
	TotalPeriods   int
	GracePeriods   int

	EffectiveAnnualRate float64
	// MonthlyEffectiveRate is (1+TEA)^(1/12) − 1 regardless of frequency.
	MonthlyEffectiveRate float64
	PeriodEffectiveRate  float64
	// PeriodRateLabel names PeriodEffectiveRate (TEM, TEB, TET, TEC, TES, TEA or TEP).
	PeriodRateLabel string
	PeriodRate      float64

	IssuerInitialCosts float64
	HolderInitialCosts float64

	// OpportunityRatePerPeriod is COK per coupon period, in percent.
	OpportunityRatePerPeriod *float64
	// DiscountRatePerPeriod is Kd per coupon period, in percent.
	DiscountRatePerPeriod *float64
	// CapitalizationDays is the length of one compounding period for nominal rates.
	CapitalizationDays *int

	// Filled in once metrics are known.
	CurrentPrice *float64
	Profit       *float64
}

// BondMetrics are the price and risk figures derived from the schedule.
type BondMetrics struct {
	CurrentPrice float64
	Profit       float64
	// Duration is Macaulay duration in years.
	Duration          float64
	Convexity         float64
	DurationConvexity float64
	ModifiedDuration  float64
	// IssuerCostRate is TCEA as a decimal.
	IssuerCostRate float64
	// HolderReturnRate is TREA as a decimal.
	HolderReturnRate float64
}

// BondCalculationResult is everything Calculate produces for one input.
type BondCalculationResult struct {
	Input     BondInput
	Constants BondConstants
	Schedule  []FlowRow
	Metrics   BondMetrics
}

// ParseRateType maps a rate type name (case-insensitive) to a RateType.
func ParseRateType(s string) (RateType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nominal":
		return RateNominal, nil
	case "effective":
		return RateEffective, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRateType, s)
	}
}

// ParseCapitalization maps a convention name (case-insensitive) to a
// Capitalization. The empty string maps to the empty convention.
func ParseCapitalization(s string) (Capitalization, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", nil
	}
	for _, c := range Capitalizations {
		if strings.EqualFold(trimmed, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCapitalization, s)
}

// ParseGraceType maps a grace type name (case-insensitive) to a GraceType.
// The empty string maps to GraceNone.
func ParseGraceType(s string) (GraceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return GraceNone, nil
	case "partial":
		return GracePartial, nil
	case "total":
		return GraceTotal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGraceType, s)
	}
}
