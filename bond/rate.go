package bond

import (
	"fmt"
	"math"
)

// RateConversion is the outcome of converting a quoted coupon rate.
type RateConversion struct {
	// EffectiveAnnual is TEA as a decimal.
	EffectiveAnnual float64
	// Period is the effective rate per coupon period as a decimal.
	Period float64
	Label  string
	// Compounding is mCap for nominal rates, 0 for effective rates.
	Compounding int
	// Fallback reports that an unmapped capitalization was compounded at the
	// coupon frequency.
	Fallback bool
}

func pct(p float64) float64 { return p / 100 }

// CompoundingCount returns the number of compounding periods per year of a
// capitalization convention.
func CompoundingCount(c Capitalization) (int, bool) {
	switch c {
	case CapDaily:
		return 360, true
	case CapBiweekly:
		return 24, true
	case CapMonthly:
		return 12, true
	case CapBimonthly:
		return 6, true
	case CapQuarterly:
		return 4, true
	case CapFourMonth:
		return 3, true
	case CapSemiannual:
		return 2, true
	case CapAnnual:
		return 1, true
	default:
		return 0, false
	}
}

// CapitalizationDays returns the length in days of one compounding period.
func CapitalizationDays(c Capitalization) (int, bool) {
	switch c {
	case CapDaily:
		return 1, true
	case CapBiweekly:
		return 15, true
	case CapMonthly:
		return 30, true
	case CapBimonthly:
		return 60, true
	case CapQuarterly:
		return 90, true
	case CapFourMonth:
		return 120, true
	case CapSemiannual:
		return 180, true
	case CapAnnual:
		return 360, true
	default:
		return 0, false
	}
}

// PeriodRateLabel names the effective rate for a coupon period.
func PeriodRateLabel(frequency int) string {
	switch frequency {
	case 12:
		return "TEM"
	case 6:
		return "TEB"
	case 4:
		return "TET"
	case 3:
		return "TEC"
	case 2:
		return "TES"
	case 1:
		return "TEA"
	default:
		return "TEP"
	}
}

// EffectiveAnnualRate converts a quoted rate (percent) to TEA (decimal).
//
//	Effective: TEA = r
//	Nominal:   TEA = (1 + r/mCap)^mCap − 1
//
// An unmapped capitalization compounds at the coupon frequency; the second
// return value is then mCap and the third reports the fallback.
func EffectiveAnnualRate(rt RateType, rate float64, c Capitalization, frequency int) (float64, int, bool) {
	r := pct(rate)
	if rt != RateNominal {
		return r, 0, false
	}
	mCap, ok := CompoundingCount(c)
	if !ok {
		mCap = frequency
	}
	m := float64(mCap)
	return math.Pow(1+r/m, m) - 1, mCap, !ok
}

// PeriodRate converts an effective annual rate to the rate per coupon period:
// i = (1+TEA)^(1/frequency) − 1.
func PeriodRate(tea float64, frequency int) float64 {
	return math.Pow(1+tea, 1/float64(frequency)) - 1
}

// ConvertRate runs the full rate conversion for an input.
func ConvertRate(in BondInput) RateConversion {
	tea, mCap, fallback := EffectiveAnnualRate(in.RateType, in.CouponRate, in.Capitalization, in.Frequency)
	return RateConversion{
		EffectiveAnnual: tea,
		Period:          PeriodRate(tea, in.Frequency),
		Label:           PeriodRateLabel(in.Frequency),
		Compounding:     mCap,
		Fallback:        fallback,
	}
}

// OpportunityPeriodRate converts an annual rate (percent) to the rate of one
// coupon period measured on a 360-day basis:
//
//	cok = (1 + rate)^((daysPerYear/frequency)/360) − 1
//
// A nil rate yields 0.
func OpportunityPeriodRate(rate *float64, daysPerYear, frequency int) float64 {
	if rate == nil || frequency <= 0 {
		return 0
	}
	exp := (float64(daysPerYear) / float64(frequency)) / 360
	return math.Pow(1+pct(*rate), exp) - 1
}

// HolderDiscountRate is the holder's per-period discount rate (COK, decimal)
// shared by the schedule's present values and modified duration.
func (in BondInput) HolderDiscountRate() float64 {
	return OpportunityPeriodRate(in.OpportunityRate, in.DaysPerYear, in.Frequency)
}

// SemiannualRate returns (1 + rate)^0.5 − 1 for an annual rate in percent;
// a nil rate yields 0.
func SemiannualRate(rate *float64) float64 {
	if rate == nil {
		return 0
	}
	return math.Pow(1+pct(*rate), 0.5) - 1
}

func traceRateConversion(t Tracer, in BondInput, rc RateConversion) {
	formula := "i = (1 + TEA)^(1/m) - 1"
	calc := fmt.Sprintf("(1 + %g)^(1/%d) - 1 = %.6f%%", rc.EffectiveAnnual, in.Frequency, rc.Period*100)
	if in.RateType == RateNominal {
		formula = "TEA = (1 + TNA/mCap)^mCap - 1; i = (1 + TEA)^(1/m) - 1"
		calc = fmt.Sprintf("TEA = (1 + %g/%d)^%d - 1 = %.6f%%; i = (1 + TEA)^(1/%d) - 1 = %.6f%%",
			pct(in.CouponRate), rc.Compounding, rc.Compounding, rc.EffectiveAnnual*100, in.Frequency, rc.Period*100)
	}
	t.Record(Step{
		Name:        StepRateConversion,
		Description: "convert the quoted annual rate to an effective rate per coupon period",
		Formula:     formula,
		Inputs: map[string]any{
			"rateType":       string(in.RateType),
			"couponRate":     in.CouponRate,
			"frequency":      in.Frequency,
			"capitalization": string(in.Capitalization),
			"compounding":    rc.Compounding,
			"fallback":       rc.Fallback,
		},
		Calculation: calc,
		Result:      rc.Period,
	})
}
