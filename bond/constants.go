package bond

import (
	"fmt"
	"math"
)

// CalculateConstants derives the structural constants of a bond. Price and
// profit are left nil; Calculate fills them once metrics are known.
func CalculateConstants(in BondInput, t Tracer) BondConstants {
	t = tracerOrNop(t)

	rc := ConvertRate(in)
	issuer, holder := InitialCosts(in)

	c := BondConstants{
		Frequency:            in.Frequency,
		PeriodsPerYear:       in.Frequency,
		TotalPeriods:         in.TotalPeriods(),
		GracePeriods:         in.GracePeriodCount(),
		EffectiveAnnualRate:  rc.EffectiveAnnual,
		MonthlyEffectiveRate: math.Pow(1+rc.EffectiveAnnual, 1.0/12) - 1,
		PeriodEffectiveRate:  rc.Period,
		PeriodRateLabel:      rc.Label,
		PeriodRate:           rc.Period,
		IssuerInitialCosts:   issuer,
		HolderInitialCosts:   holder,
	}

	if in.OpportunityRate != nil {
		v := in.HolderDiscountRate() * 100
		c.OpportunityRatePerPeriod = &v
	}
	if in.DiscountRate != nil {
		v := OpportunityPeriodRate(in.DiscountRate, in.DaysPerYear, in.Frequency) * 100
		c.DiscountRatePerPeriod = &v
	}
	if in.RateType == RateNominal {
		if days, ok := CapitalizationDays(in.Capitalization); ok {
			c.CapitalizationDays = &days
		}
	}

	calc := fmt.Sprintf("TEA = %g (already effective), %s = (1 + %g)^(1/%d) - 1 = %g",
		rc.EffectiveAnnual, rc.Label, rc.EffectiveAnnual, in.Frequency, rc.Period)
	if in.RateType == RateNominal {
		calc = fmt.Sprintf("TEA = (1 + %g/%d)^%d - 1 = %g, %s = (1 + %g)^(1/%d) - 1 = %g",
			pct(in.CouponRate), rc.Compounding, rc.Compounding, rc.EffectiveAnnual,
			rc.Label, rc.EffectiveAnnual, in.Frequency, rc.Period)
	}
	t.Record(Step{
		Name:        StepConstants,
		Description: "structural constants of the bond",
		Formula:     fmt.Sprintf("TEA, %s, TEM, costs, COK, capitalization days", rc.Label),
		Inputs: map[string]any{
			"rateType":       string(in.RateType),
			"couponRate":     in.CouponRate,
			"frequency":      in.Frequency,
			"periodLabel":    rc.Label,
			"capitalization": string(in.Capitalization),
		},
		Calculation: calc,
		Result:      c,
	})

	return c
}
