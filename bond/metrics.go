package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/bondcalc/utils"
)

// defaultConvexityPeriodDays applies when the frequency has no 30/360 period length.
const defaultConvexityPeriodDays = 180

// CalculateMetrics derives price, profit, duration, convexity and the
// headline annual rates from a schedule built by BuildSchedule.
// Row 0 contributes only to profit.
func CalculateMetrics(in BondInput, rows []FlowRow, t Tracer) BondMetrics {
	t = tracerOrNop(t)
	if len(rows) == 0 {
		return BondMetrics{}
	}

	var price, sumTime, sumConv float64
	for _, r := range rows[1:] {
		price += r.PresentValue
		sumTime += r.WeightedTime
		sumConv += r.ConvexityFactor
	}
	t.Record(Step{
		Name:         StepPrice,
		Description:  "sum of discounted holder flows, periods 1 to N",
		Formula:      "P = Σ PV_n, n = 1..N",
		Inputs:       map[string]any{"periods": len(rows) - 1},
		Calculation:  fmt.Sprintf("sum of %d discounted flows", len(rows)-1),
		Result:       price,
		Dependencies: []string{StepScheduleDone},
	})

	profit := price + rows[0].PresentValue
	t.Record(Step{
		Name:         StepProfit,
		Description:  "price plus the discounted issue-date outlay",
		Formula:      "profit = P + PV_0",
		Inputs:       map[string]any{"price": price, "pv0": rows[0].PresentValue},
		Calculation:  fmt.Sprintf("%g + (%g) = %g", price, rows[0].PresentValue, profit),
		Result:       profit,
		Dependencies: []string{StepPrice},
	})

	var duration float64
	if price > 0 {
		duration = sumTime / price
	}
	t.Record(Step{
		Name:         StepDuration,
		Description:  "present-value weighted average time to receipt, in years",
		Formula:      "D = Σ(PV_n × n × days/360) / P",
		Inputs:       map[string]any{"sumWeightedTime": sumTime, "price": price},
		Calculation:  fmt.Sprintf("%g / %g = %g", sumTime, price, duration),
		Result:       duration,
		Dependencies: []string{StepPrice},
	})

	var convexity float64
	cokSemi := SemiannualRate(in.OpportunityRate)
	periodDays := utils.PeriodDaysOr(in.Frequency, defaultConvexityPeriodDays)
	scale := float64(in.DaysPerYear) / float64(periodDays)
	if price > 0 {
		convexity = sumConv / (math.Pow(1+cokSemi, 2) * price * scale * scale)
	}
	t.Record(Step{
		Name:        StepConvexity,
		Description: "second-order price sensitivity",
		Formula:     "CV = Σ factor_n / [(1 + COK_sem)² × P × (daysPerYear/periodDays)²]",
		Inputs: map[string]any{
			"sumConvexityFactors": sumConv,
			"price":               price,
			"cokSemiannual":       cokSemi,
			"periodDays":          periodDays,
			"daysPerYear":         in.DaysPerYear,
		},
		Calculation:  fmt.Sprintf("%g / (%g × %g × %g) = %g", sumConv, math.Pow(1+cokSemi, 2), price, scale*scale, convexity),
		Result:       convexity,
		Dependencies: []string{StepPrice},
	})

	cok := in.HolderDiscountRate()
	modified := duration
	if cok > 0 {
		modified = duration / (1 + cok)
	}
	t.Record(Step{
		Name:         StepModified,
		Description:  "duration scaled by one period's discount factor",
		Formula:      "Dmod = D / (1 + COK_period)",
		Inputs:       map[string]any{"duration": duration, "cokPeriod": cok},
		Calculation:  fmt.Sprintf("%g / (1 + %g) = %g", duration, cok, modified),
		Result:       modified,
		Dependencies: []string{StepDuration},
	})

	tcea := pct(in.CouponRate) + pct(in.StructuringPct) + pct(in.PlacementPct) + pct(in.DepositoryPct)
	t.Record(Step{
		Name:        StepIssuerCost,
		Description: "issuer annual cost as coupon rate plus initial cost percentages",
		Formula:     "TCEA = coupon + structuring + placement + depository",
		Inputs: map[string]any{
			"couponRate":     in.CouponRate,
			"structuringPct": in.StructuringPct,
			"placementPct":   in.PlacementPct,
			"depositoryPct":  in.DepositoryPct,
		},
		Calculation: fmt.Sprintf("%g + %g + %g + %g = %g",
			pct(in.CouponRate), pct(in.StructuringPct), pct(in.PlacementPct), pct(in.DepositoryPct), tcea),
		Result: tcea,
	})

	trea := pct(in.CouponRate) - pct(in.DepositoryPct)
	t.Record(Step{
		Name:        StepHolderReturn,
		Description: "holder annual return as coupon rate less depository cost",
		Formula:     "TREA = coupon - depository",
		Inputs:      map[string]any{"couponRate": in.CouponRate, "depositoryPct": in.DepositoryPct},
		Calculation: fmt.Sprintf("%g - %g = %g", pct(in.CouponRate), pct(in.DepositoryPct), trea),
		Result:      trea,
	})

	m := BondMetrics{
		CurrentPrice:      price,
		Profit:            profit,
		Duration:          duration,
		Convexity:         convexity,
		DurationConvexity: duration + convexity,
		ModifiedDuration:  modified,
		IssuerCostRate:    tcea,
		HolderReturnRate:  trea,
	}
	t.Record(Step{
		Name:         StepMetrics,
		Description:  "summary of the derived metrics",
		Formula:      "compilation",
		Inputs:       map[string]any{},
		Calculation:  "all metrics derived",
		Result:       m,
		Dependencies: []string{StepPrice, StepProfit, StepDuration, StepConvexity, StepModified},
	})

	return m
}
