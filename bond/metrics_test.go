package bond_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/bondcalc/bond"
)

func TestCalculateMetrics_AnnualScenario(t *testing.T) {
	t.Parallel()

	in := annualTenPercent()
	m := bond.CalculateMetrics(in, bond.BuildSchedule(in, nil), nil)

	assert.InDelta(t, 1000, m.CurrentPrice, 1e-9)
	assert.InDelta(t, 0, m.Profit, 1e-9)
	assert.InDelta(t, 1.0, m.Duration, 1e-12)
	assert.InDelta(t, 3.6364, m.Convexity, 1e-4)
	assert.InDelta(t, 4000.0/1100.0, m.Convexity, 1e-12)
	assert.InDelta(t, m.Duration+m.Convexity, m.DurationConvexity, 1e-15)
	assert.InDelta(t, 0.9091, m.ModifiedDuration, 1e-4)
	assert.InDelta(t, 0.10, m.IssuerCostRate, 1e-15)
	assert.InDelta(t, 0.10, m.HolderReturnRate, 1e-15)
}

func TestCalculateMetrics_Semiannual(t *testing.T) {
	t.Parallel()

	in := semiannualFivePercent(1)
	rows := bond.BuildSchedule(in, nil)
	m := bond.CalculateMetrics(in, rows, nil)

	pmt := bond.AnnuityPayment(1000, 0.05, 2)
	pv1 := pmt / 1.05
	pv2 := pmt / 1.1025

	assert.InDelta(t, 1000, m.CurrentPrice, 1e-9)
	assert.InDelta(t, 0, m.Profit, 1e-9)

	wantDur := (pv1*1*0.5 + pv2*2*0.5) / 1000
	assert.InDelta(t, wantDur, m.Duration, 1e-9)

	// factors: PV × n × (n+1) × 0.5 × 2; scale (360/180)² = 4; (1+cok_sem)² = 1.1025
	wantConv := (pv1*2 + pv2*6) / (1.1025 * 1000 * 4)
	assert.InDelta(t, wantConv, m.Convexity, 1e-9)
	assert.InDelta(t, wantDur/1.05, m.ModifiedDuration, 1e-9)
}

func TestCalculateMetrics_CostRates(t *testing.T) {
	t.Parallel()

	in := annualTenPercent()
	in.CouponRate = 8
	in.StructuringPct = 1
	in.PlacementPct = 0.5
	in.DepositoryPct = 0.25

	m := bond.CalculateMetrics(in, bond.BuildSchedule(in, nil), nil)
	assert.InDelta(t, 0.0975, m.IssuerCostRate, 1e-15)
	assert.InDelta(t, 0.0775, m.HolderReturnRate, 1e-15)
	assert.Less(t, m.Profit, 0.0)
}

func TestCalculateMetrics_WithoutOpportunityRate(t *testing.T) {
	t.Parallel()

	in := annualTenPercent()
	in.OpportunityRate = nil

	m := bond.CalculateMetrics(in, bond.BuildSchedule(in, nil), nil)
	// Undiscounted: price is the nominal plus the coupon.
	assert.InDelta(t, 1100, m.CurrentPrice, 1e-9)
	assert.InDelta(t, 100, m.Profit, 1e-9)
	assert.Equal(t, m.Duration, m.ModifiedDuration)
	assert.InDelta(t, 4400.0/1100.0, m.Convexity, 1e-12)
}

func TestCalculateMetrics_NonPositivePrice(t *testing.T) {
	t.Parallel()

	in := annualTenPercent()
	rows := []bond.FlowRow{
		{Period: 0, PresentValue: -1000},
		{Period: 1, PresentValue: 0, WeightedTime: 5, ConvexityFactor: 7},
	}
	m := bond.CalculateMetrics(in, rows, nil)
	assert.Zero(t, m.CurrentPrice)
	assert.Zero(t, m.Duration)
	assert.Zero(t, m.Convexity)
	assert.Zero(t, m.ModifiedDuration)
	assert.False(t, math.IsNaN(m.Convexity))
	assert.InDelta(t, -1000, m.Profit, 1e-12)

	assert.Equal(t, bond.BondMetrics{}, bond.CalculateMetrics(in, nil, nil))
}

func TestCalculateMetrics_UnmappedFrequencyConvexityBase(t *testing.T) {
	t.Parallel()

	in := annualTenPercent()
	in.Frequency = 5
	rows := []bond.FlowRow{
		{Period: 0, PresentValue: -100},
		{Period: 1, PresentValue: 100, ConvexityFactor: 400},
	}
	m := bond.CalculateMetrics(in, rows, nil)
	// 180-day period base: scale = (360/180)² = 4.
	assert.InDelta(t, 400/(1.1*100*4), m.Convexity, 1e-12)
}

func TestCalculateMetrics_SharedHolderDiscountRate(t *testing.T) {
	t.Parallel()

	in := annualTenPercent()
	in.Years = 3
	in.Frequency = 4
	in.DaysPerYear = 365
	in.OpportunityRate = ptr(9)

	cok := in.HolderDiscountRate()
	assert.InDelta(t, math.Pow(1.09, 365.0/4/360)-1, cok, 1e-15)

	rows := bond.BuildSchedule(in, nil)
	for _, r := range rows[1:] {
		assert.InDelta(t, r.Payment/math.Pow(1+cok, float64(r.Period)), r.PresentValue, 1e-9, "period %d", r.Period)
	}

	m := bond.CalculateMetrics(in, rows, nil)
	assert.InDelta(t, m.Duration/(1+cok), m.ModifiedDuration, 1e-15)

	c := bond.CalculateConstants(in, nil)
	require.NotNil(t, c.OpportunityRatePerPeriod)
	assert.InDelta(t, cok*100, *c.OpportunityRatePerPeriod, 1e-12)

	in.OpportunityRate = nil
	assert.Zero(t, in.HolderDiscountRate())
}
