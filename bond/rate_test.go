package bond_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/bondcalc/bond"
)

func TestConvertRate_Effective(t *testing.T) {
	t.Parallel()

	rc := bond.ConvertRate(annualTenPercent())
	assert.InDelta(t, 0.10, rc.EffectiveAnnual, 1e-15)
	assert.InDelta(t, 0.10, rc.Period, 1e-15)
	assert.Equal(t, "TEA", rc.Label)
	assert.Zero(t, rc.Compounding)
	assert.False(t, rc.Fallback)

	rc = bond.ConvertRate(semiannualFivePercent(1))
	assert.InDelta(t, 0.05, rc.Period, 1e-12)
	assert.Equal(t, "TES", rc.Label)
}

func TestConvertRate_NominalRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range bond.Capitalizations {
		for _, freq := range bond.Frequencies {
			in := bond.BondInput{
				Frequency:      freq,
				RateType:       bond.RateNominal,
				Capitalization: c,
				CouponRate:     7.5,
			}
			rc := bond.ConvertRate(in)

			mCap, ok := bond.CompoundingCount(c)
			assert.True(t, ok)
			want := math.Pow(1+0.075/float64(mCap), float64(mCap)) - 1
			assert.InDelta(t, want, rc.EffectiveAnnual, 1e-14, "%s/%d", c, freq)

			back := math.Pow(1+rc.Period, float64(freq)) - 1
			assert.InDelta(t, rc.EffectiveAnnual, back, 1e-12, "%s/%d", c, freq)
		}
	}
}

func TestConvertRate_MonthlyCompounding(t *testing.T) {
	t.Parallel()

	in := bond.BondInput{
		Frequency:      2,
		RateType:       bond.RateNominal,
		Capitalization: bond.CapMonthly,
		CouponRate:     12,
	}
	rc := bond.ConvertRate(in)
	assert.Equal(t, 12, rc.Compounding)
	assert.InDelta(t, math.Pow(1.01, 12)-1, rc.EffectiveAnnual, 1e-14)
	assert.InDelta(t, math.Pow(1.01, 6)-1, rc.Period, 1e-14)
}

func TestConvertRate_UnmappedCapitalizationFallsBack(t *testing.T) {
	t.Parallel()

	in := bond.BondInput{
		Frequency:      4,
		RateType:       bond.RateNominal,
		Capitalization: bond.Capitalization("Weekly"),
		CouponRate:     8,
	}
	rc := bond.ConvertRate(in)
	assert.True(t, rc.Fallback)
	assert.Equal(t, 4, rc.Compounding)
	assert.InDelta(t, math.Pow(1.02, 4)-1, rc.EffectiveAnnual, 1e-14)
	assert.InDelta(t, 0.02, rc.Period, 1e-14)
}

func TestPeriodRateLabel(t *testing.T) {
	t.Parallel()

	want := map[int]string{12: "TEM", 6: "TEB", 4: "TET", 3: "TEC", 2: "TES", 1: "TEA", 5: "TEP"}
	for freq, label := range want {
		assert.Equal(t, label, bond.PeriodRateLabel(freq))
	}
}

func TestCompoundingAndCapitalizationDays(t *testing.T) {
	t.Parallel()

	counts := map[bond.Capitalization][2]int{
		bond.CapDaily:      {360, 1},
		bond.CapBiweekly:   {24, 15},
		bond.CapMonthly:    {12, 30},
		bond.CapBimonthly:  {6, 60},
		bond.CapQuarterly:  {4, 90},
		bond.CapFourMonth:  {3, 120},
		bond.CapSemiannual: {2, 180},
		bond.CapAnnual:     {1, 360},
	}
	for c, want := range counts {
		n, ok := bond.CompoundingCount(c)
		assert.True(t, ok)
		assert.Equal(t, want[0], n, c)

		d, ok := bond.CapitalizationDays(c)
		assert.True(t, ok)
		assert.Equal(t, want[1], d, c)
	}

	_, ok := bond.CompoundingCount("")
	assert.False(t, ok)
}

func TestOpportunityPeriodRate(t *testing.T) {
	t.Parallel()

	assert.Zero(t, bond.OpportunityPeriodRate(nil, 360, 2))
	assert.InDelta(t, 0.05, bond.OpportunityPeriodRate(ptr(10.25), 360, 2), 1e-12)
	assert.InDelta(t, math.Pow(1.1, 365.0/360)-1, bond.OpportunityPeriodRate(ptr(10), 365, 1), 1e-14)

	assert.Zero(t, bond.SemiannualRate(nil))
	assert.InDelta(t, 0.05, bond.SemiannualRate(ptr(10.25)), 1e-12)
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	rt, err := bond.ParseRateType(" nominal ")
	assert.NoError(t, err)
	assert.Equal(t, bond.RateNominal, rt)

	_, err = bond.ParseRateType("floating")
	assert.ErrorIs(t, err, bond.ErrInvalidRateType)

	c, err := bond.ParseCapitalization("fourmonth")
	assert.NoError(t, err)
	assert.Equal(t, bond.CapFourMonth, c)

	c, err = bond.ParseCapitalization("")
	assert.NoError(t, err)
	assert.Empty(t, c)

	_, err = bond.ParseCapitalization("weekly")
	assert.ErrorIs(t, err, bond.ErrInvalidCapitalization)

	g, err := bond.ParseGraceType("")
	assert.NoError(t, err)
	assert.Equal(t, bond.GraceNone, g)

	g, err = bond.ParseGraceType("TOTAL")
	assert.NoError(t, err)
	assert.Equal(t, bond.GraceTotal, g)

	_, err = bond.ParseGraceType("deferred")
	assert.ErrorIs(t, err, bond.ErrInvalidGraceType)
}
