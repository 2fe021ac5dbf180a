package bond_test

import "github.com/meenmo/bondcalc/bond"

func ptr(v float64) *float64 { return &v }

// annualTenPercent is a one-year annual bond at an effective 10% with no
// costs, discounted at 10%.
func annualTenPercent() bond.BondInput {
	return bond.BondInput{
		Nominal:         1000,
		Years:           1,
		Frequency:       1,
		DaysPerYear:     360,
		RateType:        bond.RateEffective,
		CouponRate:      10,
		GraceType:       bond.GraceNone,
		OpportunityRate: ptr(10),
	}
}

// semiannualFivePercent pays semiannually at an effective 10.25% a year,
// i.e. exactly 5% per period.
func semiannualFivePercent(years int) bond.BondInput {
	return bond.BondInput{
		Nominal:         1000,
		Years:           years,
		Frequency:       2,
		DaysPerYear:     360,
		RateType:        bond.RateEffective,
		CouponRate:      10.25,
		GraceType:       bond.GraceNone,
		OpportunityRate: ptr(10.25),
	}
}
