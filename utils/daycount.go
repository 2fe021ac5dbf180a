package utils

// CommercialYearDays is the day count of the 30/360 year used to express
// coupon periods in years.
const CommercialYearDays = 360

// PeriodDays returns the 30/360 length in days of one coupon period for the
// given number of coupons per year.
// Supported frequencies: 12, 6, 4, 3, 2, 1
func PeriodDays(frequency int) (int, bool) {
	switch frequency {
	case 12:
		return 30, true
	case 6:
		return 60, true
	case 4:
		return 90, true
	case 3:
		return 120, true
	case 2:
		return 180, true
	case 1:
		return 360, true
	default:
		return 0, false
	}
}

// PeriodDaysOr is PeriodDays with an explicit value for unsupported frequencies.
func PeriodDaysOr(frequency, fallback int) int {
	if d, ok := PeriodDays(frequency); ok {
		return d
	}
	return fallback
}

// YearFraction expresses a number of days as a fraction of the 30/360 year.
func YearFraction(days int) float64 {
	return float64(days) / CommercialYearDays
}
