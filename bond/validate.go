package bond

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrInvalidNominal        = errors.New("nominal must be positive")
	ErrInvalidYears          = errors.New("years must be a positive integer")
	ErrInvalidFrequency      = errors.New("invalid coupon frequency")
	ErrInvalidDaysPerYear    = errors.New("days per year must be 360 or 365")
	ErrInvalidRateType       = errors.New("invalid rate type")
	ErrInvalidCapitalization = errors.New("invalid capitalization")
	ErrMissingCapitalization = errors.New("capitalization is required for nominal rates")
	ErrUnexpectedCap         = errors.New("capitalization only applies to nominal rates")
	ErrInvalidGraceType      = errors.New("invalid grace type")
	ErrInvalidGracePeriods   = errors.New("grace periods must be between 1 and 3")
	ErrGraceExceedsTerm      = errors.New("grace periods exceed total periods")
	ErrGraceYearsMismatch    = errors.New("grace years disagree with grace periods")
	ErrNegativeRate          = errors.New("rate must not be negative")
	ErrNegativeCost          = errors.New("cost percentage must not be negative")
)

// Validate checks the structural preconditions Calculate relies on. Every
// violation is reported; the returned error matches each sentinel through
// errors.Is.
func (in BondInput) Validate() error {
	var errs []error

	if in.Nominal <= 0 {
		errs = append(errs, fmt.Errorf("%w, got %g", ErrInvalidNominal, in.Nominal))
	}
	if in.Years < 1 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidYears, in.Years))
	}
	if !slices.Contains(Frequencies, in.Frequency) {
		errs = append(errs, fmt.Errorf("%w: %d (expected one of %v)", ErrInvalidFrequency, in.Frequency, Frequencies))
	}
	if in.DaysPerYear != 360 && in.DaysPerYear != 365 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidDaysPerYear, in.DaysPerYear))
	}

	switch in.RateType {
	case RateNominal:
		if in.Capitalization == "" {
			errs = append(errs, ErrMissingCapitalization)
		} else if _, ok := CompoundingCount(in.Capitalization); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidCapitalization, in.Capitalization))
		}
	case RateEffective:
		if in.Capitalization != "" {
			errs = append(errs, fmt.Errorf("%w, got %q", ErrUnexpectedCap, in.Capitalization))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidRateType, in.RateType))
	}
	if in.CouponRate < 0 {
		errs = append(errs, fmt.Errorf("coupon %w, got %g", ErrNegativeRate, in.CouponRate))
	}

	switch in.GraceType {
	case GraceNone:
	case GracePartial, GraceTotal:
		if in.GracePeriods < 1 || in.GracePeriods > 3 {
			errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidGracePeriods, in.GracePeriods))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidGraceType, in.GraceType))
	}
	if in.Frequency > 0 && in.GracePeriodCount() > in.TotalPeriods() {
		errs = append(errs, fmt.Errorf("%w: %d > %d", ErrGraceExceedsTerm, in.GracePeriodCount(), in.TotalPeriods()))
	}
	if in.GraceYears != 0 && in.Frequency > 0 {
		if math.Abs(in.GraceYears*float64(in.Frequency)-float64(in.GracePeriodCount())) > 1e-9 {
			errs = append(errs, fmt.Errorf("%w: %g years × %d ≠ %d periods",
				ErrGraceYearsMismatch, in.GraceYears, in.Frequency, in.GracePeriodCount()))
		}
	}

	costs := []struct {
		name string
		v    float64
	}{
		{"structuring", in.StructuringPct},
		{"placement", in.PlacementPct},
		{"depository", in.DepositoryPct},
	}
	for _, c := range costs {
		if c.v < 0 {
			errs = append(errs, fmt.Errorf("%s %w, got %g", c.name, ErrNegativeCost, c.v))
		}
	}
	if in.DiscountRate != nil && *in.DiscountRate < 0 {
		errs = append(errs, fmt.Errorf("discount %w, got %g", ErrNegativeRate, *in.DiscountRate))
	}
	if in.OpportunityRate != nil && *in.OpportunityRate < 0 {
		errs = append(errs, fmt.Errorf("opportunity %w, got %g", ErrNegativeRate, *in.OpportunityRate))
	}

	return errors.Join(errs...)
}
