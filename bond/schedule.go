package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/bondcalc/utils"
)

// scheduleParams are the per-bond values every row depends on.
type scheduleParams struct {
	nominal      float64
	periods      int
	gracePeriods int
	grace        GraceType
	rate         float64 // effective rate per coupon period
	cok          float64 // holder discount rate per coupon period
	periodDays   int
	issuerCosts  float64
	holderCosts  float64
}

// InitialCosts returns the issuer-side and holder-side costs paid at issue.
//
//	issuer = nominal × (structuring + placement + depository)
//	holder = nominal × depository
func InitialCosts(in BondInput) (issuer, holder float64) {
	issuer = in.Nominal * (pct(in.StructuringPct) + pct(in.PlacementPct) + pct(in.DepositoryPct))
	holder = in.Nominal * pct(in.DepositoryPct)
	return issuer, holder
}

// AnnuityPayment is the level payment that amortizes balance over the
// remaining periods at rate:
//
//	PMT = balance × i(1+i)^R / ((1+i)^R − 1)
//
// A zero rate amortizes straight-line; no remaining periods yields 0.
func AnnuityPayment(balance, rate float64, remaining int) float64 {
	if remaining <= 0 {
		return 0
	}
	if rate == 0 {
		return balance / float64(remaining)
	}
	f := math.Pow(1+rate, float64(remaining))
	return balance * rate * f / (f - 1)
}

// GraceMarkerFor returns the regime of period n (n ≥ 1).
func GraceMarkerFor(n, gracePeriods int, grace GraceType) GraceMarker {
	if n > gracePeriods {
		return MarkerStandard
	}
	switch grace {
	case GracePartial:
		return MarkerPartial
	case GraceTotal:
		return MarkerTotal
	default:
		return MarkerStandard
	}
}

// BuildSchedule produces the N+1 rows of the cash-flow schedule, period 0
// (issue) through N (maturity). The tracer may be nil.
func BuildSchedule(in BondInput, t Tracer) []FlowRow {
	t = tracerOrNop(t)

	rc := ConvertRate(in)
	traceRateConversion(t, in, rc)

	p := newScheduleParams(in, rc.Period, t)

	rows := make([]FlowRow, 0, p.periods+1)
	row := initialRow(p)
	rows = append(rows, row)
	traceRow(t, p, row)

	for n := 1; n <= p.periods; n++ {
		row = nextRow(p, n, row)
		rows = append(rows, row)
		traceRow(t, p, row)
	}

	var sumHolder, sumPV float64
	for _, r := range rows {
		sumHolder += r.HolderFlow
		sumPV += r.PresentValue
	}
	t.Record(Step{
		Name:        StepScheduleDone,
		Description: "schedule generated with the payment re-derived on the remaining periods",
		Formula:     "payment = T ? 0 : P ? |interest| : PMT(i, N-n+1, opening)",
		Inputs: map[string]any{
			"rows":               len(rows),
			"sumHolderFlows":     sumHolder,
			"sumDiscountedFlows": sumPV,
		},
		Calculation:  fmt.Sprintf("%d rows generated (0 to %d)", len(rows), p.periods),
		Result:       rows[len(rows)-1].ClosingBalance,
		Dependencies: []string{StepRateConversion, StepPeriodDays},
	})

	return rows
}

func newScheduleParams(in BondInput, rate float64, t Tracer) scheduleParams {
	periodDays := utils.PeriodDaysOr(in.Frequency, utils.CommercialYearDays)
	t.Record(Step{
		Name:        StepPeriodDays,
		Description: "days per coupon period on a 30/360 basis",
		Formula:     "12→30, 6→60, 4→90, 3→120, 2→180, otherwise 360",
		Inputs:      map[string]any{"frequency": in.Frequency},
		Calculation: fmt.Sprintf("frequency %d → %d days", in.Frequency, periodDays),
		Result:      periodDays,
	})

	issuer, holder := InitialCosts(in)
	p := scheduleParams{
		nominal:      in.Nominal,
		periods:      in.TotalPeriods(),
		gracePeriods: in.GracePeriodCount(),
		grace:        in.GraceType,
		rate:         rate,
		cok:          in.HolderDiscountRate(),
		periodDays:   periodDays,
		issuerCosts:  issuer,
		holderCosts:  holder,
	}

	t.Record(Step{
		Name:        StepScheduleSetup,
		Description: "fundamental schedule parameters",
		Formula:     "N = years × m, Ng = graceYears × m",
		Inputs: map[string]any{
			"years":       in.Years,
			"frequency":   in.Frequency,
			"graceYears":  in.GraceWindow(),
			"nominal":     in.Nominal,
			"periodRate":  rate,
			"periodDays":  periodDays,
			"daysPerYear": in.DaysPerYear,
			"cok":         p.cok,
		},
		Calculation: fmt.Sprintf("N = %d × %d = %d, Ng = %g × %d = %d",
			in.Years, in.Frequency, p.periods, in.GraceWindow(), in.Frequency, p.gracePeriods),
		Result:       map[string]any{"totalPeriods": p.periods, "gracePeriods": p.gracePeriods},
		Dependencies: []string{StepRateConversion, StepPeriodDays},
	})
	t.Record(Step{
		Name:        StepInitialCosts,
		Description: "structuring, placement and depository costs at issue",
		Formula:     "cost = nominal × pct / 100",
		Inputs: map[string]any{
			"nominal":        in.Nominal,
			"structuringPct": in.StructuringPct,
			"placementPct":   in.PlacementPct,
			"depositoryPct":  in.DepositoryPct,
		},
		Calculation: fmt.Sprintf("issuer = %g, holder = %g", issuer, holder),
		Result:      map[string]any{"issuer": issuer, "holder": holder},
	})

	ref := AnnuityPayment(in.Nominal, rate, p.periods)
	t.Record(Step{
		Name:        StepReferenceAnnuity,
		Description: "level payment over the full term, for reference",
		Formula:     "PMT = nominal × i(1+i)^N / ((1+i)^N - 1)",
		Inputs:      map[string]any{"nominal": in.Nominal, "periodRate": rate, "totalPeriods": p.periods},
		Calculation: fmt.Sprintf("PMT(%g, %d, %g) = %g", rate, p.periods, in.Nominal, ref),
		Result:      ref,
	})

	return p
}

func initialRow(p scheduleParams) FlowRow {
	holder := -(p.nominal + p.holderCosts)
	return FlowRow{
		Period:         0,
		Marker:         MarkerInitial,
		OpeningBalance: p.nominal,
		IssuerFlow:     p.nominal - p.issuerCosts,
		HolderFlow:     holder,
		ClosingBalance: p.nominal,
		PresentValue:   holder,
	}
}

// nextRow builds period n from the row of period n-1.
func nextRow(p scheduleParams, n int, prev FlowRow) FlowRow {
	marker := GraceMarkerFor(n, p.gracePeriods, p.grace)

	opening := prev.ClosingBalance
	if n > 1 && prev.Marker == MarkerTotal {
		opening += math.Abs(prev.Interest)
	}

	interest := -opening * p.rate
	owed := math.Abs(interest)

	var payment, amortization, closing float64
	switch marker {
	case MarkerTotal:
		closing = opening + owed
	case MarkerPartial:
		payment = owed
		closing = opening
	default:
		payment = AnnuityPayment(opening, p.rate, p.periods-n+1)
		amortization = payment - owed
		closing = opening - amortization
	}

	pv := payment / math.Pow(1+p.cok, float64(n))
	years := utils.YearFraction(p.periodDays)
	fn := float64(n)

	return FlowRow{
		Period:          n,
		Marker:          marker,
		OpeningBalance:  opening,
		Interest:        interest,
		Payment:         payment,
		Amortization:    amortization,
		IssuerFlow:      -payment,
		HolderFlow:      payment,
		ClosingBalance:  closing,
		PresentValue:    pv,
		WeightedTime:    pv * fn * years,
		ConvexityFactor: pv * fn * (fn + 1) * years * 2,
	}
}

func traceRow(t Tracer, p scheduleParams, r FlowRow) {
	if r.Period == 0 {
		t.Record(Step{
			Name:        fmt.Sprintf("%s 0", StepRow),
			Description: "issue date flows",
			Formula:     "issuer = nominal - issuerCosts, holder = -(nominal + holderCosts)",
			Inputs: map[string]any{
				"nominal":     p.nominal,
				"issuerCosts": p.issuerCosts,
				"holderCosts": p.holderCosts,
			},
			Calculation: fmt.Sprintf("issuer = %g, holder = %g", r.IssuerFlow, r.HolderFlow),
			Result:      r,
		})
		return
	}
	remaining := p.periods - r.Period + 1
	t.Record(Step{
		Name:        fmt.Sprintf("%s %d", StepRow, r.Period),
		Description: fmt.Sprintf("period %d under regime %q", r.Period, string(r.Marker)),
		Formula:     "payment = T ? 0 : P ? |interest| : PMT(i, N-n+1, opening)",
		Inputs: map[string]any{
			"period":     r.Period,
			"marker":     string(r.Marker),
			"opening":    r.OpeningBalance,
			"periodRate": p.rate,
			"remaining":  remaining,
			"cok":        p.cok,
		},
		Calculation: fmt.Sprintf("interest=%g payment=%g amortization=%g closing=%g pv=%g",
			r.Interest, r.Payment, r.Amortization, r.ClosingBalance, r.PresentValue),
		Result:       r,
		Dependencies: []string{StepScheduleSetup},
	})
}
