package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/bondcalc/bond"
	"github.com/meenmo/bondcalc/trace"
	"github.com/meenmo/bondcalc/utils"
)

type bondInputJSON struct {
	TaskID          string   `json:"task_id,omitempty" yaml:"task_id"`
	Name            string   `json:"name,omitempty" yaml:"name"`
	Nominal         float64  `json:"nominal" yaml:"nominal"`
	Years           int      `json:"years" yaml:"years"`
	Frequency       int      `json:"frequency" yaml:"frequency"`
	DaysPerYear     int      `json:"days_per_year" yaml:"days_per_year"`
	RateType        string   `json:"rate_type" yaml:"rate_type"`
	Capitalization  string   `json:"capitalization,omitempty" yaml:"capitalization"`
	CouponRate      float64  `json:"coupon_rate" yaml:"coupon_rate"`
	GraceType       string   `json:"grace_type,omitempty" yaml:"grace_type"`
	GracePeriods    int      `json:"grace_periods,omitempty" yaml:"grace_periods"`
	GraceYears      float64  `json:"grace_years,omitempty" yaml:"grace_years"`
	StructuringPct  float64  `json:"structuring_pct" yaml:"structuring_pct"`
	PlacementPct    float64  `json:"placement_pct" yaml:"placement_pct"`
	DepositoryPct   float64  `json:"depository_pct" yaml:"depository_pct"`
	DiscountRate    *float64 `json:"discount_rate,omitempty" yaml:"discount_rate"`
	OpportunityRate *float64 `json:"opportunity_rate,omitempty" yaml:"opportunity_rate"`
}

var errMissingField = errors.New("missing required field")

func (in bondInputJSON) toBondInput() (bond.BondInput, error) {
	if strings.TrimSpace(in.RateType) == "" {
		return bond.BondInput{}, fmt.Errorf("%w: rate_type", errMissingField)
	}
	rt, err := bond.ParseRateType(in.RateType)
	if err != nil {
		return bond.BondInput{}, err
	}
	capitalization, err := bond.ParseCapitalization(in.Capitalization)
	if err != nil {
		return bond.BondInput{}, err
	}
	grace, err := bond.ParseGraceType(in.GraceType)
	if err != nil {
		return bond.BondInput{}, err
	}

	return bond.BondInput{
		Nominal:         in.Nominal,
		Years:           in.Years,
		Frequency:       in.Frequency,
		DaysPerYear:     in.DaysPerYear,
		RateType:        rt,
		Capitalization:  capitalization,
		CouponRate:      in.CouponRate,
		GraceType:       grace,
		GracePeriods:    in.GracePeriods,
		GraceYears:      in.GraceYears,
		StructuringPct:  in.StructuringPct,
		PlacementPct:    in.PlacementPct,
		DepositoryPct:   in.DepositoryPct,
		DiscountRate:    in.DiscountRate,
		OpportunityRate: in.OpportunityRate,
	}, nil
}

type bondOutput struct {
	TaskID    string           `json:"task_id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Constants *constantsOutput `json:"constants,omitempty"`
	Schedule  []rowOutput      `json:"schedule,omitempty"`
	Metrics   *metricsOutput   `json:"metrics,omitempty"`
	IRR       *irrOutput       `json:"irr,omitempty"`
	Trace     *traceOutput     `json:"trace,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type constantsOutput struct {
	Frequency                int      `json:"frequency"`
	PeriodsPerYear           int      `json:"periods_per_year"`
	TotalPeriods             int      `json:"total_periods"`
	GracePeriods             int      `json:"grace_periods"`
	EffectiveAnnualRate      float64  `json:"effective_annual_rate"`
	MonthlyEffectiveRate     float64  `json:"monthly_effective_rate"`
	PeriodEffectiveRate      float64  `json:"period_effective_rate"`
	PeriodRateLabel          string   `json:"period_rate_label"`
	IssuerInitialCosts       float64  `json:"issuer_initial_costs"`
	HolderInitialCosts       float64  `json:"holder_initial_costs"`
	OpportunityRatePerPeriod *float64 `json:"opportunity_rate_per_period,omitempty"`
	DiscountRatePerPeriod    *float64 `json:"discount_rate_per_period,omitempty"`
	CapitalizationDays       *int     `json:"capitalization_days,omitempty"`
	CurrentPrice             *float64 `json:"current_price,omitempty"`
	Profit                   *float64 `json:"profit,omitempty"`
}

type rowOutput struct {
	Period          int     `json:"n"`
	Grace           string  `json:"grace"`
	OpeningBalance  float64 `json:"opening_balance"`
	Interest        float64 `json:"interest"`
	Payment         float64 `json:"payment"`
	Amortization    float64 `json:"amortization"`
	IssuerFlow      float64 `json:"issuer_flow"`
	HolderFlow      float64 `json:"holder_flow"`
	ClosingBalance  float64 `json:"closing_balance"`
	PresentValue    float64 `json:"present_value"`
	WeightedTime    float64 `json:"weighted_time"`
	ConvexityFactor float64 `json:"convexity_factor"`
}

type metricsOutput struct {
	CurrentPrice      float64 `json:"current_price"`
	Profit            float64 `json:"profit"`
	Duration          float64 `json:"duration"`
	Convexity         float64 `json:"convexity"`
	DurationConvexity float64 `json:"duration_plus_convexity"`
	ModifiedDuration  float64 `json:"modified_duration"`
	TCEA              float64 `json:"tcea"`
	TREA              float64 `json:"trea"`
}

type irrOutput struct {
	IssuerPeriodRate float64 `json:"issuer_period_rate"`
	IssuerAnnualRate float64 `json:"issuer_annual_rate"`
	IssuerConverged  bool    `json:"issuer_converged"`
	HolderPeriodRate float64 `json:"holder_period_rate"`
	HolderAnnualRate float64 `json:"holder_annual_rate"`
	HolderConverged  bool    `json:"holder_converged"`
}

type traceOutput struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	StartedAt string       `json:"started_at"`
	Steps     []stepOutput `json:"steps"`
}

type stepOutput struct {
	Seq          int            `json:"seq"`
	At           string         `json:"at"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Formula      string         `json:"formula,omitempty"`
	Inputs       map[string]any `json:"inputs,omitempty"`
	Calculation  string         `json:"calculation,omitempty"`
	Result       any            `json:"result,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
}

func newBondOutput(taskID, name string, res bond.BondCalculationResult) bondOutput {
	c := res.Constants
	rows := make([]rowOutput, 0, len(res.Schedule))
	for _, r := range res.Schedule {
		rows = append(rows, rowOutput{
			Period:          r.Period,
			Grace:           string(r.Marker),
			OpeningBalance:  r.OpeningBalance,
			Interest:        r.Interest,
			Payment:         r.Payment,
			Amortization:    r.Amortization,
			IssuerFlow:      r.IssuerFlow,
			HolderFlow:      r.HolderFlow,
			ClosingBalance:  r.ClosingBalance,
			PresentValue:    r.PresentValue,
			WeightedTime:    r.WeightedTime,
			ConvexityFactor: r.ConvexityFactor,
		})
	}
	m := res.Metrics
	return bondOutput{
		TaskID: taskID,
		Name:   name,
		Constants: &constantsOutput{
			Frequency:                c.Frequency,
			PeriodsPerYear:           c.PeriodsPerYear,
			TotalPeriods:             c.TotalPeriods,
			GracePeriods:             c.GracePeriods,
			EffectiveAnnualRate:      c.EffectiveAnnualRate,
			MonthlyEffectiveRate:     c.MonthlyEffectiveRate,
			PeriodEffectiveRate:      c.PeriodEffectiveRate,
			PeriodRateLabel:          c.PeriodRateLabel,
			IssuerInitialCosts:       c.IssuerInitialCosts,
			HolderInitialCosts:       c.HolderInitialCosts,
			OpportunityRatePerPeriod: c.OpportunityRatePerPeriod,
			DiscountRatePerPeriod:    c.DiscountRatePerPeriod,
			CapitalizationDays:       c.CapitalizationDays,
			CurrentPrice:             c.CurrentPrice,
			Profit:                   c.Profit,
		},
		Schedule: rows,
		Metrics: &metricsOutput{
			CurrentPrice:      m.CurrentPrice,
			Profit:            m.Profit,
			Duration:          m.Duration,
			Convexity:         m.Convexity,
			DurationConvexity: m.DurationConvexity,
			ModifiedDuration:  m.ModifiedDuration,
			TCEA:              m.IssuerCostRate,
			TREA:              m.HolderReturnRate,
		},
	}
}

func newIRROutput(r bond.FlowRates) *irrOutput {
	return &irrOutput{
		IssuerPeriodRate: r.IssuerIRR.Rate,
		IssuerAnnualRate: r.IssuerCostRate,
		IssuerConverged:  r.IssuerIRR.Converged(),
		HolderPeriodRate: r.HolderIRR.Rate,
		HolderAnnualRate: r.HolderReturnRate,
		HolderConverged:  r.HolderIRR.Converged(),
	}
}

func newTraceOutput(s trace.Session) *traceOutput {
	steps := make([]stepOutput, 0, len(s.Entries))
	for _, e := range s.Entries {
		steps = append(steps, stepOutput{
			Seq:          e.Seq,
			At:           e.At.Format(time.RFC3339Nano),
			Name:         e.Step.Name,
			Description:  e.Step.Description,
			Formula:      e.Step.Formula,
			Inputs:       e.Step.Inputs,
			Calculation:  e.Step.Calculation,
			Result:       e.Step.Result,
			Dependencies: e.Step.Dependencies,
		})
	}
	return &traceOutput{
		ID:        s.ID.String(),
		Name:      s.Name,
		StartedAt: s.StartedAt.Format(time.RFC3339Nano),
		Steps:     steps,
	}
}

// round applies d decimals to currency amounts; rates and ratios keep four more.
func (o *bondOutput) round(d int32) {
	fine := d + 4
	if c := o.Constants; c != nil {
		c.EffectiveAnnualRate = utils.RoundTo(c.EffectiveAnnualRate, fine)
		c.MonthlyEffectiveRate = utils.RoundTo(c.MonthlyEffectiveRate, fine)
		c.PeriodEffectiveRate = utils.RoundTo(c.PeriodEffectiveRate, fine)
		c.IssuerInitialCosts = utils.RoundTo(c.IssuerInitialCosts, d)
		c.HolderInitialCosts = utils.RoundTo(c.HolderInitialCosts, d)
		c.OpportunityRatePerPeriod = utils.RoundPtr(c.OpportunityRatePerPeriod, fine)
		c.DiscountRatePerPeriod = utils.RoundPtr(c.DiscountRatePerPeriod, fine)
		c.CurrentPrice = utils.RoundPtr(c.CurrentPrice, d)
		c.Profit = utils.RoundPtr(c.Profit, d)
	}
	for i := range o.Schedule {
		r := &o.Schedule[i]
		r.OpeningBalance = utils.RoundTo(r.OpeningBalance, d)
		r.Interest = utils.RoundTo(r.Interest, d)
		r.Payment = utils.RoundTo(r.Payment, d)
		r.Amortization = utils.RoundTo(r.Amortization, d)
		r.IssuerFlow = utils.RoundTo(r.IssuerFlow, d)
		r.HolderFlow = utils.RoundTo(r.HolderFlow, d)
		r.ClosingBalance = utils.RoundTo(r.ClosingBalance, d)
		r.PresentValue = utils.RoundTo(r.PresentValue, d)
		r.WeightedTime = utils.RoundTo(r.WeightedTime, d)
		r.ConvexityFactor = utils.RoundTo(r.ConvexityFactor, d)
	}
	if m := o.Metrics; m != nil {
		m.CurrentPrice = utils.RoundTo(m.CurrentPrice, d)
		m.Profit = utils.RoundTo(m.Profit, d)
		m.Duration = utils.RoundTo(m.Duration, fine)
		m.Convexity = utils.RoundTo(m.Convexity, fine)
		m.DurationConvexity = utils.RoundTo(m.DurationConvexity, fine)
		m.ModifiedDuration = utils.RoundTo(m.ModifiedDuration, fine)
		m.TCEA = utils.RoundTo(m.TCEA, fine)
		m.TREA = utils.RoundTo(m.TREA, fine)
	}
	if r := o.IRR; r != nil {
		r.IssuerPeriodRate = utils.RoundTo(r.IssuerPeriodRate, fine)
		r.IssuerAnnualRate = utils.RoundTo(r.IssuerAnnualRate, fine)
		r.HolderPeriodRate = utils.RoundTo(r.HolderPeriodRate, fine)
		r.HolderAnnualRate = utils.RoundTo(r.HolderAnnualRate, fine)
	}
}
