package bond

// Option configures a Calculate call.
type Option func(*calcOptions)

type calcOptions struct {
	tracer Tracer
	name   string
}

// WithTracer attaches an observer that receives every derivation step.
func WithTracer(t Tracer) Option {
	return func(o *calcOptions) { o.tracer = t }
}

// WithName labels the calculation in the trace.
func WithName(name string) Option {
	return func(o *calcOptions) { o.name = name }
}

// Calculate values one bond: rate conversion, schedule, constants and
// metrics. It assumes in has passed Validate and always returns a result.
// Identical inputs produce identical results.
func Calculate(in BondInput, opts ...Option) BondCalculationResult {
	o := calcOptions{name: "bond"}
	for _, opt := range opts {
		opt(&o)
	}
	t := tracerOrNop(o.tracer)

	t.Record(Step{
		Name:        StepStart,
		Description: "calculation started",
		Inputs:      map[string]any{"name": o.name},
		Result:      in,
	})

	constants := CalculateConstants(in, t)
	schedule := BuildSchedule(in, t)
	metrics := CalculateMetrics(in, schedule, t)

	price, profit := metrics.CurrentPrice, metrics.Profit
	constants.CurrentPrice = &price
	constants.Profit = &profit

	res := BondCalculationResult{
		Input:     in,
		Constants: constants,
		Schedule:  schedule,
		Metrics:   metrics,
	}

	t.Record(Step{
		Name:         StepFinish,
		Description:  "calculation finished",
		Inputs:       map[string]any{"name": o.name, "rows": len(schedule)},
		Result:       metrics,
		Dependencies: []string{StepConstants, StepScheduleDone, StepMetrics},
	})
	return res
}

// IssuerFlows returns the issuer-side flow column, period 0 first.
func (r BondCalculationResult) IssuerFlows() []float64 {
	out := make([]float64, len(r.Schedule))
	for i, row := range r.Schedule {
		out[i] = row.IssuerFlow
	}
	return out
}

// HolderFlows returns the holder-side flow column, period 0 first.
func (r BondCalculationResult) HolderFlows() []float64 {
	out := make([]float64, len(r.Schedule))
	for i, row := range r.Schedule {
		out[i] = row.HolderFlow
	}
	return out
}
