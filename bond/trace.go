package bond

// Step is one audited derivation: what was computed, from which inputs, and
// with what result. Steps are observations only and never feed back into
// the numbers.
type Step struct {
	Name         string
	Description  string
	Formula      string
	Inputs       map[string]any
	Calculation  string
	Result       any
	Dependencies []string
}

// Tracer receives derivation steps in the order they are produced.
type Tracer interface {
	Record(Step)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(Step)

// Record calls f(s).
func (f TracerFunc) Record(s Step) { f(s) }

type nopTracer struct{}

func (nopTracer) Record(Step) {}

func tracerOrNop(t Tracer) Tracer {
	if t == nil {
		return nopTracer{}
	}
	return t
}

// Step names shared between the engine and its observers.
const (
	StepStart            = "calculation start"
	StepRateConversion   = "period rate"
	StepPeriodDays       = "days per period"
	StepScheduleSetup    = "schedule constants"
	StepInitialCosts     = "initial costs"
	StepReferenceAnnuity = "reference annuity"
	StepRow              = "schedule row"
	StepScheduleDone     = "schedule complete"
	StepConstants        = "derived constants"
	StepPrice            = "current price"
	StepProfit           = "profit"
	StepDuration         = "macaulay duration"
	StepConvexity        = "convexity"
	StepModified         = "modified duration"
	StepIssuerCost       = "issuer cost rate"
	StepHolderReturn     = "holder return rate"
	StepMetrics          = "final metrics"
	StepIRRStart         = "irr start"
	StepIRRDone          = "irr result"
	StepFinish           = "calculation finish"
)
