package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/bondcalc/config"
)

// IRROptions controls the Newton-Raphson solve.
type IRROptions struct {
	// Guess is the initial per-period rate (decimal).
	Guess         float64
	MaxIterations int
	// Tolerance stops iteration when |NPV| or |step| falls below it.
	Tolerance float64
	// DerivativeThreshold stops iteration when |NPV'| falls below it.
	DerivativeThreshold float64
}

// DefaultIRROptions mirrors config.DefaultConfig.
func DefaultIRROptions() IRROptions {
	return IRROptionsFrom(config.DefaultConfig)
}

// IRROptionsFrom extracts the solver settings of a Config.
func IRROptionsFrom(c config.Config) IRROptions {
	return IRROptions{
		Guess:               c.IRRGuess,
		MaxIterations:       c.IRRMaxIterations,
		Tolerance:           c.IRRTolerance,
		DerivativeThreshold: c.DerivativeThreshold,
	}
}

// IRRStop says why the solver returned.
type IRRStop string

const (
	IRRStopNPV        IRRStop = "npv within tolerance"
	IRRStopStep       IRRStop = "step within tolerance"
	IRRStopDerivative IRRStop = "derivative too small"
	IRRStopBudget     IRRStop = "iteration budget exhausted"
)

// IRRResult is the outcome of IRR.
type IRRResult struct {
	// Rate is the per-period rate (decimal) of the last iterate.
	Rate       float64
	NPV        float64
	Iterations int
	Stop       IRRStop
}

// Converged reports whether the solve stopped on a tolerance test.
func (r IRRResult) Converged() bool {
	return r.Stop == IRRStopNPV || r.Stop == IRRStopStep
}

// NPV discounts cashFlows[t] at (1+rate)^t, t = 0..len-1.
func NPV(rate float64, cashFlows []float64) float64 {
	npv, _ := npvAndDeriv(rate, cashFlows)
	return npv
}

// IRR solves NPV(rate) = 0 over equally spaced signed cash flows with
// Newton-Raphson:
//
//	rate ← rate − NPV(rate)/NPV'(rate)
//
// It never fails: when the derivative vanishes or the iteration budget runs
// out it returns the last estimate with Stop set accordingly. The tracer may
// be nil.
func IRR(cashFlows []float64, opts IRROptions, t Tracer) IRRResult {
	t = tracerOrNop(t)
	t.Record(Step{
		Name:        StepIRRStart,
		Description: "internal rate of return by Newton-Raphson",
		Formula:     "NPV = Σ CF_t / (1+r)^t = 0",
		Inputs: map[string]any{
			"flows":         len(cashFlows),
			"guess":         opts.Guess,
			"maxIterations": opts.MaxIterations,
			"tolerance":     opts.Tolerance,
		},
		Calculation: fmt.Sprintf("Newton-Raphson over %d flows", len(cashFlows)),
		Result:      "started",
	})

	res := solveIRR(cashFlows, opts)

	t.Record(Step{
		Name:        StepIRRDone,
		Description: "internal rate of return",
		Formula:     "rate such that NPV = 0",
		Inputs: map[string]any{
			"iterations": res.Iterations,
			"npv":        res.NPV,
			"stop":       string(res.Stop),
		},
		Calculation:  fmt.Sprintf("%s after %d iterations", res.Stop, res.Iterations),
		Result:       res.Rate,
		Dependencies: []string{StepIRRStart},
	})
	return res
}

// AnnualizeRate compounds a per-period rate to an annual rate.
func AnnualizeRate(periodRate float64, frequency int) float64 {
	return math.Pow(1+periodRate, float64(frequency)) - 1
}

// FlowRates are IRR-based annual rates of the issuer and holder flow columns.
// They complement the additive TCEA/TREA approximations in BondMetrics.
type FlowRates struct {
	IssuerIRR IRRResult
	HolderIRR IRRResult
	// IssuerCostRate is the annualized issuer IRR (decimal).
	IssuerCostRate float64
	// HolderReturnRate is the annualized holder IRR (decimal).
	HolderReturnRate float64
}

// CalculateFlowRates solves the IRR of both flow columns of a result and
// annualizes them at the coupon frequency.
func CalculateFlowRates(res BondCalculationResult, opts IRROptions, t Tracer) FlowRates {
	issuerIRR := IRR(res.IssuerFlows(), opts, t)
	holderIRR := IRR(res.HolderFlows(), opts, t)
	return FlowRates{
		IssuerIRR:        issuerIRR,
		HolderIRR:        holderIRR,
		IssuerCostRate:   AnnualizeRate(issuerIRR.Rate, res.Input.Frequency),
		HolderReturnRate: AnnualizeRate(holderIRR.Rate, res.Input.Frequency),
	}
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver (unexported)
// ---------------------------------------------------------------------------

func solveIRR(cfs []float64, opts IRROptions) IRRResult {
	rate := opts.Guess

	for iter := 0; iter < opts.MaxIterations; iter++ {
		npv, dnpv := npvAndDeriv(rate, cfs)

		if math.Abs(npv) < opts.Tolerance {
			return IRRResult{Rate: rate, NPV: npv, Iterations: iter + 1, Stop: IRRStopNPV}
		}
		if math.Abs(dnpv) < opts.DerivativeThreshold {
			return IRRResult{Rate: rate, NPV: npv, Iterations: iter + 1, Stop: IRRStopDerivative}
		}

		next := rate - npv/dnpv
		if math.Abs(next-rate) < opts.Tolerance {
			return IRRResult{Rate: rate, NPV: npv, Iterations: iter + 1, Stop: IRRStopStep}
		}
		rate = next
	}

	return IRRResult{Rate: rate, NPV: NPV(rate, cfs), Iterations: opts.MaxIterations, Stop: IRRStopBudget}
}

// npvAndDeriv returns (NPV, dNPV/dr).
//
//	NPV  = Σ CF_t / (1+r)^t
//	NPV' = Σ −t · CF_t / (1+r)^(t+1)
func npvAndDeriv(rate float64, cfs []float64) (float64, float64) {
	var npv, deriv float64
	for t, cf := range cfs {
		ft := float64(t)
		npv += cf / math.Pow(1+rate, ft)
		if t > 0 {
			deriv -= ft * cf / math.Pow(1+rate, ft+1)
		}
	}
	return npv, deriv
}
