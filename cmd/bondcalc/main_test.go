package main

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/bondcalc/bond"
)

const annualJSON = `{
  "task_id": "t-1",
  "name": "annual",
  "nominal": 1000,
  "years": 1,
  "frequency": 1,
  "days_per_year": 360,
  "rate_type": "Effective",
  "coupon_rate": 10,
  "structuring_pct": 0,
  "placement_pct": 0,
  "depository_pct": 0,
  "opportunity_rate": 10
}`

func testOptions(t *testing.T) (runOptions, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return runOptions{
		precision: -1,
		irrOpts:   bond.DefaultIRROptions(),
		logger:    logger,
	}, hook
}

func TestParseInputs_SingleObject(t *testing.T) {
	inputs, isArray, err := parseInputs([]byte(annualJSON), false)
	require.NoError(t, err)
	assert.False(t, isArray)
	require.Len(t, inputs, 1)
	assert.Equal(t, "t-1", inputs[0].TaskID)
	assert.Equal(t, 1000.0, inputs[0].Nominal)
	require.NotNil(t, inputs[0].OpportunityRate)
	assert.Equal(t, 10.0, *inputs[0].OpportunityRate)
	assert.Nil(t, inputs[0].DiscountRate)
}

func TestParseInputs_Array(t *testing.T) {
	inputs, isArray, err := parseInputs([]byte("["+annualJSON+","+annualJSON+"]"), false)
	require.NoError(t, err)
	assert.True(t, isArray)
	assert.Len(t, inputs, 2)

	_, _, err = parseInputs([]byte("[]"), false)
	assert.Error(t, err)
	_, _, err = parseInputs([]byte("   "), false)
	assert.Error(t, err)
	_, _, err = parseInputs([]byte("{not json"), false)
	assert.Error(t, err)
}

func TestParseInputs_YAML(t *testing.T) {
	single := `
name: quarterly
nominal: 5000
years: 2
frequency: 4
days_per_year: 365
rate_type: nominal
capitalization: monthly
coupon_rate: 6
grace_type: partial
grace_periods: 1
opportunity_rate: 7.5
`
	inputs, isArray, err := parseInputs([]byte(single), true)
	require.NoError(t, err)
	assert.False(t, isArray)
	require.Len(t, inputs, 1)
	assert.Equal(t, "monthly", inputs[0].Capitalization)
	assert.Equal(t, 1, inputs[0].GracePeriods)
	require.NotNil(t, inputs[0].OpportunityRate)
	assert.Equal(t, 7.5, *inputs[0].OpportunityRate)

	list := `
- name: a
  nominal: 1000
  years: 1
  frequency: 1
  days_per_year: 360
  rate_type: Effective
  coupon_rate: 10
- name: b
  nominal: 2000
  years: 2
  frequency: 2
  days_per_year: 360
  rate_type: Effective
  coupon_rate: 8
`
	inputs, isArray, err = parseInputs([]byte(list), true)
	require.NoError(t, err)
	assert.True(t, isArray)
	require.Len(t, inputs, 2)
	assert.Equal(t, "b", inputs[1].Name)
}

func TestIsYAML(t *testing.T) {
	assert.True(t, isYAML("bonds.yaml"))
	assert.True(t, isYAML("dir/BONDS.YML"))
	assert.False(t, isYAML("bonds.json"))
	assert.False(t, isYAML(""))
}

func TestToBondInput(t *testing.T) {
	inputs, _, err := parseInputs([]byte(annualJSON), false)
	require.NoError(t, err)

	in, err := inputs[0].toBondInput()
	require.NoError(t, err)
	assert.Equal(t, bond.RateEffective, in.RateType)
	assert.Equal(t, bond.GraceNone, in.GraceType)
	assert.Equal(t, bond.Capitalization(""), in.Capitalization)

	missing := inputs[0]
	missing.RateType = ""
	_, err = missing.toBondInput()
	assert.ErrorIs(t, err, errMissingField)

	bad := inputs[0]
	bad.GraceType = "sometimes"
	_, err = bad.toBondInput()
	assert.ErrorIs(t, err, bond.ErrInvalidGraceType)
}

func TestProcess_AnnualScenario(t *testing.T) {
	inputs, _, err := parseInputs([]byte(annualJSON), false)
	require.NoError(t, err)

	opts, hook := testOptions(t)
	out, err := process(inputs[0], opts)
	require.NoError(t, err)

	assert.Equal(t, "t-1", out.TaskID)
	assert.Equal(t, "annual", out.Name)
	require.Len(t, out.Schedule, 2)
	assert.Equal(t, "", out.Schedule[0].Grace)
	assert.Equal(t, "S", out.Schedule[1].Grace)
	assert.InDelta(t, 1100, out.Schedule[1].Payment, 1e-9)

	require.NotNil(t, out.Metrics)
	assert.InDelta(t, 1000, out.Metrics.CurrentPrice, 1e-9)
	assert.InDelta(t, 1.0, out.Metrics.Duration, 1e-12)
	assert.InDelta(t, 0.10, out.Metrics.TCEA, 1e-15)

	require.NotNil(t, out.Constants)
	assert.Equal(t, "TEA", out.Constants.PeriodRateLabel)
	assert.Nil(t, out.IRR)
	assert.Nil(t, out.Trace)

	var sawInfo, sawDebug bool
	for _, e := range hook.AllEntries() {
		switch e.Level {
		case logrus.InfoLevel:
			sawInfo = sawInfo || e.Message == "bond calculated"
		case logrus.DebugLevel:
			sawDebug = true
			assert.Equal(t, "annual", e.Data["bond"])
		}
	}
	assert.True(t, sawInfo)
	assert.True(t, sawDebug)
}

func TestProcess_TraceIRRAndRounding(t *testing.T) {
	inputs, _, err := parseInputs([]byte(annualJSON), false)
	require.NoError(t, err)

	opts, _ := testOptions(t)
	opts.trace = true
	opts.irr = true
	opts.precision = 2

	out, err := process(inputs[0], opts)
	require.NoError(t, err)

	require.NotNil(t, out.IRR)
	assert.True(t, out.IRR.HolderConverged)
	assert.InDelta(t, 0.10, out.IRR.HolderAnnualRate, 1e-6)
	assert.InDelta(t, 0.10, out.IRR.IssuerAnnualRate, 1e-6)

	require.NotNil(t, out.Trace)
	assert.NotEmpty(t, out.Trace.ID)
	require.NotEmpty(t, out.Trace.Steps)
	assert.Equal(t, bond.StepStart, out.Trace.Steps[0].Name)
	assert.Equal(t, 1, out.Trace.Steps[0].Seq)

	names := make([]string, len(out.Trace.Steps))
	for i, s := range out.Trace.Steps {
		names[i] = s.Name
	}
	assert.Contains(t, names, bond.StepIRRDone)

	assert.InDelta(t, 0.909091, out.Metrics.ModifiedDuration, 1e-12)
	assert.InDelta(t, 3.636364, out.Metrics.Convexity, 1e-12)

	_, err = json.Marshal(out)
	assert.NoError(t, err)
}

func TestProcess_RejectsInvalidInput(t *testing.T) {
	inputs, _, err := parseInputs([]byte(annualJSON), false)
	require.NoError(t, err)

	in := inputs[0]
	in.Frequency = 5
	in.Nominal = 0

	opts, _ := testOptions(t)
	out, err := process(in, opts)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, bond.ErrInvalidFrequency)
	assert.ErrorIs(t, err, bond.ErrInvalidNominal)
}

func TestRound(t *testing.T) {
	price := 1000.005
	out := bondOutput{
		Constants: &constantsOutput{EffectiveAnnualRate: 0.123456789, CurrentPrice: &price},
		Schedule:  []rowOutput{{Payment: 12.345, Interest: -12.345}},
		Metrics:   &metricsOutput{Duration: 1.234567891},
	}
	out.round(2)

	assert.Equal(t, 0.123457, out.Constants.EffectiveAnnualRate)
	assert.Equal(t, 1000.01, *out.Constants.CurrentPrice)
	assert.Equal(t, 12.35, out.Schedule[0].Payment)
	assert.Equal(t, -12.35, out.Schedule[0].Interest)
	assert.Equal(t, 1.234568, out.Metrics.Duration)
	assert.Equal(t, 1000.005, price)
}
