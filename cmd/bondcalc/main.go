package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/bondcalc/bond"
	"github.com/meenmo/bondcalc/config"
	"github.com/meenmo/bondcalc/trace"
)

func main() {
	inputPath := flag.String("input", "", "JSON or YAML input path (reads JSON from stdin if omitted)")
	envPath := flag.String("env", ".env", "dotenv file with BONDCALC_* settings")
	withTrace := flag.Bool("trace", false, "Attach the recorded derivation steps")
	withIRR := flag.Bool("irr", false, "Attach IRR-based issuer and holder annual rates")
	precision := flag.Int("precision", -2, "Decimals for currency amounts, rates keep four more (-1 keeps raw values; default from config)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: bondcalc -input <path> [-trace] [-irr] [-precision n]")
		fmt.Fprintln(os.Stderr, "Build the cash-flow schedule and risk metrics of one or more bonds.")
		return
	}

	cfg, err := config.LoadFile(*envPath)
	if err != nil {
		exitError(fmt.Sprintf("load config: %v", err))
	}
	if *precision != -2 {
		cfg.Precision = *precision
	}
	logger := newLogger(cfg)

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Usage: bondcalc -input <path>")
			os.Exit(2)
		}
	}

	raw, err := readInput(path)
	if err != nil {
		exitError(fmt.Sprintf("read input: %v", err))
	}

	inputs, isArray, err := parseInputs(raw, isYAML(path))
	if err != nil {
		exitError(fmt.Sprintf("parse input: %v", err))
	}

	opts := runOptions{
		trace:     *withTrace,
		irr:       *withIRR,
		precision: cfg.Precision,
		irrOpts:   bond.IRROptionsFrom(cfg),
		logger:    logger,
	}

	hadError := false
	outputs := make([]bondOutput, 0, len(inputs))
	for _, in := range inputs {
		out, err := process(in, opts)
		if err != nil {
			hadError = true
			logger.WithField("task_id", in.TaskID).Errorf("calculation rejected: %v", err)
			outputs = append(outputs, bondOutput{TaskID: in.TaskID, Name: in.Name, Error: err.Error()})
			continue
		}
		outputs = append(outputs, *out)
	}

	var payload any = outputs[0]
	if isArray {
		payload = outputs
	}
	b, err := json.Marshal(payload)
	if err != nil {
		exitError(fmt.Sprintf("encode output: %v", err))
	}
	fmt.Println(string(b))

	if hadError {
		os.Exit(1)
	}
}

type runOptions struct {
	trace     bool
	irr       bool
	precision int
	irrOpts   bond.IRROptions
	logger    logrus.FieldLogger
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func process(in bondInputJSON, opts runOptions) (*bondOutput, error) {
	input, err := in.toBondInput()
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = "bond"
	}
	log := opts.logger.WithField("bond", name)
	if in.TaskID != "" {
		log = log.WithField("task_id", in.TaskID)
	}

	rec := trace.NewRecorder(name)
	tracer := trace.Multi(rec, trace.NewLogTracer(log))

	res := bond.Calculate(input, bond.WithTracer(tracer), bond.WithName(name))
	log.WithFields(logrus.Fields{
		"periods":  res.Constants.TotalPeriods,
		"price":    res.Metrics.CurrentPrice,
		"duration": res.Metrics.Duration,
	}).Info("bond calculated")

	out := newBondOutput(in.TaskID, name, res)
	if opts.irr {
		rates := bond.CalculateFlowRates(res, opts.irrOpts, tracer)
		if !rates.IssuerIRR.Converged() || !rates.HolderIRR.Converged() {
			log.WithFields(logrus.Fields{
				"issuer_stop": rates.IssuerIRR.Stop,
				"holder_stop": rates.HolderIRR.Stop,
			}).Warn("irr did not converge, reporting last estimate")
		}
		out.IRR = newIRROutput(rates)
	}
	if opts.trace {
		out.Trace = newTraceOutput(rec.Session())
	}
	if opts.precision >= 0 {
		out.round(int32(opts.precision))
	}
	return &out, nil
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func parseInputs(raw []byte, asYAML bool) ([]bondInputJSON, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if asYAML {
		return parseYAML(trimmed)
	}
	if trimmed[0] == '[' {
		var inputs []bondInputJSON
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input bondInputJSON
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []bondInputJSON{input}, false, nil
}

func parseYAML(raw []byte) ([]bondInputJSON, bool, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, false, err
	}
	if len(node.Content) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var inputs []bondInputJSON
		if err := node.Decode(&inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input bondInputJSON
	if err := node.Decode(&input); err != nil {
		return nil, false, err
	}
	return []bondInputJSON{input}, false, nil
}

func exitError(msg string) {
	b, _ := json.Marshal(bondOutput{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
