package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds solver and presentation parameters.
// Zero values are not usable; start from DefaultConfig.
type Config struct {
	// IRRGuess is the initial rate estimate for Newton-Raphson (decimal, per period).
	IRRGuess float64

	// IRRMaxIterations is the iteration budget for the IRR solve.
	IRRMaxIterations int

	// IRRTolerance stops iteration once |NPV| or the step size falls below it.
	IRRTolerance float64

	// DerivativeThreshold is the minimum NPV derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64

	// Precision is the number of decimals used when rendering results.
	// Negative keeps raw float64 values.
	Precision int

	LogLevel  string
	LogFormat string
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	IRRGuess:            0.1,
	IRRMaxIterations:    100,
	IRRTolerance:        1e-10,
	DerivativeThreshold: 1e-15,
	Precision:           -1,
	LogLevel:            "info",
	LogFormat:           "text",
}

// Load overlays BONDCALC_* environment variables on DefaultConfig.
func Load() (Config, error) {
	cfg := DefaultConfig

	var err error
	if cfg.IRRGuess, err = getFloat("BONDCALC_IRR_GUESS", cfg.IRRGuess); err != nil {
		return Config{}, err
	}
	if cfg.IRRMaxIterations, err = getInt("BONDCALC_IRR_MAX_ITERATIONS", cfg.IRRMaxIterations); err != nil {
		return Config{}, err
	}
	if cfg.IRRTolerance, err = getFloat("BONDCALC_IRR_TOLERANCE", cfg.IRRTolerance); err != nil {
		return Config{}, err
	}
	if cfg.DerivativeThreshold, err = getFloat("BONDCALC_IRR_DERIVATIVE_THRESHOLD", cfg.DerivativeThreshold); err != nil {
		return Config{}, err
	}
	if cfg.Precision, err = getInt("BONDCALC_PRECISION", cfg.Precision); err != nil {
		return Config{}, err
	}
	cfg.LogLevel = getString("BONDCALC_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(getString("BONDCALC_LOG_FORMAT", cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile seeds the environment from a dotenv file, then calls Load.
// Variables already present in the environment win. A missing file is ignored.
func LoadFile(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return Load()
}

// Validate rejects solver settings that cannot produce an iteration.
func (c Config) Validate() error {
	if c.IRRMaxIterations <= 0 {
		return fmt.Errorf("BONDCALC_IRR_MAX_ITERATIONS must be positive, got %d", c.IRRMaxIterations)
	}
	if c.IRRTolerance <= 0 {
		return fmt.Errorf("BONDCALC_IRR_TOLERANCE must be positive, got %g", c.IRRTolerance)
	}
	if c.DerivativeThreshold < 0 {
		return fmt.Errorf("BONDCALC_IRR_DERIVATIVE_THRESHOLD must not be negative, got %g", c.DerivativeThreshold)
	}
	if c.IRRGuess <= -1 {
		return fmt.Errorf("BONDCALC_IRR_GUESS must be greater than -1, got %g", c.IRRGuess)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("BONDCALC_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to float: %w", key, value, err)
	}
	return parsed, nil
}
