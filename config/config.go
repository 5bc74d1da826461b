// Package config holds the app wide settings that are unmarshalled from
// Viper (see: /cmd).
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jkoedam/seqcover/internal/ions"
	"github.com/jkoedam/seqcover/internal/mass"
)

// MatchConfig controls which fragment ions are predicted and how they are
// matched against observed peaks.
type MatchConfig struct {
	// ion series to test at every cleavage site
	IonTypes []string `mapstructure:"ion-types"`

	// neutral losses to test per series (H2O, NH3)
	NeutralLosses []string `mapstructure:"neutral-losses"`

	// peak match tolerance, e.g. "20ppm" or "0.02Da"
	Tolerance string `mapstructure:"tolerance"`

	// highest fragment charge state to predict
	MaxFragmentCharge int `mapstructure:"max-fragment-charge"`
}

// FilterConfig limits which matches make it into the report.
type FilterConfig struct {
	// matches above this q-value are dropped from the output
	MaxQValue float64 `mapstructure:"max-qvalue"`
}

// RunConfig is for settings of the parallel matching run itself.
type RunConfig struct {
	// worker goroutines; 0 means one per CPU
	Workers int `mapstructure:"workers"`
}

// Config is the root-level settings struct and is a mix of settings
// available in a config file and those from the command line.
type Config struct {
	Match  MatchConfig
	Filter FilterConfig
	Run    RunConfig
}

// SetDefaults registers the default value of every setting with Viper.
// Called before flags are bound so flags take precedence.
func SetDefaults() {
	viper.SetDefault("match.ion-types", []string{"b", "y"})
	viper.SetDefault("match.neutral-losses", []string{})
	viper.SetDefault("match.tolerance", "20ppm")
	viper.SetDefault("match.max-fragment-charge", 1)
	viper.SetDefault("filter.max-qvalue", 1.0)
	viper.SetDefault("run.workers", 0)
}

// New returns a Config populated by Viper settings, either from a config
// file or from command line arguments.
func New() (Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	return c, nil
}

// Scheme builds the fragment ion scheme described by the settings.
func (m MatchConfig) Scheme() (*ions.Scheme, error) {
	losses, err := parseLosses(m.NeutralLosses)
	if err != nil {
		return nil, err
	}
	return ions.NewScheme(m.IonTypes, m.MaxFragmentCharge, losses)
}

// MassTolerance parses the configured tolerance string.
func (m MatchConfig) MassTolerance() (mass.Tolerance, error) {
	return mass.ParseTolerance(m.Tolerance)
}

func parseLosses(names []string) ([]ions.Loss, error) {
	losses := make([]ions.Loss, 0, len(names))
	for _, n := range names {
		switch n {
		case "H2O":
			losses = append(losses, ions.LossWater)
		case "NH3":
			losses = append(losses, ions.LossAmmonia)
		default:
			return nil, fmt.Errorf("unknown neutral loss %q (supported: H2O, NH3)", n)
		}
	}
	return losses, nil
}
