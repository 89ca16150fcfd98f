package analysis

import "errors"

// Config holds the tunables of one analysis run.
type Config struct {
	Distance        int     `yaml:"distance"`
	Tolerance       float64 `yaml:"tolerance"`
	MinTouches      int     `yaml:"min_touches"`
	RSIPeriod       int     `yaml:"rsi_period"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	UseVolumeFilter bool    `yaml:"use_volume_filter"`
}

// DefaultConfig returns the standard settings (distance 5, 1% tolerance,
// RSI 14, MACD 12/26/9, volume confirmation on).
func DefaultConfig() Config {
	return Config{
		Distance:        5,
		Tolerance:       0.01,
		MinTouches:      2,
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		UseVolumeFilter: true,
	}
}

// Validate checks parameter ranges. MACDSlow > MACDFast is not enforced.
func (c Config) Validate() error {
	switch {
	case c.Distance < 1:
		return errors.New("distance must be >= 1")
	case c.Tolerance <= 0 || c.Tolerance >= 1:
		return errors.New("tolerance must be in (0, 1)")
	case c.MinTouches < 1:
		return errors.New("min_touches must be >= 1")
	case c.RSIPeriod < 1:
		return errors.New("rsi_period must be >= 1")
	case c.MACDFast < 1 || c.MACDSlow < 1 || c.MACDSignal < 1:
		return errors.New("macd periods must be >= 1")
	}
	return nil
}
