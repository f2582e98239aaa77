package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"gbmviz/internal/gbm"
)

const (
	DefaultPaths        = 777
	DefaultSteps        = 252 // trading days in a year
	DefaultVolatility   = 20.0 / 99.0
	DefaultInitialPrice = 100.0
	DefaultFPS          = 10
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultOutput       = "gbm_evolution.gif"
	DefaultFrameDir     = "gbm_plots"
)

type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Render     RenderConfig     `yaml:"render"`
	Animation  AnimationConfig  `yaml:"animation"`
}

type SimulationConfig struct {
	Paths        int     `yaml:"paths"`
	Steps        int     `yaml:"steps"`
	Drift        float64 `yaml:"drift"`
	Volatility   float64 `yaml:"volatility"`
	InitialPrice float64 `yaml:"initial_price"`
	Rate         float64 `yaml:"rate"`
	Seed         int64   `yaml:"seed"`
}

type RenderConfig struct {
	Workers int    `yaml:"workers"` // 0 picks NumCPU/4
	Bins    string `yaml:"bins"`    // "sqrt" or a fixed bin count
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

type AnimationConfig struct {
	FPS        int    `yaml:"fps"`
	Output     string `yaml:"output"`
	FrameDir   string `yaml:"frame_dir"`
	KeepFrames bool   `yaml:"keep_frames"`
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Paths:        DefaultPaths,
			Steps:        DefaultSteps,
			Volatility:   DefaultVolatility,
			InitialPrice: DefaultInitialPrice,
		},
		Render: RenderConfig{
			Bins:   "sqrt",
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Animation: AnimationConfig{
			FPS:      DefaultFPS,
			Output:   DefaultOutput,
			FrameDir: DefaultFrameDir,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the simulation section to generator parameters.
func (c *Config) Params() gbm.Params {
	return gbm.Params{
		PathCount:    c.Simulation.Paths,
		Horizon:      c.Simulation.Steps,
		Drift:        c.Simulation.Drift,
		Volatility:   c.Simulation.Volatility,
		InitialPrice: c.Simulation.InitialPrice,
		Rate:         c.Simulation.Rate,
	}
}

// FrameDelay returns the per-frame GIF delay in hundredths of a
// second.
func (c *Config) FrameDelay() int {
	fps := c.Animation.FPS
	if fps < 1 {
		fps = DefaultFPS
	}
	d := 100 / fps
	if d < 1 {
		d = 1
	}
	return d
}
