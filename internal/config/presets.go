package config

import "sort"

var Presets = map[string]*Config{
	"classic": {
		Simulation: SimulationConfig{
			Paths: 777, Steps: 252, Drift: 0, Volatility: 20.0 / 99.0, InitialPrice: 100, Rate: 0,
		},
		Render:    RenderConfig{Bins: "sqrt", Width: DefaultWidth, Height: DefaultHeight},
		Animation: AnimationConfig{FPS: 10, Output: DefaultOutput, FrameDir: DefaultFrameDir},
	},
	"quick": {
		Simulation: SimulationConfig{
			Paths: 50, Steps: 60, Drift: 0, Volatility: 0.2, InitialPrice: 100, Rate: 0,
		},
		Render:    RenderConfig{Bins: "sqrt", Width: 480, Height: 360},
		Animation: AnimationConfig{FPS: 15, Output: DefaultOutput, FrameDir: DefaultFrameDir},
	},
	"drifting": {
		Simulation: SimulationConfig{
			Paths: 300, Steps: 252, Drift: 0.08, Volatility: 0.25, InitialPrice: 100, Rate: 0.03,
		},
		Render:    RenderConfig{Bins: "sqrt", Width: DefaultWidth, Height: DefaultHeight},
		Animation: AnimationConfig{FPS: 10, Output: DefaultOutput, FrameDir: DefaultFrameDir},
	},
	"calm": {
		Simulation: SimulationConfig{
			Paths: 200, Steps: 120, Drift: 0.02, Volatility: 0.05, InitialPrice: 100, Rate: 0.01,
		},
		Render:    RenderConfig{Bins: "30", Width: DefaultWidth, Height: DefaultHeight},
		Animation: AnimationConfig{FPS: 12, Output: DefaultOutput, FrameDir: DefaultFrameDir},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
