package config

// Config represents the harness configuration: ambient app/logging
// settings plus the run parameters that drive a single simulation.
type Config struct {
	App struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
	} `mapstructure:"app"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`

	Run struct {
		// Scenario names a builder registered in internal/scenario.
		Scenario string `mapstructure:"scenario"`
		// Integrator selects "verlet" or "rk4".
		Integrator string `mapstructure:"integrator"`
		// Timestep is the simulation step size in seconds.
		Timestep float64 `mapstructure:"timestep"`
		// Steps is the number of integration steps to run.
		Steps int `mapstructure:"steps"`
		// Seed drives any randomized scenario generation.
		Seed int64 `mapstructure:"seed"`
		// GravitationalConstantScale multiplies the realistic G, letting
		// demonstration scenarios run at a perceptible rate.
		GravitationalConstantScale float64 `mapstructure:"gravitational_constant_scale"`
		// Softening is the gravity softening distance in meters.
		Softening float64 `mapstructure:"softening"`
		// StorageLayout selects "sparse" or "dense" component storage.
		StorageLayout string `mapstructure:"storage_layout"`
		// SIMDEnabled toggles the vectorized kernel backends.
		SIMDEnabled bool `mapstructure:"simd_enabled"`
		// DiagnosticSampleEvery samples energy/drift diagnostics every N
		// steps; 0 disables periodic sampling.
		DiagnosticSampleEvery int `mapstructure:"diagnostic_sample_every"`
	} `mapstructure:"run"`

	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	Report struct {
		OutputDir string `mapstructure:"output_dir"`
	} `mapstructure:"report"`
}
