package config

// Config is the resolved runtime configuration: persisted defaults
// overlaid with command-line flags.
type Config struct {
	Path      string `json:"path"`
	Depth     int    `json:"depth"`
	Workers   int    `json:"workers"`
	TopFiles  int    `json:"topFiles"`
	Plain     bool   `json:"plain"`
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`

	// Not persisted.
	ShowVersion bool `json:"-"`
	Report      bool `json:"-"`
}

// fileConfig distinguishes absent keys from zero values when merging
// a stored config over the defaults.
type fileConfig struct {
	Path      *string `json:"path"`
	Depth     *int    `json:"depth"`
	Workers   *int    `json:"workers"`
	TopFiles  *int    `json:"topFiles"`
	Plain     *bool   `json:"plain"`
	LogLevel  *string `json:"logLevel"`
	LogFormat *string `json:"logFormat"`
}
