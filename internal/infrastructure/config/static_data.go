package config

// StaticDataConfig selects where the item, blueprint and location catalog is loaded from
type StaticDataConfig struct {
	// Driver: sqlite or mysql for a static data dump, yaml for a hand-written catalog
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite mysql yaml"`

	// DSN of the dump database (sqlite file path or mysql DSN)
	DSN string `mapstructure:"dsn"`

	// Path of the YAML catalog
	Path string `mapstructure:"path"`
}

// Source returns the DSN or path the selected driver reads from
func (c StaticDataConfig) Source() string {
	if c.Driver == "yaml" {
		return c.Path
	}
	return c.DSN
}
