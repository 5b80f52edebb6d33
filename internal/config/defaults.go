package config

const (
	// DefaultConfigFile is looked up in the working directory when no
	// configuration file is given.
	DefaultConfigFile = "buildall.yaml"

	// DefaultHostingURL is the anaconda.org compatible API used by channel
	// destinations.
	DefaultHostingURL = "https://api.anaconda.org"

	// DefaultMaxVersions is the default number of major and minor versions
	// kept per dimension.
	DefaultMaxVersions = 2
)

// GetDefaultConfig returns the configuration used when nothing is configured.
func GetDefaultConfig() Config {
	return Config{
		Recipes: RecipesConfig{Directory: "."},
		Index:   IndexConfig{RetryMax: 3},
		Upload:  UploadConfig{HostingURL: DefaultHostingURL, S3: S3Config{Region: "us-east-1", UseSSL: true}},
		Matrix: MatrixConfig{
			MaxMajorVersions: DefaultMaxVersions,
			MaxMinorVersions: DefaultMaxVersions,
		},
		Build: BuildConfig{
			Command:   []string{"conda", "build"},
			OutputDir: "conda-bld",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
