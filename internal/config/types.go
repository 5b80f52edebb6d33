package config

// Config is the top-level configuration structure for buildall.
type Config struct {
	Recipes RecipesConfig `yaml:"recipes"`
	Index   IndexConfig   `yaml:"index"`
	Inspect InspectConfig `yaml:"inspect"`
	Upload  UploadConfig  `yaml:"upload"`
	Matrix  MatrixConfig  `yaml:"matrix"`
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
}

// RecipesConfig locates the recipe tree.
type RecipesConfig struct {
	Directory string `yaml:"directory,omitempty"`
	MaxDepth  int    `yaml:"maxDepth,omitempty"` // 0 recurses without limit
}

// IndexConfig describes where the package index is read from.
type IndexConfig struct {
	Files    []string `yaml:"files,omitempty"`
	Channels []string `yaml:"channels,omitempty"`
	Subdir   string   `yaml:"subdir,omitempty"` // conda platform, e.g. linux-64
	RetryMax int      `yaml:"retryMax,omitempty"`
}

// InspectConfig lists the places searched for already built distributions.
type InspectConfig struct {
	Channels    []string `yaml:"channels,omitempty"`
	Directories []string `yaml:"directories,omitempty"`
}

// UploadConfig lists artefact destinations. Each entry is "owner",
// "owner/channels/channel", "file:///path" or "s3://bucket/prefix".
type UploadConfig struct {
	Destinations []string `yaml:"destinations,omitempty"`
	HostingURL   string   `yaml:"hostingURL,omitempty"`
	Token        string   `yaml:"-"`
	S3           S3Config `yaml:"-"`
}

// S3Config holds S3 connection settings. It is only read from the
// environment.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MatrixConfig controls build matrix pruning.
type MatrixConfig struct {
	Conditions       []string `yaml:"conditions,omitempty"`
	MaxMajorVersions int      `yaml:"maxMajorVersions"`
	MaxMinorVersions int      `yaml:"maxMinorVersions"`
}

// BuildConfig controls how recipes are built.
type BuildConfig struct {
	Command   []string `yaml:"command,omitempty"`
	OutputDir string   `yaml:"outputDir,omitempty"`
	NoTest    bool     `yaml:"noTest,omitempty"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}
