package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		fields []string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:   "missing recipe directory",
			modify: func(c *Config) { c.Recipes.Directory = " " },
			fields: []string{"recipes.directory"},
		},
		{
			name: "negative pruning",
			modify: func(c *Config) {
				c.Matrix.MaxMajorVersions = -1
				c.Matrix.MaxMinorVersions = -2
			},
			fields: []string{"matrix.maxMajorVersions", "matrix.maxMinorVersions"},
		},
		{
			name:   "bad subdir",
			modify: func(c *Config) { c.Index.Subdir = "amiga-68k" },
			fields: []string{"index.subdir"},
		},
		{
			name:   "subdir without arch",
			modify: func(c *Config) { c.Index.Subdir = "linux" },
			fields: []string{"index.subdir"},
		},
		{
			name:   "empty build command",
			modify: func(c *Config) { c.Build.Command = nil },
			fields: []string{"build.command"},
		},
		{
			name:   "blank destination",
			modify: func(c *Config) { c.Upload.Destinations = []string{"org", ""} },
			fields: []string{"upload.destinations[1]"},
		},
		{
			name: "logging",
			modify: func(c *Config) {
				c.Logging.Level = "loud"
				c.Logging.Format = "xml"
			},
			fields: []string{"logging.level", "logging.format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			var got []string
			for _, v := range verrs {
				got = append(got, v.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("a", "is required")
	assert.Equal(t, "field 'a': is required", errs.Error())

	errs.Add("b", "must not be negative", -1)
	assert.Equal(t, "validation failed: field 'a': is required; field 'b': must not be negative", errs.Error())
	assert.Equal(t, -1, errs[1].Value)
}
