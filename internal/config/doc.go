// Package config loads buildall's configuration.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (GetDefaultConfig)
//  2. A buildall.yaml file, by default in the working directory
//  3. The environment, optionally seeded from a .env file (LoadEnv)
//
// Command line flags are applied on top by the cmd package.
//
// # File Format
//
//	recipes:
//	  directory: ./recipes
//	  maxDepth: 0
//	index:
//	  files: [./repodata.json]
//	  channels: [https://conda.anaconda.org/conda-forge]
//	  subdir: linux-64
//	inspect:
//	  channels: [https://conda.anaconda.org/my-org]
//	  directories: [./built]
//	upload:
//	  destinations: [my-org/channels/dev, file:///srv/conda, s3://artefacts/conda]
//	matrix:
//	  conditions: ["python >=2.7"]
//	  maxMajorVersions: 2
//	  maxMinorVersions: 2
//	build:
//	  command: [conda, build]
//	  outputDir: ./conda-bld
//	logging:
//	  level: info
//	  format: text
//
// # Environment
//
// Secrets never live in the file. BINSTAR_TOKEN supplies the hosting token
// and BUILDALL_S3_ENDPOINT, BUILDALL_S3_ACCESS_KEY, BUILDALL_S3_SECRET_KEY,
// BUILDALL_S3_REGION and BUILDALL_S3_USE_SSL configure S3 destinations.
//
// Validate reports every problem at once as ValidationErrors.
package config
