// Package config provides configuration loading and management for e2egen.
//
// Configuration is loaded using Viper, supporting YAML config files and environment
// variable overrides. The defaults reproduce the brev-cli e2e workflows, so the
// tool works without any configuration file.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [VariantConfig] declares a custom workflow variant
//   - [JobConfig] contains the job settings shared by all generated workflows
//
// Configuration priority (highest to lowest):
//  1. Environment variables: E2EGEN_ followed by the key path in upper case
//     with dots replaced by underscores (E2EGEN_STRICT, E2EGEN_DISCOVERY_DIR,
//     E2EGEN_JOB_TIMEOUT). E2EGEN_MODULE_PATH and E2EGEN_TIMEOUT are accepted
//     as short forms of the job keys.
//  2. Config file passed to [Loader.LoadFromFile] (the --config flag)
//  3. Config file specified by E2EGEN_CONFIG_PATH
//  4. User config directory (platform-standard):
//     - Linux: ~/.config/e2egen/config.yaml
//     - macOS: ~/Library/Application Support/e2egen/config.yaml
//     - Windows: %APPDATA%\e2egen\config.yaml
//  5. ./.e2egen.yaml
//  6. [DefaultConfig] defaults
package config

import (
	"sort"

	"e2egen/internal/workflow"
)

// Config represents the root configuration structure.
type Config struct {
	// OutputDir is the directory workflow files are written to.
	// Default: ".github/workflows"
	OutputDir string `mapstructure:"output_dir"`

	// Extension is the file extension of generated files, without the dot.
	// Default: "yml"
	Extension string `mapstructure:"extension"`

	// Variant is the name of the workflow variant to render.
	// Either a preset (default, guarded, notify) or a key of Variants.
	Variant string `mapstructure:"variant"`

	// Variants declares custom variants. A custom variant with the same name
	// as a preset replaces the preset entirely.
	Variants map[string]VariantConfig `mapstructure:"variants"`

	// GoVersion, when set, replaces the toolchain of the selected variant.
	// Can be overridden with E2EGEN_GO_VERSION.
	GoVersion string `mapstructure:"go_version"`

	// Job contains settings shared by every generated workflow.
	Job JobConfig `mapstructure:"job"`

	// Discovery controls where --all looks for e2e tests.
	Discovery DiscoveryConfig `mapstructure:"discovery"`

	// Strict rejects identifiers that would escape the output directory.
	// Default: true
	Strict bool `mapstructure:"strict"`
}

// VariantConfig declares the variation points of a custom workflow variant.
type VariantConfig struct {
	// Triggers lists the events under "on:" (push, pull_request, workflow_dispatch).
	Triggers []string `mapstructure:"triggers"`

	// Branches filters the push and pull_request triggers.
	Branches []string `mapstructure:"branches"`

	// Guard restricts runs to commits whose message contains this marker.
	Guard string `mapstructure:"guard"`

	// GoVersion is the toolchain passed to actions/setup-go.
	GoVersion string `mapstructure:"go_version"`

	// CacheReset adds a go clean -testcache step.
	CacheReset bool `mapstructure:"cache_reset"`

	// Notify adds a failure-notification step.
	Notify bool `mapstructure:"notify"`
}

// JobConfig contains the settings shared by all generated workflows.
type JobConfig struct {
	// ModulePath is the Go package holding the e2e tests.
	// Can be overridden with E2EGEN_MODULE_PATH.
	ModulePath string `mapstructure:"module_path"`

	// Timeout is passed to go test -timeout.
	// Default: "240s"
	Timeout string `mapstructure:"timeout"`

	// RunsOn lists the runner labels.
	// Default: ["self-hosted"]
	RunsOn []string `mapstructure:"runs_on"`

	// Env is the static env block written into every workflow. It is a list
	// rather than a map so variable names keep their case.
	Env []EnvConfig `mapstructure:"env"`

	// NotifyAction is the action used by the failure-notification step.
	NotifyAction string `mapstructure:"notify_action"`

	// NotifySecret names the secret holding the notification webhook URL.
	NotifySecret string `mapstructure:"notify_secret"`
}

// EnvConfig is one entry of [JobConfig.Env].
type EnvConfig struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// DiscoveryConfig controls e2e test discovery.
type DiscoveryConfig struct {
	// Dir is the directory of the e2e test package, relative to the
	// working directory.
	// Default: "e2etest/setup"
	Dir string `mapstructure:"dir"`

	// Pattern filters discovered test names. Empty keeps all names.
	Pattern string `mapstructure:"pattern"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
//
// The defaults reproduce the workflows historically committed to brev-cli:
// the "default" variant, the brev-cli setup test package and a self-hosted
// runner.
func DefaultConfig() *Config {
	job := workflow.DefaultJob()

	env := make([]EnvConfig, len(job.Env))
	for i, e := range job.Env {
		env[i] = EnvConfig{Name: e.Name, Value: e.Value}
	}

	return &Config{
		OutputDir: ".github/workflows",
		Extension: "yml",
		Variant:   workflow.VariantDefault,
		Variants:  map[string]VariantConfig{},
		Job: JobConfig{
			ModulePath:   job.ModulePath,
			Timeout:      job.Timeout,
			RunsOn:       job.RunsOn,
			Env:          env,
			NotifyAction: job.NotifyAction,
			NotifySecret: job.NotifySecret,
		},
		Discovery: DiscoveryConfig{
			Dir: "e2etest/setup",
		},
		Strict: true,
	}
}

// ResolveVariant returns the named variant.
//
// Custom variants from [Config.Variants] take precedence over presets.
// An empty name resolves [Config.Variant]. [Config.GoVersion], when set,
// replaces the variant's toolchain.
func (c *Config) ResolveVariant(name string) (workflow.Variant, error) {
	if name == "" {
		name = c.Variant
	}

	var v workflow.Variant
	if vc, ok := c.Variants[name]; ok {
		v = workflow.Variant{
			Name:       name,
			Triggers:   append([]string(nil), vc.Triggers...),
			Branches:   append([]string(nil), vc.Branches...),
			Guard:      vc.Guard,
			GoVersion:  vc.GoVersion,
			CacheReset: vc.CacheReset,
			Notify:     vc.Notify,
		}
	} else {
		preset, err := workflow.Preset(name)
		if err != nil {
			return workflow.Variant{}, err
		}
		v = preset
	}

	if c.GoVersion != "" {
		v.GoVersion = c.GoVersion
	}
	return v, nil
}

// VariantNames returns preset names followed by custom variant names that
// do not shadow a preset, in sorted order within each group.
func (c *Config) VariantNames() []string {
	names := workflow.PresetNames()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}

	var custom []string
	for n := range c.Variants {
		if !seen[n] {
			custom = append(custom, n)
		}
	}
	sort.Strings(custom)

	return append(names, custom...)
}

// WorkflowJob converts the job settings for the workflow renderer.
func (c *Config) WorkflowJob() workflow.Job {
	env := make([]workflow.EnvVar, len(c.Job.Env))
	for i, e := range c.Job.Env {
		env[i] = workflow.EnvVar{Name: e.Name, Value: e.Value}
	}

	return workflow.Job{
		ModulePath:   c.Job.ModulePath,
		Timeout:      c.Job.Timeout,
		RunsOn:       append([]string(nil), c.Job.RunsOn...),
		Env:          env,
		NotifyAction: c.Job.NotifyAction,
		NotifySecret: c.Job.NotifySecret,
	}
}
