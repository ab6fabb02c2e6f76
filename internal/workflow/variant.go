package workflow

import (
	"fmt"
	"sort"

	"go.trai.ch/zerr"
)

// Trigger events understood by the template.
const (
	EventPush             = "push"
	EventPullRequest      = "pull_request"
	EventWorkflowDispatch = "workflow_dispatch"
)

// Preset variant names.
const (
	VariantDefault = "default"
	VariantGuarded = "guarded"
	VariantNotify  = "notify"
)

var (
	// ErrUnknownVariant is returned when a variant name matches neither a
	// preset nor a configured variant.
	ErrUnknownVariant = zerr.New("unknown workflow variant")

	// ErrInvalidVariant is returned when a variant is missing a required
	// variation point.
	ErrInvalidVariant = zerr.New("invalid workflow variant")

	// ErrInvalidJob is returned when the job settings are incomplete.
	ErrInvalidJob = zerr.New("invalid job settings")
)

// Variant selects the variation points of a generated document.
type Variant struct {
	// Name identifies the variant in config files and on the command line.
	Name string

	// Triggers lists the events under "on:" in order.
	Triggers []string

	// Branches filters push and pull_request triggers.
	Branches []string

	// Guard, when set, restricts the job to runs whose head commit message
	// contains this marker.
	Guard string

	// GoVersion is passed to actions/setup-go.
	GoVersion string

	// CacheReset adds a "go clean -testcache" step before the test step.
	CacheReset bool

	// Notify adds a step that reports the job status when it fails.
	Notify bool
}

// Validate checks that the variant can be rendered.
func (v Variant) Validate() error {
	if len(v.Triggers) == 0 {
		return fmt.Errorf("%w: no trigger events", ErrInvalidVariant)
	}
	for _, event := range v.Triggers {
		switch event {
		case EventPush, EventPullRequest, EventWorkflowDispatch:
		default:
			return fmt.Errorf("%w: unsupported trigger event %q", ErrInvalidVariant, event)
		}
	}
	if v.GoVersion == "" {
		return fmt.Errorf("%w: go version is required", ErrInvalidVariant)
	}
	return nil
}

// EnvVar is one entry of the static env block. The generator never reads
// these values, it only writes them out.
type EnvVar struct {
	Name  string
	Value string
}

// Job holds settings shared by every generated workflow.
type Job struct {
	// ModulePath is the Go package passed to go test.
	ModulePath string

	// Timeout is passed to go test -timeout.
	Timeout string

	// RunsOn lists the runner labels.
	RunsOn []string

	// Env is written as the workflow-level env block.
	Env []EnvVar

	// NotifyAction is the action used by the failure-notification step.
	NotifyAction string

	// NotifySecret names the repository secret holding the webhook URL.
	NotifySecret string
}

// Validate checks that the job settings can be rendered.
func (j Job) Validate() error {
	switch {
	case j.ModulePath == "":
		return fmt.Errorf("%w: module path is required", ErrInvalidJob)
	case j.Timeout == "":
		return fmt.Errorf("%w: timeout is required", ErrInvalidJob)
	case len(j.RunsOn) == 0:
		return fmt.Errorf("%w: at least one runner label is required", ErrInvalidJob)
	}
	return nil
}

// DefaultJob returns the job settings used by the brev-cli e2e suite.
func DefaultJob() Job {
	return Job{
		ModulePath: "github.com/brevdev/brev-cli/e2etest/setup",
		Timeout:    "240s",
		RunsOn:     []string{"self-hosted"},
		Env: []EnvVar{
			{Name: "BREV_SETUP_TEST_CMD_DIR", Value: "/home/brev/workspace/brev-cli/actions-runner/_work/brev-cli/brev-cli"},
		},
		NotifyAction: "act10ns/slack@v1",
		NotifySecret: "SLACK_WEBHOOK_URL",
	}
}

// presets are the historical snapshots of the generated workflow.
var presets = map[string]Variant{
	VariantDefault: {
		Name:      VariantDefault,
		Triggers:  []string{EventPush, EventPullRequest, EventWorkflowDispatch},
		Branches:  []string{"main"},
		GoVersion: "1.18",
	},
	VariantGuarded: {
		Name:       VariantGuarded,
		Triggers:   []string{EventPush, EventWorkflowDispatch},
		Branches:   []string{"main"},
		Guard:      "e2etest",
		GoVersion:  "1.16",
		CacheReset: true,
	},
	VariantNotify: {
		Name:       VariantNotify,
		Triggers:   []string{EventPush, EventPullRequest, EventWorkflowDispatch},
		Branches:   []string{"main"},
		GoVersion:  "1.18",
		CacheReset: true,
		Notify:     true,
	},
}

// Preset returns a copy of the named preset variant.
func Preset(name string) (Variant, error) {
	v, ok := presets[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w %q", ErrUnknownVariant, name)
	}
	v.Triggers = append([]string(nil), v.Triggers...)
	v.Branches = append([]string(nil), v.Branches...)
	return v, nil
}

// PresetNames returns the preset variant names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
