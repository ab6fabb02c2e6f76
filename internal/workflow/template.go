// Package workflow renders GitHub Actions workflow documents for e2e tests.
//
// Every generated document comes from one template. What differs between
// documents is the test identifier, the [Job] settings shared by all tests,
// and the [Variant] that selects triggers, guard, toolchain and optional steps.
//
// Key types:
//   - [Renderer] expands the template for a single identifier
//   - [Variant] describes the variation points of the document
//   - [Job] holds the per-repository job settings
package workflow

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// NamePrefix is prepended to the identifier in the workflow name field.
const NamePrefix = "e2etest-"

const documentTemplate = `name: {{ .NamePrefix }}{{ .Identifier }}

on:
{{- range .Triggers }}
  {{ .Event }}:
{{- if .Branches }}
    branches: [{{ join .Branches ", " }}]
{{- end }}
{{- end }}

{{- if .Env }}

env:
{{- range .Env }}
  {{ .Name }}: {{ .Value }}
{{- end }}
{{- end }}

jobs:
  ci:
{{- if .Guard }}
    if: {{ expr (printf "contains(github.event.head_commit.message, %s)" (literal .Guard)) }}
{{- end }}
    runs-on: [{{ join .RunsOn ", " }}]
    defaults:
      run:
        shell: bash
    steps:
      - uses: actions/checkout@v2

      - uses: actions/setup-go@v2
        with:
          go-version: '{{ .GoVersion }}'
{{- if .CacheReset }}

      - name: clear test cache
        run: go clean -testcache
{{- end }}

      - name: test
        run: go test -timeout {{ .Timeout }} -run ^{{ .Identifier }}$ {{ .ModulePath }}
{{- with .Notify }}

      - name: notify failure
        if: {{ expr "failure()" }}
        uses: {{ .Action }}
        with:
          status: {{ expr "job.status" }}
          steps: {{ expr "toJson(steps)" }}
        env:
          SLACK_WEBHOOK_URL: {{ expr (printf "secrets.%s" .WebhookSecret) }}
{{- end }}
`

// funcs are available inside the document template. GitHub expressions use
// the same delimiters as text/template, so they are emitted through expr.
var funcs = template.FuncMap{
	"join": strings.Join,
	"expr": func(s string) string {
		return "${{ " + s + " }}"
	},
	// literal quotes s as a GitHub expression string literal.
	"literal": func(s string) string {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	},
}

var document = template.Must(template.New("workflow").Funcs(funcs).Parse(documentTemplate))

// trigger is one event under the "on:" key.
type trigger struct {
	Event    string
	Branches []string
}

// notify holds the failure-notification step settings.
type notify struct {
	Action        string
	WebhookSecret string
}

// documentData is the value the template is executed with.
type documentData struct {
	NamePrefix string
	Identifier string
	Triggers   []trigger
	Env        []EnvVar
	Guard      string
	RunsOn     []string
	GoVersion  string
	CacheReset bool
	Timeout    string
	ModulePath string
	Notify     *notify
}

// Renderer expands the workflow template for individual identifiers.
//
// A Renderer is immutable once created and safe to reuse for any number of
// identifiers. Create instances with [NewRenderer].
type Renderer struct {
	job     Job
	variant Variant
}

// NewRenderer creates a [Renderer] for the given job settings and variant.
//
// Returns an error if the job or variant is incomplete, so configuration
// problems surface before any file is written.
func NewRenderer(job Job, variant Variant) (*Renderer, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := variant.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{job: job, variant: variant}, nil
}

// Variant returns the variant this renderer was created with.
func (r *Renderer) Variant() Variant {
	return r.variant
}

// Render returns the workflow document for identifier.
//
// The identifier appears verbatim in the name field and in the -run pattern
// of the test step, anchored as ^identifier$.
func (r *Renderer) Render(identifier string) ([]byte, error) {
	data := r.data(identifier)

	var buf bytes.Buffer
	if err := document.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render workflow %s: %w", identifier, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) data(identifier string) documentData {
	data := documentData{
		NamePrefix: NamePrefix,
		Identifier: identifier,
		Env:        r.job.Env,
		Guard:      r.variant.Guard,
		RunsOn:     r.job.RunsOn,
		GoVersion:  r.variant.GoVersion,
		CacheReset: r.variant.CacheReset,
		Timeout:    r.job.Timeout,
		ModulePath: r.job.ModulePath,
	}

	for _, event := range r.variant.Triggers {
		t := trigger{Event: event}
		if takesBranches(event) {
			t.Branches = r.variant.Branches
		}
		data.Triggers = append(data.Triggers, t)
	}

	if r.variant.Notify {
		data.Notify = &notify{
			Action:        r.job.NotifyAction,
			WebhookSecret: r.job.NotifySecret,
		}
	}

	return data
}

// takesBranches reports whether a branch filter applies to the event.
func takesBranches(event string) bool {
	return event == EventPush || event == EventPullRequest
}
