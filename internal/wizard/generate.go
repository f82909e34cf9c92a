package wizard

import (
	"bytes"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// WizardAnswers holds all user responses from the wizard.
type WizardAnswers struct {
	// Proxmox API
	Host     string
	TokenID  string
	Token    string
	Insecure bool

	// Deploy defaults
	Node     string
	LogLevel string

	// SDN settings
	EnableSDN  bool
	SDNNetwork string
	SDNZone    string
	SDNVLAN    int
	SDNCreate  bool
}

const configTemplate = `# proxmox-swarm configuration
# Values can be overridden with PROXMOX_SWARM_* environment variables.

host: {{ yaml .Host }}
token_id: {{ yaml .TokenID }}
{{- if .Token }}
token: {{ yaml .Token }}
{{- else }}
# token: set PROXMOX_SWARM_TOKEN instead of storing the secret here
{{- end }}
insecure: {{ if .Insecure }}true{{ else }}false{{ end }}
{{- if .Node }}
node: {{ yaml .Node }}
{{- end }}
log_level: {{ .LogLevel }}

{{- if .EnableSDN }}

sdn:
  network: {{ yaml .SDNNetwork }}
  zone: {{ yaml .SDNZone }}
{{- if .SDNVLAN }}
  vlan: {{ .SDNVLAN }}
{{- end }}
  create: {{ if .SDNCreate }}true{{ else }}false{{ end }}
{{- end }}
`

var funcs = template.FuncMap{
	"yaml": yamlScalar,
}

// yamlScalar renders s as a single YAML scalar, quoting only when needed.
func yamlScalar(s string) (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// GenerateConfig renders the YAML config from wizard answers.
func GenerateConfig(answers WizardAnswers) (string, error) {
	if answers.LogLevel == "" {
		answers.LogLevel = "info"
	}

	tmpl, err := template.New("config").Funcs(funcs).Parse(configTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", err
	}

	return buf.String(), nil
}
