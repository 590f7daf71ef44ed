package report

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
)

// Status is a read-only view of the server at one instant.
type Status struct {
	Started    time.Time
	Now        time.Time
	Ticks      uint64
	TickLength time.Duration
	Clock      int64
	MaxPlayers int
	Locations  []LocationStatus
	Clients    []ClientStatus
	Saved      []SavedPlayer
}

func (s Status) Uptime() time.Duration {
	if s.Started.IsZero() {
		return 0
	}
	return s.Now.Sub(s.Started).Truncate(time.Second)
}

type LocationStatus struct {
	Name     string
	Entities int
	Players  int
}

type ClientStatus struct {
	ID       string
	Remote   string
	Name     string
	State    string
	Location string

	// Latency is in seconds, throughputs in bytes per second.
	Latency            float64
	InboundThroughput  float64
	OutboundThroughput float64
}

type SavedPlayer struct {
	Name     string
	Location string
}

// SortSaved orders saved players by name.
func SortSaved(saved []SavedPlayer) {
	sort.Slice(saved, func(i, j int) bool { return saved[i].Name < saved[j].Name })
}

const defaultTemplate = `Server status
  up {{ .Uptime }} | {{ .Ticks }} ticks of {{ .TickLength }} | clock {{ .Clock }}ms
  players {{ len .Clients }}/{{ .MaxPlayers }}

Locations
{{- range .Locations }}
  {{ pad 24 .Name }} {{ printf "%4d" .Entities }} entities {{ printf "%3d" .Players }} players
{{- end }}

Clients
{{- range .Clients }}
  {{ trunc 8 .ID }} {{ pad 22 .Remote }} {{ pad 10 .State }} {{ pad 16 (default "-" .Name) }} in {{ pad 9 (rate .InboundThroughput) }} out {{ pad 9 (rate .OutboundThroughput) }} rtt {{ pad 7 (millis .Latency) }} {{ default "-" .Location | clip 24 }}
{{- else }}
  none
{{- end }}

Saved players
{{- range .Saved }}
  {{ pad 16 .Name }} {{ clip 24 .Location }}
{{- else }}
  none
{{- end }}
`

// templateFuncs provides sprig's helpers plus column layout.
var templateFuncs = func() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["pad"] = func(width int, s string) string {
		return padding.String(truncate.StringWithTail(s, uint(width), "~"), uint(width))
	}
	fm["clip"] = func(width int, s string) string {
		return truncate.StringWithTail(s, uint(width), "~")
	}
	fm["rate"] = formatRate
	fm["millis"] = func(seconds float64) string {
		return fmt.Sprintf("%.0fms", seconds*1000)
	}
	return fm
}()

// formatRate renders bytes per second with a binary unit.
func formatRate(bps float64) string {
	switch {
	case bps >= 1<<20:
		return fmt.Sprintf("%.1fM/s", bps/(1<<20))
	case bps >= 1<<10:
		return fmt.Sprintf("%.1fK/s", bps/(1<<10))
	default:
		return fmt.Sprintf("%.0fB/s", bps)
	}
}

type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses tmpl, or the built-in layout when tmpl is empty.
func NewRenderer(tmpl string) (*Renderer, error) {
	if tmpl == "" {
		tmpl = defaultTemplate
	}
	t, err := template.New("report").Funcs(templateFuncs).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

func (r *Renderer) Render(s Status) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
