package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/theapemachine/qecc"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	fatalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// YAML documents. complex128 has no YAML form, so amplitudes travel as
// strings.

type verdictDoc struct {
	Scenario           string     `yaml:"scenario"`
	Outcome            string     `yaml:"outcome"`
	Got                string     `yaml:"got,omitempty"`
	Expected           string     `yaml:"expected,omitempty"`
	Probabilities      [2]float64 `yaml:"probabilities"`
	ProbabilitiesMatch bool       `yaml:"probabilities_match"`
	Counts             *[2]int    `yaml:"counts,omitempty"`
	Class              string     `yaml:"class,omitempty"`
	Error              string     `yaml:"error,omitempty"`
}

type reportDoc struct {
	Code     string       `yaml:"code"`
	Fault    string       `yaml:"fault"`
	Total    int          `yaml:"total"`
	Passed   int          `yaml:"passed"`
	Failed   int          `yaml:"failed"`
	Fatal    int          `yaml:"fatal"`
	Invalid  int          `yaml:"invalid"`
	Skipped  int          `yaml:"skipped"`
	Elapsed  string       `yaml:"elapsed"`
	Failures []verdictDoc `yaml:"failures,omitempty"`
}

type gateDoc struct {
	Gate     string   `yaml:"gate"`
	Target   int      `yaml:"target"`
	Controls []int    `yaml:"controls,omitempty"`
	Angle    *float64 `yaml:"angle,omitempty"`
}

type circuitDoc struct {
	Qubits int       `yaml:"qubits"`
	Gates  []gateDoc `yaml:"gates"`
}

func newVerdictDoc(name string, outcome string, v qecc.Verdict) verdictDoc {
	doc := verdictDoc{
		Scenario:           name,
		Outcome:            outcome,
		Got:                v.Got.String(),
		Expected:           v.Expected.String(),
		Probabilities:      v.Probabilities,
		ProbabilitiesMatch: v.ProbabilitiesMatch,
	}
	if v.Counts != [2]int{} {
		counts := v.Counts
		doc.Counts = &counts
	}
	return doc
}

func newOutcomeDoc(o qecc.Outcome) verdictDoc {
	doc := newVerdictDoc(o.Scenario.ID, o.Label(), o.Verdict)
	if o.Err != nil {
		doc.Class = string(o.Class)
		doc.Error = o.Err.Error()
	}
	return doc
}

func newCircuitDoc(c qecc.Circuit) circuitDoc {
	doc := circuitDoc{Qubits: c.Qubits(), Gates: make([]gateDoc, 0, c.Len())}
	for _, op := range c.Ops() {
		g := gateDoc{Gate: op.Kind().String(), Target: op.Target(), Controls: op.Controls()}
		if op.Kind() == qecc.GateRX || op.Kind() == qecc.GateRZ {
			angle := op.Angle()
			g.Angle = &angle
		}
		doc.Gates = append(doc.Gates, g)
	}
	return doc
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case qecc.OutcomePassed:
		return passStyle
	case qecc.OutcomeFatal:
		return fatalStyle
	case qecc.OutcomeSkipped:
		return mutedStyle
	default:
		return failStyle
	}
}

func renderVerdict(w io.Writer, name string, v qecc.Verdict) error {
	outcome := qecc.OutcomeFailed
	if v.Passed {
		outcome = qecc.OutcomePassed
	}

	if format == "yaml" {
		return writeYAML(w, newVerdictDoc(name, outcome, v))
	}

	e0, e1 := v.Expected.Probabilities()

	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(name))
	fmt.Fprintf(&b, "  outcome   %s\n", outcomeStyle(outcome).Render(outcome))
	fmt.Fprintf(&b, "  got       %s\n", v.Got)
	fmt.Fprintf(&b, "  expected  %s\n", v.Expected)
	fmt.Fprintf(&b, "  P(q0)     %.6f / %.6f  (expected %.6f / %.6f, match %v)\n",
		v.Probabilities[0], v.Probabilities[1], e0, e1, v.ProbabilitiesMatch)
	if v.Counts != [2]int{} {
		fmt.Fprintf(&b, "  counts    0:%d 1:%d\n", v.Counts[0], v.Counts[1])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderReport(w io.Writer, eval *qecc.Evaluator, report qecc.Report) error {
	failures := report.Failures()

	if format == "yaml" {
		doc := reportDoc{
			Code:    eval.Code().String(),
			Fault:   eval.Fault().String(),
			Total:   report.Total,
			Passed:  report.Passed,
			Failed:  report.Failed,
			Fatal:   report.Fatal,
			Invalid: report.Invalid,
			Skipped: report.Skipped,
			Elapsed: report.Elapsed.String(),
		}
		for _, o := range failures {
			doc.Failures = append(doc.Failures, newOutcomeDoc(o))
		}
		return writeYAML(w, doc)
	}

	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("%s code, %s faults", eval.Code(), eval.Fault())))

	for _, o := range failures {
		label := o.Label()
		fmt.Fprintf(&b, "  %-8s %s", outcomeStyle(label).Render(label), o.Scenario.ID)
		if o.Err != nil {
			fmt.Fprintf(&b, "  %s", mutedStyle.Render(o.Err.Error()))
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "%s %d  %s %d  %s %d  %s %d  %s %d  (%d scenarios in %s)\n",
		passStyle.Render("passed"), report.Passed,
		failStyle.Render("failed"), report.Failed,
		fatalStyle.Render("fatal"), report.Fatal,
		failStyle.Render("invalid"), report.Invalid,
		mutedStyle.Render("skipped"), report.Skipped,
		report.Total, report.Elapsed.Round(time.Microsecond),
	)

	_, err := io.WriteString(w, b.String())
	return err
}

// renderMetrics prints every sample in the pool's Prometheus registry.
func renderMetrics(w io.Writer, m *qecc.Metrics) error {
	families, err := m.Registry().Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}

			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case metric.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetCounter().GetValue()))
			case metric.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetGauge().GetValue()))
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%g", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)

	snapshot := m.ExportMetrics()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pool []string
	for _, k := range keys {
		pool = append(pool, fmt.Sprintf("%s %v", k, snapshot[k]))
	}

	if format == "yaml" {
		return writeYAML(w, map[string]any{"metrics": lines, "pool": snapshot})
	}

	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("metrics"))
	for _, line := range lines {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	fmt.Fprintln(&b, headerStyle.Render("pool"))
	for _, line := range pool {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	_, err = io.WriteString(w, b.String())
	return err
}
