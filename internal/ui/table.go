package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	dto "github.com/prometheus/client_model/go"

	"github.com/muurk/kpowire/internal/capture"
	"github.com/muurk/kpowire/internal/protocol"
)

// maxFailuresShown caps the failure list of a statistics report.
const maxFailuresShown = 10

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...)
}

// RenderOpcodeTable lists the registered opcodes of a protocol version.
func RenderOpcodeTable(v protocol.Version, descriptors []protocol.Descriptor) string {
	t := newTable("CODE", "NAME")
	for _, d := range descriptors {
		t.Row(fmt.Sprintf("0x%02x", uint8(d.Code)), d.Name)
	}
	title := HeaderTitleStyle.Render(fmt.Sprintf("OPCODES %s", strings.ToUpper(v.String())))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String())
}

// RenderStatistics renders a capture validation report: totals with a
// success bar, opcode and error kind distributions, then the first failures.
func RenderStatistics(stats *capture.Statistics, width int) string {
	width = clampWidth(width)

	result := NewSuccessResult("Capture validated")
	if stats.Failed > 0 {
		result = NewWarningResult("Capture validated with failures")
	}
	result.SetWidth(width).
		AddDetail("Files", strconv.Itoa(stats.TotalFiles)).
		AddDetail("Messages", strconv.Itoa(stats.TotalMessages)).
		AddDetail("Decoded", strconv.Itoa(stats.Decoded)).
		AddDetail("Failed", strconv.Itoa(stats.Failed)).
		AddDetail("Success", RenderSuccessBar(stats.SuccessRate()/100, width-30))

	sections := []string{result.Render()}

	if len(stats.Opcodes) > 0 {
		t := newTable("OPCODE", "NAME", "COUNT", "SHARE")
		for _, op := range stats.SortedOpcodes() {
			n := stats.Opcodes[op]
			t.Row(fmt.Sprintf("0x%02x", uint8(op)), op.String(), strconv.Itoa(n),
				fmt.Sprintf("%.2f%%", float64(n)/float64(stats.Decoded)*100))
		}
		sections = append(sections, t.String())
	}

	if len(stats.ErrorKinds) > 0 {
		t := newTable("ERROR KIND", "COUNT")
		for _, kind := range stats.SortedErrorKinds() {
			t.Row(kind.String(), strconv.Itoa(stats.ErrorKinds[kind]))
		}
		sections = append(sections, t.String())
	}

	if len(stats.Failures) > 0 {
		var lines []string
		shown := min(len(stats.Failures), maxFailuresShown)
		title := fmt.Sprintf("PARSE FAILURES (%d total)", len(stats.Failures))
		if len(stats.Failures) > shown {
			title = fmt.Sprintf("PARSE FAILURES (showing first %d of %d)", shown, len(stats.Failures))
		}
		lines = append(lines, ErrorTitleStyle.Render(title))
		for _, f := range stats.Failures[:shown] {
			lines = append(lines,
				"",
				ResultValueStyle.Render(fmt.Sprintf("  %s line %d (msg #%d)", f.File, f.LineNumber, f.MessageNum)),
				HexStyle.Render("    "+truncate(f.PayloadHex, width-8)),
				ErrorMessageStyle.Render("    "+f.Error),
			)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n\n")
}

// RenderMetrics renders gathered codec metrics: counters by value,
// histograms by sample count and sum.
func RenderMetrics(families []*dto.MetricFamily) string {
	t := newTable("METRIC", "LABELS", "VALUE")
	for _, f := range families {
		for _, m := range f.GetMetric() {
			var value string
			switch f.GetType() {
			case dto.MetricType_COUNTER:
				value = strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64)
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				value = fmt.Sprintf("n=%d sum=%g", h.GetSampleCount(), h.GetSampleSum())
			default:
				continue
			}
			t.Row(f.GetName(), formatLabels(m.GetLabel()), value)
		}
	}
	return t.String()
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	if n < 4 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
