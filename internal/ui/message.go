package ui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kpowire/internal/protocol"
)

// MessageView renders one decoded or encoded message: a title line with
// opcode and sequence id, the raw bytes, and the message document.
type MessageView struct {
	Version protocol.Version
	Message protocol.Message
	Raw     []byte
	Body    string // YAML rendering of the message
	Width   int
}

// NewMessageView creates a view with the current terminal width.
func NewMessageView(v protocol.Version, msg protocol.Message, raw []byte, body string) *MessageView {
	return &MessageView{
		Version: v,
		Message: msg,
		Raw:     raw,
		Body:    body,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (m *MessageView) SetWidth(width int) *MessageView {
	m.Width = width
	return m
}

// Render returns the styled message box
func (m *MessageView) Render() string {
	width := clampWidth(m.Width)
	op := m.Message.Opcode()

	title := fmt.Sprintf("%s  %s",
		OpcodeStyle.Render(op.String()),
		HeaderCommandStyle.Render(fmt.Sprintf("0x%02x  seq %d  %s  %d bytes",
			uint8(op), m.Message.Sequence(), m.Version, len(m.Raw))),
	)

	lines := []string{title, ""}
	// Two hex digits plus a space per byte, inside border and padding
	perLine := (width - 10) / 3
	for _, chunk := range hexLines(m.Raw, perLine) {
		lines = append(lines, HexStyle.Render("   "+chunk))
	}
	if body := strings.TrimRight(m.Body, "\n"); body != "" {
		lines = append(lines, "", BodyStyle.Render(body))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width-2).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (m *MessageView) String() string {
	return m.Render()
}

// hexLines splits data into space separated hex lines of at most perLine
// bytes.
func hexLines(data []byte, perLine int) []string {
	if perLine < 1 {
		perLine = 1
	}
	var out []string
	for len(data) > 0 {
		n := min(perLine, len(data))
		parts := make([]string, n)
		for i, b := range data[:n] {
			parts[i] = hex.EncodeToString([]byte{b})
		}
		out = append(out, strings.Join(parts, " "))
		data = data[n:]
	}
	return out
}
