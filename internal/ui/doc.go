// Package ui renders kpowire command output in the terminal.
//
// Components follow a "run once and exit" pattern: they return styled
// strings built with Lipgloss and are printed through a Printer.
//
//   - Header: command banner showing the operation and its parameters
//   - MessageView: one message with opcode, sequence id, hex and document
//   - Result: success, warning and failure boxes; failures carry
//     troubleshooting tips chosen by protocol error kind
//   - Tables: the opcode list, capture statistics and codec metrics
//
// RunWithProgress is the one live component. It drives a Bubble Tea program
// with a progress bar while capture files are validated, and is only used
// when stdout is a terminal.
//
// Logging is controlled through KPOWIRE_LOG_LEVEL. When unset, zap logging
// is silent so the styled output stays clean. SetColor(false) switches every
// renderer to plain ASCII.
package ui
