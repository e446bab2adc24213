/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/ssargent/monologreader/pkg/codec"
)

var (
	indexStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	dateStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA"))
	loggerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Italic(true)
)

// levelStyle returns the style for a Monolog level name.
func levelStyle(level string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch strings.ToUpper(level) {
	case "DEBUG":
		return style.Foreground(lipgloss.Color("#6C7086"))
	case "INFO", "NOTICE":
		return style.Foreground(lipgloss.Color("#A6E3A1"))
	case "WARNING":
		return style.Foreground(lipgloss.Color("#F9E2AF"))
	case "ERROR":
		return style.Foreground(lipgloss.Color("#F38BA8"))
	case "CRITICAL", "ALERT", "EMERGENCY":
		return style.Foreground(lipgloss.Color("#F38BA8")).Reverse(true)
	}
	return style
}

// recordLine is a single-line summary of a record with its date written in
// layout. Only the first line of a multi-line message is shown.
func recordLine(index int, rec *codec.Record, layout string) string {
	idx := indexStyle.Render(fmt.Sprintf("#%-5d", index))
	if rec == nil {
		return idx + " " + invalidStyle.Render("(record did not decode)")
	}

	date := strings.Repeat("-", len(layout))
	if rec.Date != nil {
		date = rec.Date.Format(layout)
	}

	message, _, multiline := strings.Cut(rec.Message, "\n")
	if multiline {
		message += " …"
	}

	return fmt.Sprintf("%s %s %s %s %s",
		idx,
		dateStyle.Render(date),
		levelStyle(rec.Level).Width(9).Render(rec.Level),
		loggerStyle.Render(rec.Logger),
		message,
	)
}

type jsonRecord struct {
	Index  int           `json:"index"`
	Record *codec.Record `json:"record"`
}

// writeJSONLine writes one record as a single JSON line.
func writeJSONLine(w io.Writer, index int, rec *codec.Record) error {
	data, err := json.Marshal(jsonRecord{Index: index, Record: rec})
	if err != nil {
		return fmt.Errorf("encode record %d: %w", index, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
