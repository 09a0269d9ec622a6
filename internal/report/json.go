package report

import (
	"encoding/json"
	"io"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Format selects a report writer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r *core.Report) error {
	if format == FormatJSON {
		return WriteJSON(w, r)
	}
	return NewText(w).Report(r)
}
