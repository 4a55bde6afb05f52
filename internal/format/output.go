package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"

	"scout-cli/internal/model"
)

// Write writes output in the requested format.
//
// Supported formats:
// - table (default)
// - json
func Write(w io.Writer, conns []model.Connection, format string, pretty bool) error {
	switch format {
	case "", "table":
		return WriteTable(w, conns)
	case "json":
		return WriteJSON(w, conns, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTable writes an aligned plain-text table (scripts, narrow pipes).
func WriteTable(w io.Writer, conns []model.Connection) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tROLE\tSTATUS\tUPDATED")
	for _, c := range conns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			Truncate(c.CompanyName, 30),
			Truncate(c.RoleTitle, 30),
			c.Status,
			RelativeTime(c.UpdatedAt),
		)
	}
	return tw.Flush()
}

// Truncate cuts s to max runes, appending an ellipsis when it cut anything.
func Truncate(s string, max int) string {
	if max <= 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}
