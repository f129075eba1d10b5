// package formatter converts millisecond durations to clock form and exports recorded periods as a boletim (plain text or Markdown)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/boletim/internal/models"
	"github.com/desertthunder/boletim/internal/shared"
)

// DefaultDatetimeLayout renders period boundaries as day/month/year, 24h clock.
const DefaultDatetimeLayout = "02/01/2006, 15:04:05"

// TimeParts is a millisecond count split into clock components.
//
// Hours is unbounded; Minutes and Seconds are in [0, 59].
type TimeParts struct {
	Hours   int64
	Minutes int64
	Seconds int64
}

// CalculateTime splits ms into hours, minutes and seconds, truncating any remainder.
//
// Negative input is treated as zero.
func CalculateTime(ms int64) TimeParts {
	if ms < 0 {
		ms = 0
	}
	return TimeParts{
		Hours:   ms / 3_600_000,
		Minutes: (ms / 60_000) % 60,
		Seconds: (ms / 1000) % 60,
	}
}

// String renders the parts as HH:MM:SS with each field padded to two digits.
func (p TimeParts) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", p.Hours, p.Minutes, p.Seconds)
}

// FormatTime renders ms as HH:MM:SS.
func FormatTime(ms int64) string {
	return CalculateTime(ms).String()
}

// Options controls how exported datetimes are rendered.
type Options struct {
	Layout   string
	Location *time.Location
}

func (o Options) datetime(t time.Time) string {
	layout := o.Layout
	if layout == "" {
		layout = DefaultDatetimeLayout
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layout)
}

// FormatDatetime renders t with the layout and location in opts.
func FormatDatetime(t time.Time, opts Options) string {
	return opts.datetime(t)
}

// ExportToText renders periods as the plain-text boletim: one block per period followed by the grand total.
func ExportToText(periods []models.Period, opts Options) []byte {
	var buf bytes.Buffer

	for i, period := range periods {
		fmt.Fprintf(&buf, "Período %d:\n", i+1)
		fmt.Fprintf(&buf, "Início: %s\n", opts.datetime(period.StartTime))
		fmt.Fprintf(&buf, "Fim: %s\n", opts.datetime(period.EndTime))
		fmt.Fprintf(&buf, "Duração: %s\n\n", FormatTime(period.Duration))
	}

	fmt.Fprintf(&buf, "Tempo Total: %s", FormatTime(models.TotalDuration(periods)))
	return buf.Bytes()
}

// ExportToMarkdown renders periods as a Markdown table with the total in the footer.
func ExportToMarkdown(periods []models.Period, opts Options) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Boletim\n\n")
	buf.WriteString("| Período | Início | Fim | Duração |\n")
	buf.WriteString("|---:|---|---|---:|\n")
	for i, period := range periods {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n",
			i+1, opts.datetime(period.StartTime), opts.datetime(period.EndTime), FormatTime(period.Duration))
	}

	fmt.Fprintf(&buf, "\n**Tempo Total**: %s\n", FormatTime(models.TotalDuration(periods)))
	return buf.Bytes()
}

// Format names an export format.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: export format %q", shared.ErrInvalidFlag, s)
	}
}

// Render renders periods in the given format.
func Render(periods []models.Period, format Format, opts Options) []byte {
	if format == FormatMarkdown {
		return ExportToMarkdown(periods, opts)
	}
	return ExportToText(periods, opts)
}

// ExportFilename returns "boletim-<ISO timestamp>.<ext>" for now.
//
// The timestamp has millisecond resolution so successive exports do not collide.
func ExportFilename(now time.Time, format Format) string {
	if format == "" {
		format = FormatText
	}
	return fmt.Sprintf("boletim-%s.%s", shared.FormatISO(now), format)
}

// WriteExport writes the boletim into dir and returns the file path.
//
// Returns [shared.ErrNoPeriods] when there is nothing to export.
func WriteExport(periods []models.Period, dir string, now time.Time, format Format, opts Options) (string, error) {
	if len(periods) == 0 {
		return "", shared.ErrNoPeriods
	}
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, ExportFilename(now, format))
	if err := os.WriteFile(path, Render(periods, format, opts), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// WriteTextExport writes the plain-text boletim into dir.
func WriteTextExport(periods []models.Period, dir string, now time.Time, opts Options) (string, error) {
	return WriteExport(periods, dir, now, FormatText, opts)
}
