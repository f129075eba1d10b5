package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/models"
)

const emptyPeriods = "Nenhum período registrado."

// periodLine renders one period as a single row of the period list.
func periodLine(n int, p models.Period, opts formatter.Options) string {
	return fmt.Sprintf("%3d. %s → %s  %s",
		n,
		formatter.FormatDatetime(p.StartTime, opts),
		formatter.FormatDatetime(p.EndTime, opts),
		styles.ok.Render(formatter.FormatTime(p.Duration)),
	)
}

// renderPeriods renders the viewport content for periods, oldest first.
func renderPeriods(periods []models.Period, opts formatter.Options) string {
	if len(periods) == 0 {
		return styles.help.Render(emptyPeriods)
	}

	lines := make([]string, len(periods))
	for i, p := range periods {
		lines[i] = periodLine(i+1, p, opts)
	}
	return strings.Join(lines, "\n")
}
