package domain

import (
	"fmt"
	"strings"
)

// DetailedReport renders a fixed-width table of this result's verdicts —
// field name, each source's value, and pass/fail — supplementing the
// assertion surface's one-line failure messages. This is the harness's own
// report, not a reproduction of any venue's wire text.
func (r *ReconciliationResult) DetailedReport() string {
	const (
		fieldWidth  = 16
		valueWidth  = 14
		statusWidth = 6
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Reconciliation report for %s\n", r.CorrelationKey)
	fmt.Fprintf(&b, "%-*s | %-*s | %-*s | %-*s | %-*s\n", fieldWidth, "Field", valueWidth, "FIX", valueWidth, "MQ", valueWidth, "API", statusWidth, "Status")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", fieldWidth+valueWidth*3+statusWidth+12))

	for _, v := range r.Verdicts {
		status := "PASS"
		if !v.Match {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%-*s | %-*s | %-*s | %-*s | %-*s\n",
			fieldWidth, v.FieldName,
			valueWidth, naOr(v.FixValue),
			valueWidth, naOr(v.MqValue),
			valueWidth, naOr(v.ApiValue),
			statusWidth, status,
		)
	}

	overall := "PASS"
	if !r.Passed {
		overall = "FAIL"
	}
	fmt.Fprintf(&b, "Overall: %s\n", overall)
	return b.String()
}

func naOr(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}
