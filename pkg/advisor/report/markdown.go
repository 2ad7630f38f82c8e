package report

import (
	"fmt"
	"strings"

	"ai-shopscout-be/pkg/advisor/requirement"
	"ai-shopscout-be/pkg/store"
)

// Render produces the markdown research report for a session. It renders
// whatever the session holds; callers decide whether the session is far
// enough along to be worth rendering.
func Render(session *store.SessionState) string {
	var b strings.Builder

	b.WriteString("# Product Research Report\n\n")

	b.WriteString("## Your Requirements\n\n")
	b.WriteString(requirement.Describe(session.Requirement))
	b.WriteString("\n")

	if len(session.SearchQueries) > 0 {
		b.WriteString("\n## Searches Performed\n\n")
		for i, q := range session.SearchQueries {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
		}
	}

	if session.Recommendation != "" {
		b.WriteString("\n## Recommendation\n\n")
		b.WriteString(session.Recommendation)
		b.WriteString("\n")
	}

	if session.Report != nil {
		writeRanking(&b, session.Report)
	}

	if session.Research != nil {
		writeResearch(&b, session.Research)
	}

	return b.String()
}

func writeRanking(b *strings.Builder, report *store.AnalysisReport) {
	if len(report.Entries) == 0 {
		return
	}

	b.WriteString("\n## Ranked Candidates\n\n")
	if report.Degraded {
		b.WriteString("_Ranked by price only; detailed analysis was unavailable._\n\n")
	}

	b.WriteString("| Rank | Product | Score | Verdict |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, e := range report.Entries {
		score := "-"
		if e.Score > 0 {
			score = fmt.Sprintf("%.0f", e.Score)
		}
		verdict := e.Verdict
		if verdict == "" {
			verdict = "-"
		}
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", e.Rank, e.Name, score, verdict))
	}

	for _, e := range report.Entries {
		if len(e.Pros) == 0 && len(e.Cons) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n### %d. %s\n\n", e.Rank, e.Name))
		for _, p := range e.Pros {
			b.WriteString("- Pro: " + p + "\n")
		}
		for _, c := range e.Cons {
			b.WriteString("- Con: " + c + "\n")
		}
	}

	if report.Summary != "" {
		b.WriteString("\n")
		b.WriteString(report.Summary)
		b.WriteString("\n")
	}
}

func writeResearch(b *strings.Builder, research *store.ResearchOutput) {
	if len(research.Considerations) > 0 {
		b.WriteString("\n## Things You May Not Have Considered\n\n")
		for _, item := range research.Considerations {
			b.WriteString("- **" + item.Label + "**")
			if item.Rationale != "" {
				b.WriteString(": " + item.Rationale)
			}
			b.WriteString("\n")
			if item.Guidance != "" {
				b.WriteString("  - " + item.Guidance + "\n")
			}
		}
	}

	if research.MarketSummary != "" {
		b.WriteString("\n## Market Overview\n\n")
		b.WriteString(research.MarketSummary)
		b.WriteString("\n")
	}
}
