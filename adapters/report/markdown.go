package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fellingdate/domain/dendro"
)

// Markdown renders report rows as a markdown table with an optional
// diagnostics section.
func Markdown(title string, rows []Row, diags []dendro.Diagnostic) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	sb.WriteString("| series | lower | upper | mass | type | agreement |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n", r.SeriesID, r.Lower, r.Upper, r.Mass, r.Kind, r.Agreement)
	}
	if len(diags) > 0 {
		sb.WriteString("\n### Diagnostics\n\n")
		for _, d := range diags {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
	}
	return sb.String()
}

// HTML converts a markdown report to a standalone HTML fragment.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
