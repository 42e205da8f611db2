package flows

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/fulmenhq/manifold/pkg/manifest"
)

const maxURLColumn = 60

// RenderInstallerTable formats the installer entries of a set as an aligned
// text table for command output.
func RenderInstallerTable(m manifest.InstallerManifest) string {
	headers := []string{"Architecture", "Type", "Sha256", "InstallerUrl"}
	rows := make([][]string, 0, len(m.Installers))
	for _, inst := range m.Installers {
		rows = append(rows, []string{
			inst.Architecture,
			derefFallback(inst.InstallerType, m.InstallerType),
			shortHash(inst.InstallerSha256),
			truncate(inst.InstallerURL, maxURLColumn),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			sb.WriteString(cell)
			if i < len(cells)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+2))
			}
		}
		sb.WriteString("\n")
	}
	writeRow(headers)
	separators := make([]string, len(headers))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	writeRow(separators)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefFallback(p, fallback *string) string {
	if v := deref(p); v != "" {
		return v
	}
	return deref(fallback)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12] + "…"
	}
	return h
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
