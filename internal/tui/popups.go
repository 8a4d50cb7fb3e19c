package tui

import (
	"fmt"
	"strings"

	"go.dot.industries/layers/internal/tui/bridge"
)

// renderHelpPopup returns the help overlay content.
func (m model) renderHelpPopup() string {
	helpBindings := []struct{ key, desc string }{
		{"j/k or ↑/↓", "Navigate within current pane"},
		{"Tab", "Switch focus between files and settings"},
		{"/", "Enter filter mode (type to filter keys)"},
		{"Enter", "Show value and override chain"},
		{"x", "Show conflicted keys only"},
		{"p", "Show merge problems"},
		{"c", "Copy selected value to clipboard"},
		{"r", "Merge the chain again"},
		{"?", "Toggle this help"},
		{"Esc", "Close popup / exit filter mode"},
		{"q / Ctrl+C", "Quit"},
	}

	var b strings.Builder
	for _, h := range helpBindings {
		key := styleKey.Width(14).Render(h.key)
		desc := styleDesc.Render(h.desc)
		b.WriteString(key + " " + desc + "\n")
	}

	return stylePopup.
		Width(56).
		Render(
			styleTitle.Render("Keyboard Shortcuts") + "\n\n" +
				b.String(),
		)
}

// renderDetailPopup returns the key detail overlay.
func (m model) renderDetailPopup() string {
	if m.snapshot == nil {
		return ""
	}

	value, ok := m.snapshot.Settings[m.detailKey]
	content := styleNormal.Render(bridge.PrettyValue(value))
	if !ok {
		content = styleMuted.Render("Key is no longer set")
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("Setting") + "\n\n")
	b.WriteString("Key:   " + styleKey.Render(m.detailKey) + "\n\n")
	b.WriteString("Value:\n" + content + "\n")

	if prov, found := m.snapshot.Provenance[m.detailKey]; found {
		b.WriteString("\nSet by:\n")
		for _, line := range m.bridge.OverrideLines(prov) {
			b.WriteString(styleDim.Render("  "+line) + "\n")
		}
		if prov.Conflicted() {
			b.WriteString(styleWarningText.Render(fmt.Sprintf("  overridden %d time(s)", len(prov.Overrides))) + "\n")
		}
		if segs := m.bridge.SegmentLines(prov); len(segs) > 0 {
			b.WriteString("\nArray segments:\n")
			for _, line := range segs {
				b.WriteString(styleDim.Render("  "+line) + "\n")
			}
		}
	}

	b.WriteString("\n" + styleMuted.Render("c:copy  esc:close"))

	return stylePopup.
		Width(min(m.width-10, 80)).
		Render(b.String())
}

// renderProblemsPopup lists the diagnostics of the last merge.
func (m model) renderProblemsPopup() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Merge Problems") + "\n\n")

	if m.snapshot == nil || len(m.snapshot.Diagnostics) == 0 {
		b.WriteString(styleMuted.Render("No problems") + "\n")
	} else {
		for _, d := range m.snapshot.Diagnostics {
			b.WriteString(styleErrorText.Render(string(d.Kind)) + " " + styleKey.Render(m.bridge.Label(d.Path)) + "\n")
			if d.Err != nil {
				b.WriteString(styleDim.Render("  "+d.Err.Error()) + "\n")
			}
		}
	}

	b.WriteString("\n" + styleMuted.Render("esc:close"))

	return stylePopup.
		Width(min(m.width-10, 80)).
		Render(b.String())
}
