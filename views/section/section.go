// Package section renders the read-only data panels: a title, the preview or
// full list, a show more / show less hint and the panel's own error.
package section

import (
	"fmt"
	"strings"

	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/styles"

	"github.com/charmbracelet/lipgloss"
)

// Options control how a section is drawn.
type Options struct {
	Title   string
	Empty   string // shown when the loaded list has no items
	Focused bool   // the toggle key acts on this section
	Spinner string
	Key     string // toggle key named in the hint, "m" when unset
}

// Render draws v with one line per visible item.
func Render[T any](o Options, v panel.View[T], line func(T) string) string {
	title := styles.TitleStyle.Render(o.Title)
	if o.Focused {
		title = lipgloss.NewStyle().Foreground(styles.CPink).Bold(true).Render("▶ " + o.Title)
	}
	if v.Total > 0 {
		title += styles.Muted(fmt.Sprintf("  (%d)", v.Total))
	}

	lines := []string{title}
	switch {
	case v.Loading && len(v.Items) == 0:
		lines = append(lines, o.Spinner+" loading…")
	case v.Err != nil:
		lines = append(lines, styles.WarnStyle.Render("⚠ "+v.Err.Error()))
	case !v.Loaded:
		lines = append(lines, styles.Muted("Not loaded yet."))
	case len(v.Items) == 0:
		empty := o.Empty
		if empty == "" {
			empty = "Nothing found."
		}
		lines = append(lines, styles.Muted(empty))
	default:
		for _, it := range v.Items {
			lines = append(lines, line(it))
		}
		if v.Loading {
			lines = append(lines, o.Spinner+" refreshing…")
		}
	}

	if v.CanToggle && v.Err == nil {
		key := o.Key
		if key == "" {
			key = "m"
		}
		hint := "show more"
		if v.Expanded {
			hint = "show less"
		} else {
			hint += fmt.Sprintf(" (%d hidden)", v.Total-len(v.Items))
		}
		lines = append(lines, styles.Key(key)+" "+styles.Muted(hint))
	}

	return strings.Join(lines, "\n")
}
