package tui

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/hyprscribe/internal/provider"
)

// ModelList renders every provider's models. installed reports whether a
// local model is on disk. The fixed model of each provider is marked.
func ModelList(providers []provider.Provider, installed func(id string) bool) string {
	var b strings.Builder
	for _, p := range providers {
		fmt.Fprintf(&b, "\n%s\n", StyleProvider.Render(p.DisplayName()+" ("+p.Name()+")"))

		active := p.Model().ID
		for _, m := range p.Models() {
			b.WriteString(modelLine(m, m.ID == active, installed))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func modelLine(m provider.Model, active bool, installed func(string) bool) string {
	prefix := "  "
	if m.Local {
		if installed(m.ID) {
			prefix = "  " + StyleSuccess.Render("[x]")
		} else {
			prefix = "  [ ]"
		}
	}

	id := m.ID
	if active {
		id = StyleActive.Render(m.ID + " *")
	}
	line := prefix + " " + id

	if m.Description != "" {
		line += " - " + m.Description
	}
	if m.LocalInfo != nil && m.LocalInfo.Size != "" {
		line += " " + StyleMuted.Render("["+m.LocalInfo.Size+"]")
	}
	return line
}
