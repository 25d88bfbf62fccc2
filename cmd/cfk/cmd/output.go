package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/corey/cfk/internal/domain/builder"
	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/libs/common"
	"github.com/corey/cfk/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorRed     = "\033[31m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// useColor is set from --color/--no-color before any command runs.
var useColor = true

// colorMode decides whether to paint. --no-color wins over --color;
// auto paints only on a terminal with NO_COLOR unset.
func colorMode(mode string, noColor, terminal bool) (bool, error) {
	var on bool
	switch mode {
	case "always":
		on = true
	case "never":
		on = false
	case "", "auto":
		on = terminal && os.Getenv("NO_COLOR") == ""
	default:
		return false, fmt.Errorf("invalid --color %q (want auto, always or never)", mode)
	}
	return on && !noColor, nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func paint(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colorReset
}

// libraryRow is the display and JSON shape of one library.
type libraryRow struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Scope       string `json:"scope"`
	Builders    int    `json:"builders"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path,omitempty"`
}

func libraryRows(libs []library.Library, builders *builder.Registry) []libraryRow {
	rows := make([]libraryRow, 0, len(libs))
	for _, lib := range libs {
		row := libraryRow{
			Name:     lib.Name(),
			State:    lib.State().String(),
			Scope:    lib.Scope().String(),
			Builders: len(builders.ByLibrary(lib.Name())),
		}
		if h, ok := lib.(*library.Handle); ok {
			row.Description = h.Description()
			row.Path = h.Path()
		}
		rows = append(rows, row)
	}
	return rows
}

func stateColor(state string) string {
	switch state {
	case library.StateInitiated.String():
		return colorGreen
	case library.StateTerminated.String():
		return colorGray
	default:
		return colorYellow
	}
}

// formatLibraries renders one line per library:
//
//	▸ 3 libraries
//	  cf3.mesh  initiated  builtin  4 builders  Mesh containers...
func formatLibraries(rows []libraryRow) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("▸ %d libraries", len(rows))) + "\n")
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Name))
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("  %s  %s  %-7s  %d builders",
			paint(colorCyan, fmt.Sprintf("%-*s", width, r.Name)),
			paint(stateColor(r.State), fmt.Sprintf("%-10s", r.State)),
			r.Scope, r.Builders))
		if r.Description != "" {
			sb.WriteString("  " + paint(colorGray, r.Description))
		}
		if r.Path != "" {
			sb.WriteString("  " + paint(colorGray, r.Path))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// builderRow is the display and JSON shape of one builder.
type builderRow struct {
	Name        string `json:"name"`
	BaseType    string `json:"base_type"`
	Library     string `json:"library"`
	Description string `json:"description,omitempty"`
}

func builderRows(bs []builder.Builder) []builderRow {
	rows := make([]builderRow, 0, len(bs))
	for _, b := range bs {
		rows = append(rows, builderRow{
			Name:        b.FullName(),
			BaseType:    b.BaseType,
			Library:     b.Library,
			Description: b.Description,
		})
	}
	return rows
}

func formatBuilders(rows []builderRow) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("▸ %d builders", len(rows))) + "\n")
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Name))
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("  %s  %s",
			paint(colorCyan, fmt.Sprintf("%-*s", width, r.Name)),
			paint(colorMagenta, "@"+r.BaseType)))
		if r.Description != "" {
			sb.WriteString("  " + paint(colorGray, r.Description))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatTree renders c and its descendants, two spaces per level, with
// properties as #key=value.
func formatTree(c component.Component) string {
	var sb strings.Builder
	component.Walk(c, func(c component.Component, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(paint(colorCyan, c.Name()))
		sb.WriteString("  " + paint(colorMagenta, c.TypeName()))
		for _, p := range c.Properties() {
			sb.WriteString("  " + paint(colorGreen, "#"+p.Key+"="+p.Value))
		}
		if l, ok := c.(*common.Link); ok {
			if _, bound := l.Property("target"); bound {
				if _, err := l.Follow(); err != nil {
					sb.WriteString("  " + paint(colorRed, "✗ dangling"))
				}
			}
		}
		sb.WriteString("\n")
		return true
	})
	return sb.String()
}

func formatHistory(profile string, entries []ports.JournalEntry) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("▸ %d events", len(entries))) +
		paint(colorGray, " │ profile "+profile) + "\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s  %5d  %-9s  %s  %s",
			paint(colorGray, e.At.Local().Format(time.DateTime)),
			e.Seq, e.Action,
			paint(colorCyan, e.Library),
			paint(stateColor(e.State), e.State)))
		if e.Error != "" {
			sb.WriteString("  " + paint(colorRed, e.Error))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatProfiles(db string, profiles []string) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("▸ %d profiles", len(profiles))) +
		paint(colorGray, " │ "+db) + "\n")
	for _, p := range profiles {
		sb.WriteString("  " + paint(colorCyan, p) + "\n")
	}
	return sb.String()
}

// sortedSnapshot orders a per-library snapshot by library name.
func sortedSnapshot(snap map[string]ports.JournalEntry) []ports.JournalEntry {
	out := make([]ports.JournalEntry, 0, len(snap))
	for _, e := range snap {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Library < out[j].Library })
	return out
}
