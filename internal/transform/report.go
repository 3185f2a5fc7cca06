package transform

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gookit/color"
)

func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].File != vs[j].File {
			return vs[i].File < vs[j].File
		}
		if vs[i].Line != vs[j].Line {
			return vs[i].Line < vs[j].Line
		}
		return vs[i].Column < vs[j].Column
	})
}

// WriteStylish writes violations grouped by file:
//
//	js/plugins.js
//	  line 3  col 12  Trailing whitespace.  (no-trailing-spaces)
//
//	✖ 1 problem
func WriteStylish(w io.Writer, vs []Violation) error {
	sorted := append([]Violation(nil), vs...)
	sortViolations(sorted)

	var sb strings.Builder
	current := ""
	for i, v := range sorted {
		if i == 0 || v.File != current {
			if i > 0 {
				sb.WriteString("\n")
			}
			current = v.File
			sb.WriteString(color.OpUnderscore.Sprint(v.File) + "\n")
		}

		pos := ""
		if v.Line > 0 {
			pos = fmt.Sprintf("line %d  col %d", v.Line, v.Column)
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			color.Gray.Sprint(pos),
			color.Cyan.Sprint(v.Message),
			color.Gray.Sprint("("+v.Rule+")"),
		))
	}

	noun := "problems"
	if len(sorted) == 1 {
		noun = "problem"
	}
	sb.WriteString("\n" + color.Red.Sprintf("✖ %d %s", len(sorted), noun) + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
