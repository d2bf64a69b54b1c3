// Package generate turns an ASCII layout sketch into a runnable form
// program. Sketches use rounded boxes for containers, [Label] for
// buttons, [____] or [hint...] for inputs, and box-framed text for
// static labels. The emitted source follows the same conventions the
// validation pipeline enforces, so generator output validates clean.
package generate

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies a parsed widget.
type Kind string

const (
	KindButton Kind = "button"
	KindInput  Kind = "input"
	KindStatic Kind = "static"
)

// Widget is one element recognized in the sketch.
type Widget struct {
	Kind        Kind
	ID          string
	Label       string
	Placeholder string
	Row         int
	Col         int
	Width       int
}

// Container marks a box delimiter line.
type Container struct {
	Row   int
	Width int
	Start bool
}

// Layout is the parsed sketch.
type Layout struct {
	Containers []Container
	Widgets    []Widget
	Lines      []string
}

var (
	boxPattern          = regexp.MustCompile(`╭(─+)╮|╰(─+)╯`)
	buttonPattern       = regexp.MustCompile(`\[([A-Za-z][A-Za-z0-9 ]*[A-Za-z0-9])\]`)
	inputPattern        = regexp.MustCompile(`\[([_.]+[ _.]*[_.]*)\]`)
	labeledInputPattern = regexp.MustCompile(`\[([A-Za-z][A-Za-z0-9]*[_.]+)\]`)
	boxedTextPattern    = regexp.MustCompile(`[│|]([^│|]+)[│|]`)
)

// ParseSketch scans the sketch line by line and collects containers and
// widgets. Widget IDs are numbered per kind in reading order.
func ParseSketch(sketch string) *Layout {
	lines := strings.Split(sketch, "\n")
	layout := &Layout{Lines: lines}
	counters := make(map[Kind]int)

	next := func(kind Kind, prefix string) string {
		counters[kind]++
		return prefix + "_" + strconv.Itoa(counters[kind])
	}

	for row, line := range lines {
		if m := boxPattern.FindStringSubmatch(line); m != nil {
			width := len([]rune(m[1]))
			if width == 0 {
				width = len([]rune(m[2]))
			}
			layout.Containers = append(layout.Containers, Container{
				Row:   row,
				Width: width,
				Start: strings.Contains(line, "╭"),
			})
		}

		for _, m := range buttonPattern.FindAllStringSubmatch(line, -1) {
			label := m[1]
			layout.Widgets = append(layout.Widgets, Widget{
				Kind:  KindButton,
				ID:    next(KindButton, "btn"),
				Label: label,
				Row:   row,
				Col:   strings.Index(line, "["+label+"]"),
				Width: len(label) + 2,
			})
		}

		for _, m := range inputPattern.FindAllStringSubmatch(line, -1) {
			fill := m[1]
			placeholder := strings.TrimSpace(strings.NewReplacer("_", "", ".", "").Replace(fill))
			layout.Widgets = append(layout.Widgets, Widget{
				Kind:        KindInput,
				ID:          next(KindInput, "input"),
				Placeholder: placeholder,
				Row:         row,
				Col:         strings.Index(line, "["+fill+"]"),
				Width:       len(fill) + 2,
			})
		}

		for _, m := range labeledInputPattern.FindAllStringSubmatch(line, -1) {
			hint := m[1]
			placeholder := strings.TrimRight(hint, "_.")
			layout.Widgets = append(layout.Widgets, Widget{
				Kind:        KindInput,
				ID:          next(KindInput, "input"),
				Placeholder: placeholder,
				Row:         row,
				Col:         strings.Index(line, "["+hint+"]"),
				Width:       len(hint) + 2,
			})
		}

		for _, m := range boxedTextPattern.FindAllStringSubmatch(line, -1) {
			text := strings.TrimSpace(m[1])
			if text == "" || strings.HasPrefix(text, "[") || strings.HasSuffix(text, "]") {
				continue
			}
			layout.Widgets = append(layout.Widgets, Widget{
				Kind:  KindStatic,
				ID:    next(KindStatic, "static"),
				Label: text,
				Row:   row,
				Col:   strings.Index(line, text),
				Width: len([]rune(text)),
			})
		}
	}
	return layout
}
