package generate

import (
	"fmt"
	"strconv"
	"strings"
)

// Options tunes code emission.
type Options struct {
	// Title becomes a leading note above the form fields
	Title string
}

// Code renders the layout as a complete main package. The program
// constructs its form and exits early when the smoke variable is set,
// which is how the sandbox tier drives it without a terminal.
func Code(layout *Layout, opts *Options) string {
	if opts == nil {
		opts = &Options{}
	}

	var fields []string
	if opts.Title != "" {
		fields = append(fields, fmt.Sprintf("huh.NewNote().Title(%s)", strconv.Quote(opts.Title)))
	}
	for _, w := range layout.Widgets {
		switch w.Kind {
		case KindButton:
			fields = append(fields, fmt.Sprintf("huh.NewConfirm().Key(%s).Title(%s)",
				strconv.Quote(w.ID), strconv.Quote(w.Label)))
		case KindInput:
			field := fmt.Sprintf("huh.NewInput().Key(%s)", strconv.Quote(w.ID))
			if w.Placeholder != "" {
				field += fmt.Sprintf(".Placeholder(%s)", strconv.Quote(w.Placeholder))
			}
			fields = append(fields, field)
		case KindStatic:
			fields = append(fields, fmt.Sprintf("huh.NewNote().Title(%s)", strconv.Quote(w.Label)))
		}
	}
	if len(fields) == 0 {
		fields = append(fields, `huh.NewNote().Title("Empty form")`)
	}

	var b strings.Builder
	b.WriteString("package main\n\n")
	b.WriteString("import (\n")
	b.WriteString("\t\"fmt\"\n")
	b.WriteString("\t\"os\"\n\n")
	b.WriteString("\t\"github.com/charmbracelet/huh\"\n")
	b.WriteString(")\n\n")
	b.WriteString("func main() {\n")
	b.WriteString("\tform := huh.NewForm(huh.NewGroup(\n")
	for _, field := range fields {
		b.WriteString("\t\t" + field + ",\n")
	}
	b.WriteString("\t))\n")
	b.WriteString("\tif os.Getenv(\"TUIVET_SMOKE\") != \"\" {\n")
	b.WriteString("\t\tfmt.Println(\"form constructed\")\n")
	b.WriteString("\t\treturn\n")
	b.WriteString("\t}\n")
	b.WriteString("\tif err := form.Run(); err != nil {\n")
	b.WriteString("\t\tfmt.Fprintln(os.Stderr, err)\n")
	b.WriteString("\t\tos.Exit(1)\n")
	b.WriteString("\t}\n")
	b.WriteString("}\n")
	return b.String()
}

// FromSketch parses and emits in one step.
func FromSketch(sketch string, opts *Options) string {
	return Code(ParseSketch(sketch), opts)
}
