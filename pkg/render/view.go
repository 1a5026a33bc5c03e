// Package render draws loaded recipes for a terminal.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/foodrandom/recipebox/pkg/loader"
)

// View binds load results to an output stream.
// It is not safe for concurrent use; bind from the looper only.
type View struct {
	out    io.Writer
	images ImageRenderer
}

// NewView creates a view writing to out. Preview images go through images.
func NewView(out io.Writer, images ImageRenderer) *View {
	return &View{out: out, images: images}
}

// Bind renders result. Absence and failure each get their own message, so a reader
// can tell "no such recipe" apart from a broken store.
func (v *View) Bind(ctx context.Context, result loader.Result) error {
	switch result.Outcome() {
	case loader.OutcomeNotFound:
		_, err := fmt.Fprintf(v.out, "No such recipe: %d\n", result.ID)
		return err
	case loader.OutcomeFailed:
		_, err := fmt.Fprintf(v.out, "Could not load recipe %d: %v\n", result.ID, result.Err)
		return err
	}

	rec := result.Recipe
	var b strings.Builder
	b.WriteString(rec.Name + "\n")
	b.WriteString(strings.Repeat("=", max(utf8.RuneCountInString(rec.Name), 1)) + "\n")
	if _, err := io.WriteString(v.out, b.String()); err != nil {
		return err
	}

	if url := rec.PreviewURL(); url != "" {
		if err := v.images.Render(ctx, url, v.out); err != nil {
			return err
		}
	} else if _, err := io.WriteString(v.out, "Preview: (none)\n"); err != nil {
		return err
	}

	b.Reset()
	b.WriteString("Ingredients:\n")
	if len(rec.Ingredients) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, item := range rec.Ingredients {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, item)
	}
	_, err := io.WriteString(v.out, b.String())
	return err
}
