package script

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"

	"github.com/kdougan/js-notebook/internal/core/environment"
)

// Prelude is the block header that re-creates inherited names as local bindings.
type Prelude struct {
	Text string
	// Names are the identifiers bound, in order.
	Names []string
	// Skipped lists inherited names that sanitize to nothing and were left out.
	Skipped []string
}

// BuildPrelude renders each entry as `let <identifier> = <literal>;`. Identifiers come
// from SanitizeIdentifier and literals are canonical JSON. When two names sanitize to
// the same identifier the later value wins and keeps the earlier position.
func BuildPrelude(entries []environment.Entry) (*Prelude, error) {
	p := &Prelude{}
	literals := make(map[string]string, len(entries))
	for _, e := range entries {
		id := SanitizeIdentifier(e.Name)
		if id == "" {
			p.Skipped = append(p.Skipped, e.Name)
			continue
		}
		lit, err := Literal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", e.Name, err)
		}
		if _, seen := literals[id]; !seen {
			p.Names = append(p.Names, id)
		}
		literals[id] = lit
	}

	lines := make([]string, len(p.Names))
	for i, id := range p.Names {
		lines[i] = fmt.Sprintf("let %s = %s;", id, literals[id])
	}
	p.Text = strings.Join(lines, "\n")
	return p, nil
}

// Literal renders v as RFC 8785 canonical JSON, which is also a valid script literal.
func Literal(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}

// Assemble joins a prelude and a transformed block into one self-contained program.
// The program always ends by evaluating result, so a block whose last line mutates
// result still yields the binding rather than the mutation's value.
func Assemble(prelude *Prelude, t *Transformed) string {
	text := ""
	if prelude != nil {
		text = prelude.Text
	}
	return text + "\n" + t.Script + "\n" + ResultName + ";"
}
