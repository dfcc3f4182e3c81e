// Package turbo builds Turbo-Stream envelopes: small HTML fragments that tell
// the browser to patch one element of the current page.
package turbo

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

// ContentType is the media type Turbo expects for stream responses.
const ContentType = "text/vnd.turbo-stream.html"

// Action is a Turbo-Stream DOM operation.
type Action string

const (
	Append  Action = "append"
	Prepend Action = "prepend"
	Replace Action = "replace"
	Update  Action = "update"
	Remove  Action = "remove"
	Before  Action = "before"
	After   Action = "after"
)

var (
	ErrUnknownAction   = errors.New("turbo: unknown action")
	ErrMissingTarget   = errors.New("turbo: target is required")
	ErrUnexpectedBody  = errors.New("turbo: remove streams carry no template")
	ErrMissingTemplate = errors.New("turbo: template is required")
)

// Stream is one <turbo-stream> element. Template is trusted HTML that is
// written verbatim inside the <template> tag.
type Stream struct {
	Action   Action
	Target   string
	Template string
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case Append, Prepend, Replace, Update, Remove, Before, After:
		return true
	}
	return false
}

// Validate checks the action, the target and the template presence.
func (s Stream) Validate() error {
	if !s.Action.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownAction, s.Action)
	}
	if strings.TrimSpace(s.Target) == "" {
		return fmt.Errorf("%w (%s)", ErrMissingTarget, s.Action)
	}
	if s.Action == Remove {
		if strings.TrimSpace(s.Template) != "" {
			return fmt.Errorf("%w (target %s)", ErrUnexpectedBody, s.Target)
		}
		return nil
	}
	if strings.TrimSpace(s.Template) == "" {
		return fmt.Errorf("%w (%s %s)", ErrMissingTemplate, s.Action, s.Target)
	}
	return nil
}

// Write validates every stream and writes them in order, one per line.
// Nothing is written when any stream is invalid.
func Write(w io.Writer, streams ...Stream) error {
	for _, s := range streams {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	var b strings.Builder
	for _, s := range streams {
		b.WriteString(`<turbo-stream action="`)
		b.WriteString(string(s.Action))
		b.WriteString(`" target="`)
		b.WriteString(html.EscapeString(s.Target))
		b.WriteString(`">`)
		if s.Action != Remove {
			b.WriteString("<template>")
			b.WriteString(s.Template)
			b.WriteString("</template>")
		}
		b.WriteString("</turbo-stream>\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Render is Write into a byte slice.
func Render(streams ...Stream) ([]byte, error) {
	var b strings.Builder
	if err := Write(&b, streams...); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
