package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ngclient/ngutils/pkg/headtags"
)

// MarkerAttr flags contributed elements so the watch client can find and
// replace them when the model changes.
const MarkerAttr = "data-ngutils"

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Indent is written before every element inside head.
	// Defaults to two spaces.
	Indent string

	// Mark adds MarkerAttr to every contributed element.
	Mark bool
}

// Renderer writes contributed tags as HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// voidElements never carry content or a closing tag.
var voidElements = map[string]bool{
	"base": true,
	"link": true,
	"meta": true,
}

// RenderHead writes each contributed tag on its own line.
// Tags with invalid names are skipped.
func (r *Renderer) RenderHead(w io.Writer, tags []headtags.ContributedTag) error {
	for i := range tags {
		if err := r.renderTag(w, &tags[i]); err != nil {
			return err
		}
	}
	return nil
}

// RenderHeadString renders contributed tags to a string.
func (r *Renderer) RenderHeadString(tags []headtags.ContributedTag) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderHead(&buf, tags); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) renderTag(w io.Writer, tag *headtags.ContributedTag) error {
	if !headtags.ValidName(tag.TagName) {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s<%s", r.config.Indent, tag.TagName); err != nil {
		return err
	}

	for _, a := range tag.Attrs {
		if !headtags.ValidName(a.Name) {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Name, escapeAttr(a.Value)); err != nil {
			return err
		}
	}

	if r.config.Mark {
		if _, err := w.Write([]byte(" " + MarkerAttr)); err != nil {
			return err
		}
	}

	end := ">\n"
	if !voidElements[tag.TagName] {
		end = "></" + tag.TagName + ">\n"
	}
	_, err := io.WriteString(w, end)
	return err
}
