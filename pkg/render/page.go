package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ngclient/ngutils/pkg/headtags"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Title is the page title
	Title string

	// Lang is the language attribute for the html element
	// Defaults to "en" if not specified
	Lang string

	// Tags are the contributed header tags, in render order
	Tags []headtags.ContributedTag

	// FormName names the form rendered in the body container
	FormName string

	// FormClass is the space separated class list of the form
	FormClass string

	// Body is trusted HTML placed inside the form container
	Body string

	// WatchURL is the WebSocket endpoint of the watch feed.
	// When set, the watch client script is injected.
	WatchURL string
}

const defaultViewport = `<meta name="viewport" content="width=device-width, initial-scale=1">`

// DefaultMarkerAttr flags the built-in viewport on watched pages. The watch
// client drops it while a contributed viewport is present.
const DefaultMarkerAttr = "data-ngutils-default"

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}

	if err := r.renderHead(w, page); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}
	if err := r.renderFormContainer(w, page); err != nil {
		return err
	}
	if page.WatchURL != "" {
		if _, err := fmt.Fprintf(w, `<script data-watch="%s">%s</script>`+"\n", escapeAttr(page.WatchURL), WatchClientScript); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s<meta charset=\"utf-8\">\n", r.config.Indent); err != nil {
		return err
	}

	// A contributed viewport wins over the built-in one.
	if !hasViewport(page.Tags) {
		tag := defaultViewport
		if page.WatchURL != "" {
			tag = strings.TrimSuffix(tag, ">") + " " + DefaultMarkerAttr + ">"
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", r.config.Indent, tag); err != nil {
			return err
		}
	}

	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "%s<title>%s</title>\n", r.config.Indent, escapeHTML(page.Title)); err != nil {
			return err
		}
	}

	if err := r.RenderHead(w, page.Tags); err != nil {
		return err
	}

	_, err := io.WriteString(w, "</head>\n")
	return err
}

func (r *Renderer) renderFormContainer(w io.Writer, page PageData) error {
	class := "svy-form"
	if page.FormClass != "" {
		class += " " + page.FormClass
	}

	if _, err := fmt.Fprintf(w, `<div class="%s"`, escapeAttr(class)); err != nil {
		return err
	}
	if page.FormName != "" {
		if _, err := fmt.Fprintf(w, ` data-form="%s"`, escapeAttr(page.FormName)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, ">%s</div>\n", page.Body)
	return err
}

func hasViewport(tags []headtags.ContributedTag) bool {
	for i := range tags {
		if tags[i].TagName == "meta" && tags[i].HasAttr("name", "viewport") {
			return true
		}
	}
	return false
}
