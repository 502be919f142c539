// Package render writes the client page model as HTML.
//
// Contributed header tags are rendered one element per line, with attribute
// values escaped and invalid element or attribute names dropped:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderHeadString(svc.HeaderTags())
//
// RenderPage produces a full document whose head carries the contributed
// tags and whose body holds the form container with the form's style
// classes:
//
//	page := render.PageData{
//	    Title:     "Orders",
//	    Tags:      svc.HeaderTags(),
//	    FormName:  "orders",
//	    FormClass: class,
//	    WatchURL:  "/api/clients/abc/watch",
//	}
//	err := renderer.RenderPage(w, page)
//
// With a WatchURL the page embeds WatchClientScript, which applies every
// model pushed over the watch feed. Set RendererConfig.Mark so the script
// can tell contributed elements apart from the rest of the head.
package render
