// Package headtags keeps track of the tags that widgets contribute to the
// document head.
//
// Contributions are keyed loosely by a matching triple (tag name, attribute
// name, attribute value): contributing again with the same triple replaces
// the earlier tag in place, while independent triples coexist in insertion
// order.
//
//	reg := headtags.NewRegistry()
//	reg.Reset()
//	headtags.SetViewport(reg, headtags.ViewportDenyZoom)
//	reg.Replace("link", "rel", "icon", headtags.MustTag("link",
//	    headtags.Attr{Name: "rel", Value: "icon"},
//	    headtags.Attr{Name: "href", Value: "/favicon.ico"},
//	))
//
// Passing a nil tag to Replace removes the matched contribution. None of the
// operations fail; a nil result means nothing matched.
package headtags
