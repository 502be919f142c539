package headtags

// ViewportMode selects the viewport meta content for mobile-aware sites.
type ViewportMode int

const (
	ViewportDefault     ViewportMode = 0
	ViewportDenyZoom    ViewportMode = 1
	ViewportDenyZoomOut ViewportMode = 2
	ViewportDenyZoomIn  ViewportMode = 3
)

// String returns the mode name.
func (m ViewportMode) String() string {
	switch m {
	case ViewportDenyZoom:
		return "deny-zoom"
	case ViewportDenyZoomOut:
		return "deny-zoom-out"
	case ViewportDenyZoomIn:
		return "deny-zoom-in"
	default:
		return "default"
	}
}

// ParseViewportMode maps a mode name back to its value.
func ParseViewportMode(s string) (ViewportMode, bool) {
	switch s {
	case "default", "":
		return ViewportDefault, true
	case "deny-zoom":
		return ViewportDenyZoom, true
	case "deny-zoom-out":
		return ViewportDenyZoomOut, true
	case "deny-zoom-in":
		return ViewportDenyZoomIn, true
	}
	return ViewportDefault, false
}

// ViewportContent returns the content attribute for mode.
// Unknown modes fall back to the default content.
func ViewportContent(mode ViewportMode) string {
	switch mode {
	case ViewportDenyZoom:
		return "width=device-width, initial-scale=1.0, maximum-scale=1.0, minimum-scale=1.0"
	case ViewportDenyZoomOut:
		return "width=device-width, initial-scale=1.0, minimum-scale=1.0"
	case ViewportDenyZoomIn:
		return "width=device-width, initial-scale=1.0, maximum-scale=1.0"
	default:
		return "width=device-width, initial-scale=1.0"
	}
}

// ViewportTag returns the viewport meta tag for mode.
func ViewportTag(mode ViewportMode) *ContributedTag {
	return &ContributedTag{
		TagName: "meta",
		Attrs: []Attr{
			{Name: "name", Value: "viewport"},
			{Name: "content", Value: ViewportContent(mode)},
		},
	}
}

// SetViewport installs or replaces the viewport meta tag in r.
func SetViewport(r *Registry, mode ViewportMode) *ContributedTag {
	return r.Replace("meta", "name", "viewport", ViewportTag(mode))
}

// SetViewportDefault installs the default viewport meta tag.
func SetViewportDefault(r *Registry) *ContributedTag {
	return SetViewport(r, ViewportDefault)
}
