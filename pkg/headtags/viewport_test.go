package headtags

import "testing"

func TestViewportContent(t *testing.T) {
	tests := []struct {
		mode ViewportMode
		want string
	}{
		{ViewportDefault, "width=device-width, initial-scale=1.0"},
		{ViewportDenyZoom, "width=device-width, initial-scale=1.0, maximum-scale=1.0, minimum-scale=1.0"},
		{ViewportDenyZoomOut, "width=device-width, initial-scale=1.0, minimum-scale=1.0"},
		{ViewportDenyZoomIn, "width=device-width, initial-scale=1.0, maximum-scale=1.0"},
		{ViewportMode(42), "width=device-width, initial-scale=1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := ViewportContent(tt.mode); got != tt.want {
				t.Errorf("ViewportContent(%d) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestSetViewportLeavesSingleTag(t *testing.T) {
	reg := NewRegistry()
	reg.Reset()

	if prev := SetViewportDefault(reg); prev != nil {
		t.Fatalf("first SetViewport returned %+v", prev)
	}
	prev := SetViewport(reg, ViewportDenyZoomIn)
	if prev == nil || !prev.HasAttr("content", ViewportContent(ViewportDefault)) {
		t.Fatalf("prev = %+v, want default viewport", prev)
	}
	SetViewport(reg, ViewportDenyZoom)

	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	tag := reg.Find("meta", "name", "viewport")
	if tag == nil || !tag.HasAttr("content", ViewportContent(ViewportDenyZoom)) {
		t.Errorf("viewport tag = %+v", tag)
	}
}

func TestParseViewportMode(t *testing.T) {
	for _, m := range []ViewportMode{ViewportDefault, ViewportDenyZoom, ViewportDenyZoomOut, ViewportDenyZoomIn} {
		got, ok := ParseViewportMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseViewportMode(%q) = %d, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseViewportMode("pinch"); ok {
		t.Error("ParseViewportMode(pinch) should fail")
	}
}
