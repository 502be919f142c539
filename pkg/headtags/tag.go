package headtags

import (
	"errors"
	"fmt"
)

// ErrInvalidTag is returned when a tag record fails boundary validation.
var ErrInvalidTag = errors.New("headtags: invalid tag")

// Attr is a single attribute of a contributed tag.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ContributedTag describes an element that should be rendered into the
// document head. Attrs keep insertion order; order matters for rendering
// but not for matching.
type ContributedTag struct {
	TagName string `json:"tagName"`
	Attrs   []Attr `json:"attrs"`
}

// NewTag builds a validated tag record.
//
//	tag, err := headtags.NewTag("meta",
//	    headtags.Attr{Name: "name", Value: "viewport"},
//	    headtags.Attr{Name: "content", Value: "width=device-width"},
//	)
func NewTag(tagName string, attrs ...Attr) (*ContributedTag, error) {
	tag := &ContributedTag{TagName: tagName, Attrs: append([]Attr(nil), attrs...)}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

// MustTag is like NewTag but panics on invalid input.
// Intended for package-level tag definitions.
func MustTag(tagName string, attrs ...Attr) *ContributedTag {
	tag, err := NewTag(tagName, attrs...)
	if err != nil {
		panic(err)
	}
	return tag
}

// Validate checks that the tag name and all attribute names are valid HTML names.
func (t *ContributedTag) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil tag", ErrInvalidTag)
	}
	if !ValidName(t.TagName) {
		return fmt.Errorf("%w: tag name %q", ErrInvalidTag, t.TagName)
	}
	for i, a := range t.Attrs {
		if !ValidName(a.Name) {
			return fmt.Errorf("%w: attribute %d name %q", ErrInvalidTag, i, a.Name)
		}
	}
	return nil
}

// Attr returns the value of the first attribute with the given name.
func (t *ContributedTag) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the tag carries the exact name/value pair.
func (t *ContributedTag) HasAttr(name, value string) bool {
	for _, a := range t.Attrs {
		if a.Name == name && a.Value == value {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the tag.
func (t *ContributedTag) Clone() *ContributedTag {
	if t == nil {
		return nil
	}
	c := t.clone()
	return &c
}

func (t ContributedTag) clone() ContributedTag {
	return ContributedTag{TagName: t.TagName, Attrs: append([]Attr(nil), t.Attrs...)}
}

// ValidName reports whether s is usable as an element or attribute name.
// Names start with an ASCII letter followed by letters, digits, '-', '_', ':' or '.'.
func ValidName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':' || c == '.'):
		default:
			return false
		}
	}
	return true
}
