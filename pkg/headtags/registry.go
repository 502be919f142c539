package headtags

import "encoding/json"

// Registry holds the ordered set of contributed header tags.
//
// A new Registry is absent: it has never been initialized and encodes as
// JSON null. Reset turns it into a present, empty collection. Renderers
// watching the model rely on that absent -> empty transition.
//
// Registry is not safe for concurrent use.
type Registry struct {
	tags []ContributedTag
}

// NewRegistry returns an absent registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Replace finds the first tag named tagName that carries the attribute pair
// (attrName, attrValue) and replaces it with newTag, keeping its position.
// When newTag is nil the matched tag is removed instead. The previous tag is
// returned. When nothing matches, newTag (if any) is appended and nil is
// returned.
//
// An empty tagName skips the lookup, so newTag is appended unconditionally.
func (r *Registry) Replace(tagName, attrName, attrValue string, newTag *ContributedTag) *ContributedTag {
	if tagName != "" {
		if i := r.index(tagName, attrName, attrValue); i >= 0 {
			prev := r.tags[i]
			if newTag != nil {
				r.tags[i] = newTag.clone()
			} else {
				r.tags = append(r.tags[:i], r.tags[i+1:]...)
			}
			return &prev
		}
	}

	if newTag != nil {
		if r.tags == nil {
			r.tags = make([]ContributedTag, 0, 1)
		}
		r.tags = append(r.tags, newTag.clone())
	}
	return nil
}

// Find returns the first tag matching the triple, or nil.
func (r *Registry) Find(tagName, attrName, attrValue string) *ContributedTag {
	i := r.index(tagName, attrName, attrValue)
	if i < 0 {
		return nil
	}
	return r.tags[i].Clone()
}

func (r *Registry) index(tagName, attrName, attrValue string) int {
	for i := range r.tags {
		tag := &r.tags[i]
		// tags without attributes can never match
		if tag.TagName != tagName || len(tag.Attrs) == 0 {
			continue
		}
		if tag.HasAttr(attrName, attrValue) {
			return i
		}
	}
	return -1
}

// Reset replaces the collection with a fresh, empty one.
func (r *Registry) Reset() {
	r.tags = []ContributedTag{}
}

// Present reports whether the registry has been initialized.
func (r *Registry) Present() bool {
	return r.tags != nil
}

// Len returns the number of contributed tags.
func (r *Registry) Len() int {
	return len(r.tags)
}

// Tags returns a copy of the contributed tags in render order.
// The result is nil when the registry is absent.
func (r *Registry) Tags() []ContributedTag {
	if r.tags == nil {
		return nil
	}
	out := make([]ContributedTag, len(r.tags))
	for i, t := range r.tags {
		out[i] = t.clone()
	}
	return out
}

// Load replaces the collection with tags, typically from a snapshot.
// A nil slice makes the registry absent again.
func (r *Registry) Load(tags []ContributedTag) {
	if tags == nil {
		r.tags = nil
		return
	}
	r.tags = make([]ContributedTag, len(tags))
	for i, t := range tags {
		r.tags[i] = t.clone()
	}
}

// MarshalJSON encodes the tags, or null when the registry is absent.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.tags)
}

// UnmarshalJSON decodes a tag list. Every tag is validated.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var tags []ContributedTag
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	for i := range tags {
		if err := tags[i].Validate(); err != nil {
			return err
		}
	}
	r.tags = tags
	return nil
}
