package ngutils

import (
	"log/slog"
	"sync"

	"github.com/ngclient/ngutils/pkg/headtags"
	"github.com/ngclient/ngutils/pkg/styleclass"
)

// Model is the serializable state of one client page.
// Nil slices encode as null so that "never initialized" survives a round trip.
type Model struct {
	ContributedTags []headtags.ContributedTag   `json:"contributedTags"`
	StyleClasses    []styleclass.FormStyleClass `json:"styleclasses"`
}

// ChangeKind identifies which part of the model changed.
type ChangeKind string

const (
	ChangeTags         ChangeKind = "tags"
	ChangeStyleClasses ChangeKind = "styleclasses"
	ChangeReset        ChangeKind = "reset"
	ChangeRestore      ChangeKind = "restore"

	// ChangeSnapshot is never notified; Current returns it.
	ChangeSnapshot ChangeKind = "snapshot"
)

// Change is delivered to subscribers after every mutation. Seq increases by
// one per mutation, so a subscriber can drop notifications that arrive after
// a newer model was already seen.
type Change struct {
	Kind  ChangeKind `json:"type"`
	Seq   uint64     `json:"seq"`
	Model Model      `json:"model"`
}

// Recorder receives operation outcomes, typically to feed metrics.
type Recorder interface {
	TagOperation(result string)
	StyleClassOperation(op string)
}

// Outcomes reported to Recorder.TagOperation.
const (
	TagAppended = "appended"
	TagReplaced = "replaced"
	TagRemoved  = "removed"
	TagNoop     = "noop"
	TagReset    = "reset"
)

// Operations reported to Recorder.StyleClassOperation.
const (
	StyleClassAdd    = "add"
	StyleClassRemove = "remove"
	StyleClassNoop   = "noop"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRecorder sets the operation recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithClientID tags log lines with the owning client.
func WithClientID(id string) Option {
	return func(s *Service) {
		s.clientID = id
	}
}

// Service is the page model of one client together with its operations.
// All methods are safe for concurrent use; calls are applied one at a time.
type Service struct {
	mu       sync.Mutex
	tags     *headtags.Registry
	classes  *styleclass.Classes
	clientID string
	seq      uint64

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int

	logger   *slog.Logger
	recorder Recorder
}

// New creates a service. The tag registry starts present and empty so that
// a watching renderer sees its initial transition even when no tags are set.
func New(opts ...Option) *Service {
	s := &Service{
		tags:    headtags.NewRegistry(),
		classes: styleclass.New(),
		subs:    make(map[int]func(Change)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "ngutils")
	if s.clientID != "" {
		s.logger = s.logger.With("client", s.clientID)
	}
	s.tags.Reset()
	return s
}

// Subscribe registers fn to be called after each change. The returned
// function removes the subscription.
func (s *Service) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// ReplaceHeaderTag upserts or removes a contributed tag by its matching
// triple. See headtags.Registry.Replace.
func (s *Service) ReplaceHeaderTag(tagName, attrName, attrValue string, newTag *headtags.ContributedTag) *headtags.ContributedTag {
	s.mu.Lock()
	prev := s.tags.Replace(tagName, attrName, attrValue, newTag)
	result := tagOutcome(prev, newTag)
	var c Change
	if result != TagNoop {
		c = s.changeLocked(ChangeTags)
	}
	s.mu.Unlock()

	s.logger.Debug("header tag", "tag", tagName, "attr", attrName, "value", attrValue, "result", result)
	s.recordTag(result)
	if result != TagNoop {
		s.notify(c)
	}
	return prev
}

// SetViewportMetaForMobileAwareSites installs the viewport meta tag for mode.
func (s *Service) SetViewportMetaForMobileAwareSites(mode headtags.ViewportMode) {
	tag := headtags.ViewportTag(mode)
	s.ReplaceHeaderTag("meta", "name", "viewport", tag)
}

// SetViewportMetaDefaultForMobileAwareSites installs the default viewport meta tag.
func (s *Service) SetViewportMetaDefaultForMobileAwareSites() {
	s.SetViewportMetaForMobileAwareSites(headtags.ViewportDefault)
}

// HeaderTags returns the contributed tags in render order.
func (s *Service) HeaderTags() []headtags.ContributedTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags.Tags()
}

// Cleanup drops all contributed tags. Subscribers are always notified,
// even when nothing was contributed.
func (s *Service) Cleanup() {
	s.mu.Lock()
	s.tags.Reset()
	c := s.changeLocked(ChangeReset)
	s.mu.Unlock()

	s.logger.Debug("header tags reset")
	s.recordTag(TagReset)
	s.notify(c)
}

// AddFormStyleClass appends a class to a form.
func (s *Service) AddFormStyleClass(formName, className string) {
	s.mu.Lock()
	s.classes.Add(formName, className)
	c := s.changeLocked(ChangeStyleClasses)
	s.mu.Unlock()

	s.logger.Debug("style class added", "form", formName, "class", className)
	s.recordStyleClass(StyleClassAdd)
	s.notify(c)
}

// GetFormStyleClass returns the classes of a form.
func (s *Service) GetFormStyleClass(formName string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes.Get(formName)
}

// RemoveFormStyleClass removes one occurrence of a class from a form.
func (s *Service) RemoveFormStyleClass(formName, className string) {
	s.mu.Lock()
	before, _ := s.classes.Get(formName)
	n := s.classes.Len()
	s.classes.Remove(formName, className)
	after, _ := s.classes.Get(formName)
	changed := before != after || n != s.classes.Len()
	var c Change
	if changed {
		c = s.changeLocked(ChangeStyleClasses)
	}
	s.mu.Unlock()

	if !changed {
		s.recordStyleClass(StyleClassNoop)
		return
	}
	s.logger.Debug("style class removed", "form", formName, "class", className)
	s.recordStyleClass(StyleClassRemove)
	s.notify(c)
}

// Model returns a snapshot of the page model.
func (s *Service) Model() Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelLocked()
}

// Current returns the model together with the sequence number of the last
// mutation applied to it.
func (s *Service) Current() Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Change{Kind: ChangeSnapshot, Seq: s.seq, Model: s.modelLocked()}
}

// Restore replaces the page model, for example from a stored snapshot.
func (s *Service) Restore(m Model) {
	s.mu.Lock()
	s.tags.Load(m.ContributedTags)
	s.classes.Load(m.StyleClasses)
	c := s.changeLocked(ChangeRestore)
	s.mu.Unlock()

	s.logger.Info("model restored", "tags", len(c.Model.ContributedTags), "forms", len(c.Model.StyleClasses))
	s.notify(c)
}

func (s *Service) modelLocked() Model {
	return Model{
		ContributedTags: s.tags.Tags(),
		StyleClasses:    s.classes.Entries(),
	}
}

func (s *Service) changeLocked(kind ChangeKind) Change {
	s.seq++
	return Change{Kind: kind, Seq: s.seq, Model: s.modelLocked()}
}

func (s *Service) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (s *Service) recordTag(result string) {
	if s.recorder != nil {
		s.recorder.TagOperation(result)
	}
}

func (s *Service) recordStyleClass(op string) {
	if s.recorder != nil {
		s.recorder.StyleClassOperation(op)
	}
}

func tagOutcome(prev, newTag *headtags.ContributedTag) string {
	switch {
	case prev != nil && newTag != nil:
		return TagReplaced
	case prev != nil:
		return TagRemoved
	case newTag != nil:
		return TagAppended
	default:
		return TagNoop
	}
}
