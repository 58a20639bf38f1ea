// Package form implements the admin editor for a single record: local
// validation, an optional attachment upload, then create-or-update.
package form

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/upload"
)

type State int

const (
	Idle State = iota
	Uploading
	Submitting
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Uploading:
		return "uploading"
	case Submitting:
		return "submitting"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrBusy         = errors.New("editor is busy")
	ErrClosed       = errors.New("editor is closed")
	ErrUnknownField = errors.New("unknown field")
	ErrNoAttachment = errors.New("record type has no attachment")
	// ErrDiscarded is returned by Upload when the editor was closed while
	// the upload was in flight. The result is not applied.
	ErrDiscarded = errors.New("upload result discarded")
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Saver persists the payload. Create returns the new id.
type Saver[T any, I any] interface {
	Create(ctx context.Context, in I) (string, error)
	Update(ctx context.Context, id string, in I) (T, error)
}

// Uploader stores an attachment; *upload.Uploader and the HTTP client both
// satisfy it.
type Uploader interface {
	Upload(ctx context.Context, f upload.File, opts upload.Options) (upload.Result, error)
}

// Deps are the editor's collaborators. OnRefresh and OnClose may be nil.
type Deps[T any, I any] struct {
	Saver     Saver[T, I]
	Uploader  Uploader
	Notifier  Notifier
	OnRefresh func()
	OnClose   func()
}

// Editor holds the form state of one record. It is safe for concurrent
// use; an upload runs without holding the lock.
type Editor[T content.Record, I any] struct {
	kind Kind[T, I]
	deps Deps[T, I]

	mu     sync.Mutex
	state  State
	id     string
	fields map[string]string
	gen    uint64
	cancel context.CancelFunc
}

// NewEditor returns an editor pre-populated from existing, or from the
// kind's blank defaults when existing is nil.
func NewEditor[T content.Record, I any](kind Kind[T, I], existing *T, deps Deps[T, I]) *Editor[T, I] {
	e := &Editor[T, I]{kind: kind, deps: deps, fields: make(map[string]string, len(kind.Fields))}
	var src map[string]string
	if existing != nil {
		src = kind.FromRecord(*existing)
		e.id = (*existing).RecordMeta().ID.Hex()
	} else if kind.Defaults != nil {
		src = kind.Defaults(time.Now().UTC())
	}
	for _, f := range kind.Fields {
		e.fields[f] = src[f]
	}
	return e
}

func NewPaperEditor(existing *content.ResearchPaper, deps Deps[content.ResearchPaper, content.PaperInput]) *Editor[content.ResearchPaper, content.PaperInput] {
	return NewEditor(PaperKind, existing, deps)
}

func NewTeachingEditor(existing *content.TeachingExperience, deps Deps[content.TeachingExperience, content.TeachingInput]) *Editor[content.TeachingExperience, content.TeachingInput] {
	return NewEditor(TeachingKind, existing, deps)
}

func NewPostEditor(existing *content.BlogPost, deps Deps[content.BlogPost, content.PostInput]) *Editor[content.BlogPost, content.PostInput] {
	return NewEditor(PostKind, existing, deps)
}

func (e *Editor[T, I]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ID is the record id, empty until the record exists on the server.
func (e *Editor[T, I]) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

func (e *Editor[T, I]) Field(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields[name]
}

// Fields returns a copy of the current values.
func (e *Editor[T, I]) Fields() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Set edits one field. Fields stay editable during an upload.
func (e *Editor[T, I]) Set(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Closed {
		return ErrClosed
	}
	if _, ok := e.fields[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	e.fields[name] = value
	return nil
}

// CanPickFile reports whether an attachment may be chosen right now.
func (e *Editor[T, I]) CanPickFile() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.kind.Attachment != nil && e.state == Idle
}

// CanSubmit reports whether Submit would be accepted right now.
func (e *Editor[T, I]) CanSubmit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Idle
}

func (e *Editor[T, I]) enter(next State) error {
	switch e.state {
	case Closed:
		return ErrClosed
	case Idle:
		e.state = next
		return nil
	default:
		return ErrBusy
	}
}

// Submit validates the required fields and saves the record. A validation
// failure is reported without contacting the server. On success the
// refresh and close callbacks run in that order before the success
// message; on failure the form stays open with its values.
func (e *Editor[T, I]) Submit(ctx context.Context) error {
	e.mu.Lock()
	var missing []string
	for _, f := range e.kind.Required {
		if strings.TrimSpace(e.fields[f]) == "" {
			missing = append(missing, f)
		}
	}
	if e.state == Idle && len(missing) > 0 {
		e.mu.Unlock()
		e.deps.Notifier.Error(e.kind.RequiredMessage)
		return &content.ValidationError{Fields: missing, Message: e.kind.RequiredMessage}
	}
	if err := e.enter(Submitting); err != nil {
		e.mu.Unlock()
		return err
	}
	id := e.id
	in := e.kind.Input(e.fields)
	gen := e.gen
	e.mu.Unlock()

	var err error
	if id == "" {
		id, err = e.deps.Saver.Create(ctx, in)
	} else {
		_, err = e.deps.Saver.Update(ctx, id, in)
	}

	e.mu.Lock()
	if err != nil {
		if e.state == Submitting {
			e.state = Idle
		}
		e.mu.Unlock()
		e.deps.Notifier.Error(userMessage(err, e.kind.FailedMessage))
		return err
	}
	// The record is saved either way. If the caller closed the form while
	// the save was in flight it is not closed a second time.
	closed := e.gen != gen
	e.id = id
	e.state = Closed
	e.mu.Unlock()

	if e.deps.OnRefresh != nil {
		e.deps.OnRefresh()
	}
	if e.deps.OnClose != nil && !closed {
		e.deps.OnClose()
	}
	e.deps.Notifier.Success(e.kind.SavedMessage)
	return nil
}

// Upload sends exactly one file of the kind's attachment type. Only the
// attachment URL field changes, and only on success. The file type is
// sniffed locally; a mismatch is reported without an upload.
func (e *Editor[T, I]) Upload(ctx context.Context, files ...upload.File) error {
	att := e.kind.Attachment
	if att == nil {
		return ErrNoAttachment
	}
	e.mu.Lock()
	if e.state != Idle {
		err := e.enter(Uploading)
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	if len(files) != 1 {
		e.deps.Notifier.Error("Please select a single file")
		return nil
	}
	f, ok, err := sniff(files[0], att.MIMEType)
	if err != nil {
		e.deps.Notifier.Error(att.FailedMessage)
		return err
	}
	if !ok {
		e.deps.Notifier.Error(att.TypeMessage)
		return nil
	}

	e.mu.Lock()
	if err := e.enter(Uploading); err != nil {
		e.mu.Unlock()
		return err
	}
	e.gen++
	gen := e.gen
	uctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	res, err := e.deps.Uploader.Upload(uctx, f, att.Options)
	cancel()

	e.mu.Lock()
	if e.gen != gen || e.state != Uploading {
		e.mu.Unlock()
		return ErrDiscarded
	}
	e.state = Idle
	e.cancel = nil
	if err == nil && res.Success {
		e.fields[att.Field] = res.URL
	}
	e.mu.Unlock()

	switch {
	case err != nil:
		e.deps.Notifier.Error(userMessage(err, att.FailedMessage))
		return err
	case !res.Success:
		msg := res.Error
		if msg == "" {
			msg = att.FailedMessage
		}
		e.deps.Notifier.Error(msg)
		return nil
	}
	e.deps.Notifier.Success(att.SuccessMessage)
	return nil
}

// Close discards the editor. An in-flight upload is cancelled and its
// result, should it still arrive, is ignored.
func (e *Editor[T, I]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.gen++
	e.state = Closed
}

func userMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

// sniffLen matches what the server inspects.
const sniffLen = 3072

func sniff(f upload.File, want string) (upload.File, bool, error) {
	if f.Body == nil {
		return f, false, nil
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return f, false, fmt.Errorf("read %s: %w", f.Name, err)
	}
	head = head[:n]
	f.Body = io.MultiReader(bytes.NewReader(head), f.Body)
	return f, mimetype.Detect(head).Is(want), nil
}
