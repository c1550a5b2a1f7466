// Package viewmodel holds the todo list the UI shows and keeps it in step
// with the remote collaborator.
//
// Every operation is split in two halves. The start half validates, updates
// flags and returns a tea.Cmd that performs the network call off the event
// loop. The settle half, Apply, receives the resulting Result message on the
// event loop and patches the state. Nothing changes locally until the server
// has answered.
package viewmodel

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
)

// Remote is the collaborator that owns the todos.
type Remote interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, task string) (model.Item, error)
	Update(ctx context.Context, it model.Item) (model.Item, error)
	Delete(ctx context.Context, id model.ID) error
}

// State is the whole view state. It is process-local and never persisted.
type State struct {
	Items   []model.Item
	Input   string
	Loading bool
	Err     string
}

// Controller is the single owner of State.
type Controller struct {
	remote Remote
	logger *log.Logger

	state   State
	loads   int
	nextSeq uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger failures are written to.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New returns an empty controller; call Load to populate it.
func New(remote Remote, opts ...Option) *Controller {
	c := &Controller{
		remote: remote,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load requests the full collection. The first call is the initial load;
// later calls are user-triggered reloads with the same semantics.
func (c *Controller) Load(ctx context.Context) tea.Cmd {
	c.loads++
	c.state.Loading = true
	seq := c.seq()
	remote := c.remote
	return func() tea.Msg {
		items, err := remote.List(ctx)
		return Result{Op: OpLoad, Seq: seq, Items: items, Err: err}
	}
}

// Add requests creation of an item with text. It returns nil, and changes
// nothing, when text is blank.
func (c *Controller) Add(ctx context.Context, text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	seq := c.seq()
	remote := c.remote
	return func() tea.Msg {
		it, err := remote.Create(ctx, text)
		return Result{Op: OpAdd, Seq: seq, Item: it, Err: err}
	}
}

// Submit adds the pending input.
func (c *Controller) Submit(ctx context.Context) tea.Cmd {
	return c.Add(ctx, c.state.Input)
}

// Toggle requests the inverse completed flag for id. It returns nil when id
// is not in the local list.
func (c *Controller) Toggle(ctx context.Context, id model.ID) tea.Cmd {
	i := c.index(id)
	if i < 0 {
		return nil
	}
	want := c.state.Items[i]
	want.Completed = !want.Completed
	seq := c.seq()
	remote := c.remote
	return func() tea.Msg {
		it, err := remote.Update(ctx, want)
		return Result{Op: OpToggle, Seq: seq, ID: id, Item: it, Err: err}
	}
}

// Delete requests removal of id. The local copy is only dropped once the
// server confirms.
func (c *Controller) Delete(ctx context.Context, id model.ID) tea.Cmd {
	seq := c.seq()
	remote := c.remote
	return func() tea.Msg {
		err := remote.Delete(ctx, id)
		return Result{Op: OpDelete, Seq: seq, ID: id, Err: err}
	}
}

// Apply settles a Result. It reports whether msg was one.
func (c *Controller) Apply(msg tea.Msg) bool {
	r, ok := msg.(Result)
	if !ok {
		return false
	}

	if r.Op == OpLoad && c.loads > 0 {
		c.loads--
		c.state.Loading = c.loads > 0
	}

	if r.Err != nil {
		c.logger.Error("todo request failed",
			"op", r.Op,
			"id", r.ID,
			"seq", r.Seq,
			"err", r.Err,
		)
		c.state.Err = r.Op.FailureMessage()
		return true
	}

	switch r.Op {
	case OpLoad:
		c.state.Items = append([]model.Item{}, r.Items...)
	case OpAdd:
		c.state.Items = append(c.state.Items, r.Item)
		c.state.Input = ""
	case OpToggle:
		// Matched against the list as it is now; a response for an item
		// deleted in the meantime is dropped.
		if i := c.index(r.ID); i >= 0 {
			c.state.Items[i] = r.Item
		} else {
			c.logger.Debug("dropping update for missing item", "id", r.ID, "seq", r.Seq)
		}
	case OpDelete:
		if i := c.index(r.ID); i >= 0 {
			c.state.Items = append(c.state.Items[:i:i], c.state.Items[i+1:]...)
		}
	}
	c.state.Err = ""
	c.logger.Debug("todo request settled", "op", r.Op, "id", r.ID, "seq", r.Seq, "total", len(c.state.Items))
	return true
}

// Run executes cmd synchronously and applies its result. It is what the
// one-shot CLI uses in place of an event loop. It reports whether anything
// ran.
func (c *Controller) Run(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	return c.Apply(cmd())
}

// SetInput replaces the pending input.
func (c *Controller) SetInput(s string) { c.state.Input = s }

// Input returns the pending input.
func (c *Controller) Input() string { return c.state.Input }

// CanSubmit reports whether the pending input would produce a request.
func (c *Controller) CanSubmit() bool { return strings.TrimSpace(c.state.Input) != "" }

// Items returns a copy of the list in server order.
func (c *Controller) Items() []model.Item {
	return append([]model.Item(nil), c.state.Items...)
}

// Item looks up id in the local list.
func (c *Controller) Item(id model.ID) (model.Item, bool) {
	i := c.index(id)
	if i < 0 {
		return model.Item{}, false
	}
	return c.state.Items[i], true
}

func (c *Controller) Loading() bool { return c.state.Loading }

// Err is the latest failure message, or "".
func (c *Controller) Err() string { return c.state.Err }

func (c *Controller) Completed() int {
	done, _ := model.Stats(c.state.Items)
	return done
}

func (c *Controller) Total() int { return len(c.state.Items) }

// Progress is Completed/Total, or 0 for an empty list.
func (c *Controller) Progress() float64 {
	done, total := model.Stats(c.state.Items)
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// Snapshot returns a copy of the state.
func (c *Controller) Snapshot() State {
	s := c.state
	s.Items = c.Items()
	return s
}

func (c *Controller) index(id model.ID) int {
	for i, it := range c.state.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) seq() uint64 {
	c.nextSeq++
	return c.nextSeq
}
