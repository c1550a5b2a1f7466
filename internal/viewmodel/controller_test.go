package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/apitest"
	"github.com/idilsaglam/tada/internal/model"
)

// fakeRemote answers from canned values; it never touches the network.
type fakeRemote struct {
	items     []model.Item
	created   model.Item
	updated   model.Item
	err       error
	updateReq []model.Item
	deleteReq []model.ID
	createReq []string
}

func (f *fakeRemote) List(context.Context) ([]model.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeRemote) Create(_ context.Context, task string) (model.Item, error) {
	f.createReq = append(f.createReq, task)
	return f.created, f.err
}

func (f *fakeRemote) Update(_ context.Context, it model.Item) (model.Item, error) {
	f.updateReq = append(f.updateReq, it)
	return f.updated, f.err
}

func (f *fakeRemote) Delete(_ context.Context, id model.ID) error {
	f.deleteReq = append(f.deleteReq, id)
	return f.err
}

var errBoom = errors.New("boom")

func loaded(t *testing.T, items ...model.Item) (*Controller, *fakeRemote) {
	t.Helper()
	f := &fakeRemote{items: items}
	c := New(f)
	require.True(t, c.Run(c.Load(context.Background())))
	f.err = nil
	return c, f
}

func TestInitialLoad(t *testing.T) {
	f := &fakeRemote{items: []model.Item{{ID: "1", Task: "Buy milk"}}}
	c := New(f)
	assert.False(t, c.Loading())

	cmd := c.Load(context.Background())
	require.NotNil(t, cmd)
	assert.True(t, c.Loading(), "loading is set before the call settles")
	assert.Empty(t, c.Items())

	require.True(t, c.Apply(cmd()))
	assert.False(t, c.Loading())
	assert.Equal(t, []model.Item{{ID: "1", Task: "Buy milk"}}, c.Items())
	assert.Equal(t, 0, c.Completed())
	assert.Equal(t, 1, c.Total())
	assert.Empty(t, c.Err())
}

func TestInitialLoadFailure(t *testing.T) {
	c := New(&fakeRemote{err: errBoom})

	c.Run(c.Load(context.Background()))
	assert.False(t, c.Loading())
	assert.Empty(t, c.Items())
	assert.Equal(t, MsgLoadFailed, c.Err())
}

func TestOverlappingLoadsKeepLoadingUntilLast(t *testing.T) {
	c := New(&fakeRemote{})
	first := c.Load(context.Background())
	second := c.Load(context.Background())

	c.Apply(first())
	assert.True(t, c.Loading())
	c.Apply(second())
	assert.False(t, c.Loading())
}

func TestReloadFailureKeepsList(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})
	f.err = errBoom

	c.Run(c.Load(context.Background()))
	assert.Len(t, c.Items(), 1)
	assert.Equal(t, MsgLoadFailed, c.Err())
}

func TestAddAppendsServerItem(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})
	f.created = model.Item{ID: "2", Task: "Write report"}
	c.SetInput("Write report")

	require.True(t, c.Run(c.Submit(context.Background())))
	assert.Equal(t, []string{"Write report"}, f.createReq)
	assert.Equal(t, []model.Item{
		{ID: "1", Task: "Buy milk"},
		{ID: "2", Task: "Write report"},
	}, c.Items())
	assert.Empty(t, c.Input(), "input is cleared on success")
	assert.Empty(t, c.Err())
}

func TestAddSendsTextAsTyped(t *testing.T) {
	c, f := loaded(t)
	f.created = model.Item{ID: "1", Task: "  padded "}

	c.Run(c.Add(context.Background(), "  padded "))
	assert.Equal(t, []string{"  padded "}, f.createReq)
}

func TestAddBlankIsNoop(t *testing.T) {
	for _, text := range []string{"", " ", "\t\n  "} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})
			c.SetInput(text)

			assert.Nil(t, c.Submit(context.Background()))
			assert.False(t, c.CanSubmit())
			assert.Len(t, c.Items(), 1)
			assert.Equal(t, text, c.Input())
			assert.Empty(t, f.createReq)
		})
	}
}

func TestAddFailureKeepsInput(t *testing.T) {
	c, f := loaded(t)
	f.err = errBoom
	c.SetInput("Write report")

	c.Run(c.Submit(context.Background()))
	assert.Empty(t, c.Items())
	assert.Equal(t, "Write report", c.Input())
	assert.Equal(t, MsgAddFailed, c.Err())
}

func TestToggleSendsInvertedFlag(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})
	f.updated = model.Item{ID: "1", Task: "Buy milk", Completed: true}

	require.True(t, c.Run(c.Toggle(context.Background(), "1")))
	assert.Equal(t, []model.Item{{ID: "1", Task: "Buy milk", Completed: true}}, f.updateReq)
	assert.Equal(t, []model.Item{{ID: "1", Task: "Buy milk", Completed: true}}, c.Items())
	assert.Equal(t, 1, c.Completed())
	assert.InDelta(t, 1.0, c.Progress(), 1e-9)
}

func TestToggleUsesServerResponse(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})
	f.updated = model.Item{ID: "1", Task: "Buy oat milk", Completed: true}

	c.Run(c.Toggle(context.Background(), "1"))
	it, ok := c.Item("1")
	require.True(t, ok)
	assert.Equal(t, "Buy oat milk", it.Task)
}

func TestToggleUnknownIsNoop(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})

	assert.Nil(t, c.Toggle(context.Background(), "9"))
	assert.Empty(t, f.updateReq)
	assert.Len(t, c.Items(), 1)
}

func TestToggleFailure(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})
	f.err = errBoom

	c.Run(c.Toggle(context.Background(), "1"))
	assert.Equal(t, []model.Item{{ID: "1", Task: "Buy milk"}}, c.Items())
	assert.Equal(t, MsgUpdateFailed, c.Err())
}

func TestDeleteRemovesOnlyAfterSuccess(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"}, model.Item{ID: "2", Task: "Write report"})

	cmd := c.Delete(context.Background(), "2")
	assert.Equal(t, 2, c.Total(), "nothing is removed before the server answers")

	c.Apply(cmd())
	assert.Equal(t, []model.ID{"2"}, f.deleteReq)
	assert.Equal(t, []model.Item{{ID: "1", Task: "Buy milk"}}, c.Items())
	assert.Empty(t, c.Err())
}

func TestDeleteFailure(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"}, model.Item{ID: "2", Task: "Write report"})
	f.err = errBoom

	c.Run(c.Delete(context.Background(), "2"))
	assert.Equal(t, 2, c.Total())
	assert.Equal(t, MsgDeleteFailed, c.Err())
}

func TestLatestErrorWins(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "Buy milk"})
	f.err = errBoom

	c.Run(c.Delete(context.Background(), "1"))
	assert.Equal(t, MsgDeleteFailed, c.Err())
	c.Run(c.Toggle(context.Background(), "1"))
	assert.Equal(t, MsgUpdateFailed, c.Err())

	f.err = nil
	f.updated = model.Item{ID: "1", Task: "Buy milk", Completed: true}
	c.Run(c.Toggle(context.Background(), "1"))
	assert.Empty(t, c.Err(), "a success clears the slot")
}

func TestOutOfOrderSettlement(t *testing.T) {
	c, f := loaded(t,
		model.Item{ID: "1", Task: "a"},
		model.Item{ID: "2", Task: "b"},
	)

	f.updated = model.Item{ID: "1", Task: "a", Completed: true}
	first := c.Toggle(context.Background(), "1")
	r1 := first()
	f.updated = model.Item{ID: "2", Task: "b", Completed: true}
	second := c.Toggle(context.Background(), "2")
	r2 := second()

	c.Apply(r2)
	c.Apply(r1)
	assert.Equal(t, []model.Item{
		{ID: "1", Task: "a", Completed: true},
		{ID: "2", Task: "b", Completed: true},
	}, c.Items())
}

func TestToggleAfterDeleteDoesNotResurrect(t *testing.T) {
	c, f := loaded(t, model.Item{ID: "1", Task: "a"})

	f.updated = model.Item{ID: "1", Task: "a", Completed: true}
	toggle := c.Toggle(context.Background(), "1")
	del := c.Delete(context.Background(), "1")

	c.Apply(del())
	c.Apply(toggle())
	assert.Empty(t, c.Items())
	assert.Empty(t, c.Err())
}

func TestResultSequenceIncreases(t *testing.T) {
	c, _ := loaded(t, model.Item{ID: "1", Task: "a"})
	r1 := c.Delete(context.Background(), "1")().(Result)
	r2 := c.Delete(context.Background(), "1")().(Result)
	assert.Less(t, r1.Seq, r2.Seq)
	assert.Equal(t, OpDelete, r1.Op)
}

func TestApplyIgnoresOtherMessages(t *testing.T) {
	c := New(&fakeRemote{})
	assert.False(t, c.Apply("not a result"))
	assert.False(t, c.Run(nil))
}

func TestItemsReturnsCopy(t *testing.T) {
	c, _ := loaded(t, model.Item{ID: "1", Task: "a"})
	items := c.Items()
	items[0].Task = "mutated"

	it, _ := c.Item("1")
	assert.Equal(t, "a", it.Task)

	snap := c.Snapshot()
	snap.Items[0].Task = "mutated"
	it, _ = c.Item("1")
	assert.Equal(t, "a", it.Task)
}

func TestDerivedValues(t *testing.T) {
	c := New(&fakeRemote{})
	assert.Zero(t, c.Progress())
	assert.Zero(t, c.Completed())
	assert.Zero(t, c.Total())

	c, _ = loaded(t,
		model.Item{ID: "1", Completed: true},
		model.Item{ID: "2"},
		model.Item{ID: "3"},
		model.Item{ID: "4", Completed: true},
	)
	assert.Equal(t, 2, c.Completed())
	assert.Equal(t, 4, c.Total())
	assert.InDelta(t, 0.5, c.Progress(), 1e-9)
	assert.LessOrEqual(t, c.Completed(), c.Total())
}

func TestOpFailureMessages(t *testing.T) {
	want := map[Op]string{
		OpLoad:   "Failed to load todos",
		OpAdd:    "Failed to add todo",
		OpToggle: "Failed to update todo",
		OpDelete: "Failed to delete todo",
	}
	got := map[Op]string{}
	for op := range want {
		got[op] = op.FailureMessage()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages (-want +got):\n%s", diff)
	}
	assert.Equal(t, "", Op(0).FailureMessage())
	assert.Equal(t, "toggle", OpToggle.String())
}

// The scenarios below run the controller against the real HTTP client and
// the in-memory API.

func newHTTPController(t *testing.T, items ...model.Item) (*Controller, *apitest.Server) {
	t.Helper()
	srv := apitest.New(items...)
	t.Cleanup(srv.Close)
	client, err := api.New(srv.BaseURL())
	require.NoError(t, err)
	return New(client), srv
}

func TestScenarioOverHTTP(t *testing.T) {
	ctx := context.Background()
	c, srv := newHTTPController(t, model.Item{ID: "1", Task: "Buy milk"})

	c.Run(c.Load(ctx))
	assert.Equal(t, "0 of 1", fmt.Sprintf("%d of %d", c.Completed(), c.Total()))
	assert.False(t, c.Loading())

	c.SetInput("Write report")
	c.Run(c.Submit(ctx))
	require.Equal(t, 2, c.Total())
	assert.Equal(t, model.Item{ID: "2", Task: "Write report"}, c.Items()[1])

	c.Run(c.Toggle(ctx, "1"))
	assert.Equal(t, 1, c.Completed())
	it, _ := c.Item("1")
	assert.True(t, it.Completed)

	srv.FailWith(http.MethodDelete, http.StatusInternalServerError)
	c.Run(c.Delete(ctx, "2"))
	assert.Equal(t, 2, c.Total())
	assert.Equal(t, MsgDeleteFailed, c.Err())

	srv.FailWith(http.MethodDelete, 0)
	c.Run(c.Delete(ctx, "2"))
	assert.Equal(t, 1, c.Total())
	assert.Empty(t, c.Err())
}

func TestAddManyOverHTTP(t *testing.T) {
	ctx := context.Background()
	c, _ := newHTTPController(t)
	c.Run(c.Load(ctx))

	tasks := []string{"one", "two", "three", "four", "five"}
	for _, task := range tasks {
		c.Run(c.Add(ctx, task))
	}
	require.Equal(t, len(tasks), c.Total())
	for i, it := range c.Items() {
		assert.Equal(t, tasks[i], it.Task)
	}
}

func TestDeleteUnknownOverHTTP(t *testing.T) {
	ctx := context.Background()
	c, _ := newHTTPController(t, model.Item{ID: "1", Task: "Buy milk"})
	c.Run(c.Load(ctx))

	c.Run(c.Delete(ctx, "42"))
	assert.Equal(t, 1, c.Total())
	assert.Equal(t, MsgDeleteFailed, c.Err())
}
