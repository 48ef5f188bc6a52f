package navigation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueBuffersUntilBound(t *testing.T) {
	q := NewQueue()
	q.Navigate(Reflection, Params{AppID: "42", TargetDeepLink: "myapp://"})
	q.ResetTo(Dashboard)
	assert.Equal(t, 2, q.Pending())

	rec := &Recorder{}
	q.Bind(rec)
	assert.Equal(t, 0, q.Pending())
	assert.Equal(t, []Request{
		{Screen: Reflection, Params: Params{AppID: "42", TargetDeepLink: "myapp://"}},
		{Screen: Dashboard, Reset: true},
	}, rec.Requests())

	// Once bound, requests pass straight through.
	q.Navigate(PostReflection, Params{AppID: "42"})
	cur, ok := rec.Current()
	require.True(t, ok)
	assert.Equal(t, PostReflection, cur.Screen)
	assert.Equal(t, []Screen{Dashboard, PostReflection}, rec.Stack())
}

func TestQueueUnbind(t *testing.T) {
	q := NewQueue()
	rec := &Recorder{}
	q.Bind(rec)
	q.Bind(nil)
	q.Navigate(Settings, Params{})
	assert.Equal(t, 1, q.Pending())
	assert.Empty(t, rec.Requests())
}

func TestQueueConcurrentSubmit(t *testing.T) {
	q := NewQueue()
	rec := &Recorder{}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Navigate(Reflection, Params{AppID: "x"})
		}()
	}
	q.Bind(rec)
	wg.Wait()

	assert.Len(t, rec.Requests(), 20)
	assert.Equal(t, 0, q.Pending())
}

func TestRecorderResetDiscardsHistory(t *testing.T) {
	rec := &Recorder{}
	_, ok := rec.Current()
	assert.False(t, ok)

	rec.Navigate(Dashboard, Params{})
	rec.Navigate(Reflection, Params{AppID: "1"})
	rec.ResetTo(Dashboard)
	assert.Equal(t, []Screen{Dashboard}, rec.Stack())
}

func TestRecorderNavigateReturnsToExistingScreen(t *testing.T) {
	rec := &Recorder{}
	rec.Navigate(Dashboard, Params{})
	rec.Navigate(Dashboard, Params{})
	assert.Equal(t, []Screen{Dashboard}, rec.Stack())

	rec.Navigate(Reflection, Params{AppID: "1"})
	rec.Navigate(PostReflection, Params{AppID: "1"})
	rec.Navigate(Reflection, Params{AppID: "2"})
	assert.Equal(t, []Screen{Dashboard, Reflection}, rec.Stack())
	top, _ := rec.Current()
	assert.Equal(t, "2", top.Params.AppID, "the revisited screen takes the new params")
	assert.Len(t, rec.Requests(), 5)
}

func TestBackIsQueuedAndPops(t *testing.T) {
	q := NewQueue()
	rec := &Recorder{}
	rec.Navigate(Dashboard, Params{})
	rec.Navigate(Reflection, Params{AppID: "1"})

	q.Back()
	q.Bind(rec)
	assert.Equal(t, []Screen{Dashboard}, rec.Stack())

	// The bottom screen is never popped.
	q.Back()
	assert.Equal(t, []Screen{Dashboard}, rec.Stack())
}
