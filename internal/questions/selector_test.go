package questions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/store"
	"github.com/intentional-app/intentional/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// firstPicker always picks the first candidate.
type firstPicker struct{}

func (firstPicker) IntN(int) int { return 0 }

func at(hour int) time.Time {
	return time.Date(2024, time.March, 12, hour, 0, 0, 0, time.UTC)
}

func newSelector(t *testing.T, st store.Store, now time.Time) *Selector {
	t.Helper()
	sel := NewSelector(st, Options{
		Clock:    testutil.NewClock(now),
		Location: time.UTC,
		Picker:   firstPicker{},
	})
	t.Cleanup(func() { _ = sel.Close() })
	return sel
}

func seedShown(t *testing.T, st store.Store, when time.Time, questions ...string) {
	t.Helper()
	for _, q := range questions {
		require.NoError(t, st.SaveQuestionHistory(context.Background(), model.QuestionHistory{
			QuestionID: QuestionID(q),
			Question:   q,
			AnsweredAt: when,
			AppName:    "Instagram",
			Completed:  true,
		}))
	}
}

func TestTimeOfDayPartition(t *testing.T) {
	want := map[int]TimeOfDay{
		0: Morning, 8: Morning,
		9: Afternoon, 12: Afternoon, 13: Afternoon, 17: Afternoon,
		18: Evening, 23: Evening,
	}
	for hour, tod := range want {
		assert.Equal(t, tod, TimeOfDayAt(at(hour)), "hour %d", hour)
	}

	assert.Equal(t, model.CategoryMindfulness, AdjustCategory(model.CategoryDefault, Morning))
	assert.Equal(t, model.CategoryProductivity, AdjustCategory(model.CategoryDefault, Afternoon))
	assert.Equal(t, model.CategoryGratitude, AdjustCategory(model.CategoryDefault, Evening))
	assert.Equal(t, model.CategoryGratitude, AdjustCategory(model.CategoryGratitude, Morning))
}

func TestSmartQuestionUsesTimeAdjustedCategory(t *testing.T) {
	st := store.NewMemory(store.Options{})
	sel := newSelector(t, st, at(14))

	got := sel.GetSmartQuestion(context.Background(), model.CategoryDefault, "Instagram")
	assert.Equal(t, Bank(model.CategoryProductivity)[0], got)
}

func TestSmartQuestionAvoidsRecent(t *testing.T) {
	now := at(14)
	st := store.NewMemory(store.Options{Clock: testutil.NewClock(now)})
	bank := Bank(model.CategoryProductivity)
	seedShown(t, st, now.AddDate(0, 0, -1), bank[0], bank[1])
	// Outside the 14 day window, so not avoided.
	seedShown(t, st, now.AddDate(0, 0, -20), bank[2])

	sel := newSelector(t, st, now)
	got := sel.GetSmartQuestion(context.Background(), model.CategoryDefault, "Instagram")
	assert.Equal(t, bank[2], got)
}

func TestSmartQuestionNeverReturnsRecentWhileUnusedRemain(t *testing.T) {
	now := at(10)
	st := store.NewMemory(store.Options{Clock: testutil.NewClock(now)})
	bank := Bank(model.CategoryGratitude)
	seedShown(t, st, now.Add(-time.Hour), bank[:len(bank)-1]...)

	sel := NewSelector(st, Options{Clock: testutil.NewClock(now), Location: time.UTC})
	defer func() { _ = sel.Close() }()
	for i := 0; i < 50; i++ {
		got := sel.GetSmartQuestion(context.Background(), model.CategoryGratitude, "Instagram")
		assert.Equal(t, bank[len(bank)-1], got)
	}
}

func TestSmartQuestionExhaustedFallsBackToContextual(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		category model.Category
		want     string
	}{
		{"evening productivity", 20, model.CategoryProductivity, EveningProductivityQuestion},
		{"morning mindfulness", 7, model.CategoryMindfulness, MorningMindfulnessQuestion},
		{"morning default adjusts to mindfulness", 7, model.CategoryDefault, MorningMindfulnessQuestion},
		{"evening default adjusts to gratitude", 20, model.CategoryDefault, Bank(model.CategoryGratitude)[0]},
		{"afternoon productivity", 14, model.CategoryProductivity, Bank(model.CategoryProductivity)[0]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := at(tt.hour)
			st := store.NewMemory(store.Options{Clock: testutil.NewClock(now), MaxHistory: 1000})
			seedShown(t, st, now.Add(-time.Hour), All()...)

			sel := newSelector(t, st, now)
			assert.Equal(t, tt.want, sel.GetSmartQuestion(context.Background(), tt.category, "Instagram"))
		})
	}
}

func TestSmartQuestionRotationDisabled(t *testing.T) {
	now := at(14)
	st := store.NewMemory(store.Options{Clock: testutil.NewClock(now)})
	settings := model.DefaultSettings()
	settings.QuestionRotationEnabled = false
	require.NoError(t, st.SaveGlobalSettings(context.Background(), settings))
	bank := Bank(model.CategoryDefault)
	seedShown(t, st, now.Add(-time.Hour), bank[0])

	sel := newSelector(t, st, now)
	// No history filtering and no time-of-day adjustment.
	assert.Equal(t, bank[0], sel.GetSmartQuestion(context.Background(), model.CategoryDefault, "Instagram"))
}

type failingStore struct {
	store.Store
}

func (failingStore) LoadGlobalSettings(context.Context) (model.GlobalSettings, error) {
	return model.GlobalSettings{}, errors.New("disk gone")
}

func (failingStore) RecentQuestions(context.Context, int) ([]string, error) {
	return nil, errors.New("disk gone")
}

func TestSmartQuestionNeverEmpty(t *testing.T) {
	stores := map[string]store.Store{
		"memory":  store.NewMemory(store.Options{}),
		"failing": failingStore{store.NewMemory(store.Options{})},
	}
	for name, st := range stores {
		for hour := 0; hour < 24; hour++ {
			sel := NewSelector(st, Options{Clock: testutil.NewClock(at(hour)), Location: time.UTC})
			for _, c := range append(model.Categories, "bogus") {
				got := sel.GetSmartQuestion(context.Background(), c, "Instagram")
				assert.NotEmpty(t, got, fmt.Sprintf("%s %d %s", name, hour, c))
			}
			require.NoError(t, sel.Close())
		}
	}
}

func TestMarkUsedPersistsOnClose(t *testing.T) {
	now := at(14)
	st := store.NewMemory(store.Options{Clock: testutil.NewClock(now)})
	sel := NewSelector(st, Options{Clock: testutil.NewClock(now), Location: time.UTC})

	sel.MarkUsed("Why are you opening this app?", "Instagram", false)
	sel.MarkUsed("What are you hoping to find?", "TikTok", true)
	require.NoError(t, sel.Close())
	require.NoError(t, sel.Close())

	// Dropped after close, not a panic.
	sel.MarkUsed("late", "Instagram", true)

	history, err := st.LoadQuestionHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "whyareyouopeningthis", history[0].QuestionID)
	assert.False(t, history[0].Completed)
	assert.True(t, history[0].AnsweredAt.Equal(now))
	assert.Equal(t, "TikTok", history[1].AppName)
	assert.True(t, history[1].Completed)
}

// gatedStore holds the first history write until gate is closed.
type gatedStore struct {
	*store.Memory
	once    sync.Once
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedStore) SaveQuestionHistory(ctx context.Context, entry model.QuestionHistory) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.gate
	}
	return g.Memory.SaveQuestionHistory(ctx, entry)
}

func TestMarkUsedDoesNotBlockWhenWriterIsBehind(t *testing.T) {
	now := at(14)
	st := &gatedStore{
		Memory:  store.NewMemory(store.Options{Clock: testutil.NewClock(now)}),
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	sel := NewSelector(st, Options{Clock: testutil.NewClock(now), Location: time.UTC})

	sel.MarkUsed("stuck", "Instagram", true)
	<-st.entered
	for i := 0; i < 32; i++ {
		sel.MarkUsed(fmt.Sprintf("queued %d", i), "Instagram", true)
	}

	// The buffer is full and the writer is stuck; this must still return.
	sel.MarkUsed("overflow", "Instagram", true)
	history, err := st.LoadQuestionHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "overflow", history[0].Question)

	close(st.gate)
	require.NoError(t, sel.Close())
	history, err = st.LoadQuestionHistory(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 34)
}

func TestQuestionID(t *testing.T) {
	assert.Equal(t, "howareyoufeelingrigh", QuestionID("How are you feeling right now?"))
	assert.Equal(t, "isthisthebestuseofyo", QuestionID("Is this the best use of your time?"))
	assert.Equal(t, "short", QuestionID("Short!"))
}

func TestBanksAreComplete(t *testing.T) {
	assert.Len(t, Bank(model.CategoryGratitude), 8)
	assert.Len(t, Bank(model.CategoryProductivity), 10)
	assert.Len(t, Bank(model.CategoryMindfulness), 12)
	assert.Len(t, Bank(model.CategoryDefault), 8)
	assert.Len(t, All(), 38)
	assert.Equal(t, Bank(model.CategoryDefault), Bank("unknown"))
}
