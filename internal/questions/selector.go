package questions

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/store"
)

// DefaultRecentDays is how far back shown questions are avoided.
const DefaultRecentDays = 14

// Picker returns a uniform pseudo-random int in [0, n).
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Options configures a Selector. Zero fields take defaults.
type Options struct {
	Clock      clock.Clock
	Location   *time.Location // local time zone for time-of-day rules
	Picker     Picker
	Logger     *zap.Logger
	RecentDays int
}

// Selector picks reflection questions and records which ones were shown.
// History writes happen on a background goroutine; call Close to flush them.
type Selector struct {
	store      store.Store
	clock      clock.Clock
	loc        *time.Location
	pick       Picker
	log        *zap.Logger
	recentDays int

	writes    chan model.QuestionHistory
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewSelector starts a Selector backed by st.
func NewSelector(st store.Store, opts Options) *Selector {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Picker == nil {
		opts.Picker = globalPicker{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RecentDays <= 0 {
		opts.RecentDays = DefaultRecentDays
	}
	s := &Selector{
		store:      st,
		clock:      opts.Clock,
		loc:        opts.Location,
		pick:       opts.Picker,
		log:        opts.Logger,
		recentDays: opts.RecentDays,
		writes:     make(chan model.QuestionHistory, 32),
		done:       make(chan struct{}),
	}
	go s.historyWorker()
	return s
}

// TimeOfDay buckets the local hour for contextual questions.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"   // 00:00-08:59
	Afternoon TimeOfDay = "afternoon" // 09:00-17:59
	Evening   TimeOfDay = "evening"   // 18:00-23:59
)

// TimeOfDayAt returns the bucket of t's hour.
func TimeOfDayAt(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h < 9:
		return Morning
	case h < 18:
		return Afternoon
	default:
		return Evening
	}
}

// AdjustCategory replaces the default category with the bank suited to the
// time of day. Explicit categories are returned unchanged.
func AdjustCategory(category model.Category, tod TimeOfDay) model.Category {
	if category != model.CategoryDefault {
		return category
	}
	switch tod {
	case Morning:
		return model.CategoryMindfulness
	case Afternoon:
		return model.CategoryProductivity
	default:
		return model.CategoryGratitude
	}
}

func (s *Selector) localNow() time.Time {
	return s.clock.Now().In(s.loc)
}

// GetSmartQuestion returns a question for appName. With rotation enabled it
// avoids questions shown in the recent window and adapts the default
// category to the time of day; when every candidate was shown recently it
// falls back to a history-blind contextual pick. It never returns "".
func (s *Selector) GetSmartQuestion(ctx context.Context, category model.Category, appName string) string {
	if !category.Valid() {
		category = model.CategoryDefault
	}

	settings, err := s.store.LoadGlobalSettings(ctx)
	if err != nil {
		s.log.Warn("load settings for question selection", zap.Error(err))
		settings = model.DefaultSettings()
	}
	if !settings.QuestionRotationEnabled {
		return s.GetRandomQuestion(category, nil)
	}

	recent, err := s.store.RecentQuestions(ctx, s.recentDays)
	if err != nil {
		s.log.Warn("load recent questions", zap.Error(err))
		recent = nil
	}

	tod := TimeOfDayAt(s.localNow())
	adjusted := AdjustCategory(category, tod)
	available := without(Bank(adjusted), recent)
	if len(available) == 0 {
		s.log.Debug("question bank exhausted, using contextual pick",
			zap.String("category", string(adjusted)), zap.String("app", appName))
		return s.contextual(adjusted, tod)
	}
	return available[s.pick.IntN(len(available))]
}

// GetRandomQuestion returns a uniform pick from category, skipping exclude
// unless that leaves nothing.
func (s *Selector) GetRandomQuestion(category model.Category, exclude []string) string {
	bank := Bank(category)
	if available := without(bank, exclude); len(available) > 0 {
		return available[s.pick.IntN(len(available))]
	}
	return bank[s.pick.IntN(len(bank))]
}

func (s *Selector) contextual(category model.Category, tod TimeOfDay) string {
	switch {
	case tod == Evening && category == model.CategoryProductivity:
		return EveningProductivityQuestion
	case tod == Morning && category == model.CategoryMindfulness:
		return MorningMindfulnessQuestion
	}
	return s.GetRandomQuestion(category, nil)
}

func without(bank, exclude []string) []string {
	if len(exclude) == 0 {
		return bank
	}
	out := bank[:0:0]
	for _, q := range bank {
		if !slices.Contains(exclude, q) {
			out = append(out, q)
		}
	}
	return out
}

// MarkUsed records that question was shown for appName. It does not wait for
// the write; failures are logged.
func (s *Selector) MarkUsed(question, appName string, completed bool) {
	entry := model.QuestionHistory{
		QuestionID: QuestionID(question),
		Question:   question,
		AnsweredAt: s.clock.Now(),
		AppName:    appName,
		Completed:  completed,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn("question history write after close", zap.String("question_id", entry.QuestionID))
		return
	}
	select {
	case s.writes <- entry:
		s.mu.Unlock()
		return
	default:
	}
	s.mu.Unlock()

	// Writer is behind; save inline rather than hold the lock while waiting.
	s.log.Debug("question history buffer full", zap.String("question_id", entry.QuestionID))
	s.save(entry)
}

func (s *Selector) save(entry model.QuestionHistory) {
	if err := s.store.SaveQuestionHistory(context.Background(), entry); err != nil {
		s.log.Error("save question history",
			zap.String("question_id", entry.QuestionID), zap.Error(err))
	}
}

func (s *Selector) historyWorker() {
	defer close(s.done)
	for entry := range s.writes {
		s.save(entry)
	}
}

// Close waits for pending history writes and stops the writer.
func (s *Selector) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.writes)
		s.mu.Unlock()
		<-s.done
	})
	return nil
}
