package questions

import (
	"context"
	"fmt"
	"sort"

	"github.com/intentional-app/intentional/internal/model"
)

// minShown is the number of showings before a question's completion rate counts.
const minShown = 3

// Effectiveness summarises how often a question led to an answer.
type Effectiveness struct {
	Question       string  `json:"question"`
	TotalShown     int     `json:"totalShown"`
	CompletionRate float64 `json:"completionRate"`
	Engagement     float64 `json:"averageEngagement"`
}

type tally struct {
	shown, completed int
}

func (s *Selector) tallies(ctx context.Context) (map[string]*tally, []string, error) {
	history, err := s.store.LoadQuestionHistory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load question history: %w", err)
	}
	counts := make(map[string]*tally)
	var order []string
	for _, h := range history {
		t, ok := counts[h.Question]
		if !ok {
			t = &tally{}
			counts[h.Question] = t
			order = append(order, h.Question)
		}
		t.shown++
		if h.Completed {
			t.completed++
		}
	}
	return counts, order, nil
}

func effectiveness(question string, t *tally) Effectiveness {
	e := Effectiveness{Question: question}
	if t == nil || t.shown == 0 {
		return e
	}
	e.TotalShown = t.shown
	e.CompletionRate = float64(t.completed) / float64(t.shown)
	e.Engagement = e.CompletionRate * 100
	return e
}

// Effectiveness reports the history of one question. A question never shown
// reports zeros.
func (s *Selector) Effectiveness(ctx context.Context, question string) (Effectiveness, error) {
	counts, _, err := s.tallies(ctx)
	if err != nil {
		return Effectiveness{}, err
	}
	return effectiveness(question, counts[question]), nil
}

// MostEffective returns up to limit questions shown at least three times,
// highest completion rate first.
func (s *Selector) MostEffective(ctx context.Context, limit int) ([]Effectiveness, error) {
	counts, order, err := s.tallies(ctx)
	if err != nil {
		return nil, err
	}
	var out []Effectiveness
	for _, q := range order {
		if counts[q].shown < minShown {
			continue
		}
		out = append(out, effectiveness(q, counts[q]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletionRate > out[j].CompletionRate
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// NeedingData returns up to limit bank questions shown fewer than three
// times, in bank order.
func (s *Selector) NeedingData(ctx context.Context, limit int) ([]string, error) {
	counts, _, err := s.tallies(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, q := range All() {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if t := counts[q]; t == nil || t.shown < minShown {
			out = append(out, q)
		}
	}
	return out, nil
}

// Categories lists the banks with their sizes, for reporting.
func Categories() map[model.Category]int {
	out := make(map[model.Category]int, len(banks))
	for c, b := range banks {
		out[c] = len(b)
	}
	return out
}
