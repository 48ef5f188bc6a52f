package questions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/store"
	"github.com/intentional-app/intentional/internal/testutil"
)

func seedHistory(t *testing.T, st store.Store, question string, completed ...bool) {
	t.Helper()
	for _, c := range completed {
		require.NoError(t, st.SaveQuestionHistory(context.Background(), model.QuestionHistory{
			QuestionID: QuestionID(question),
			Question:   question,
			AnsweredAt: testutil.Epoch,
			AppName:    "Instagram",
			Completed:  c,
		}))
	}
}

func TestEffectiveness(t *testing.T) {
	st := store.NewMemory(store.Options{})
	seedHistory(t, st, "a", true, false, true, true)
	sel := newSelector(t, st, at(14))

	e, err := sel.Effectiveness(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 4, e.TotalShown)
	assert.InDelta(t, 0.75, e.CompletionRate, 1e-9)
	assert.InDelta(t, 75.0, e.Engagement, 1e-9)

	none, err := sel.Effectiveness(context.Background(), "never shown")
	require.NoError(t, err)
	assert.Equal(t, Effectiveness{Question: "never shown"}, none)
}

func TestMostEffective(t *testing.T) {
	st := store.NewMemory(store.Options{})
	seedHistory(t, st, "half", true, false, true, false)
	seedHistory(t, st, "always", true, true, true)
	seedHistory(t, st, "rare", true)
	seedHistory(t, st, "never", false, false, false)
	sel := newSelector(t, st, at(14))

	top, err := sel.MostEffective(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "always", top[0].Question)
	assert.Equal(t, "half", top[1].Question)

	all, err := sel.MostEffective(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "questions shown fewer than three times are left out")
}

func TestNeedingData(t *testing.T) {
	st := store.NewMemory(store.Options{})
	first := Bank(model.CategoryDefault)[0]
	seedHistory(t, st, first, true, true, true)
	sel := newSelector(t, st, at(14))

	got, err := sel.NeedingData(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, Bank(model.CategoryDefault)[1:3], got)
}
