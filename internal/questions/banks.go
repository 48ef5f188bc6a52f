// Package questions holds the reflection question banks and selects the
// prompt shown during a reflection.
package questions

import (
	"regexp"
	"slices"
	"strings"

	"github.com/intentional-app/intentional/internal/model"
)

var banks = map[model.Category][]string{
	model.CategoryGratitude: {
		"What is something you are grateful for today?",
		"Who in your life brings you joy?",
		"What small moment made you smile recently?",
		"What is working well in your life right now?",
		"What good thing happened to you this week?",
		"What skill or ability are you thankful to have?",
		"What place makes you feel peaceful?",
		"What relationship in your life are you most grateful for?",
	},
	model.CategoryProductivity: {
		"What is something you are looking forward to doing today?",
		"What is something you have to get done today?",
		"What is something you are pushing off?",
		"What would make today feel successful?",
		"What is one thing you could do right now to feel more accomplished?",
		"What project would you like to make progress on?",
		"What skill would you like to develop this week?",
		"What deadline is coming up that you should focus on?",
		"What task would give you the most satisfaction to complete?",
		"What would your future self thank you for doing right now?",
	},
	model.CategoryMindfulness: {
		"How are you feeling right now?",
		"What is something you are going to do this evening?",
		"How are your parents doing?",
		"What would be a better use of your time right now?",
		"What are you avoiding by reaching for your phone?",
		"How is your energy level today?",
		"What does your body need right now?",
		"What emotion are you trying to avoid or escape?",
		"When did you last take a deep breath?",
		"What would help you feel more centered?",
		"What conversation have you been meaning to have?",
		"How connected do you feel to the people around you?",
	},
	model.CategoryDefault: {
		"Why are you opening this app?",
		"What are you hoping to find?",
		"Is there something more important you could do?",
		"What are you curious about right now?",
		"What would you rather be doing?",
		"How long do you plan to spend here?",
		"What will you gain from this?",
		"Is this the best use of your time?",
	},
}

// Contextual prompts that replace a bank pick at particular times of day.
const (
	EveningProductivityQuestion = "What is something you are going to do this evening?"
	MorningMindfulnessQuestion  = "How are you feeling this morning?"
)

// Bank returns a copy of the questions in category. Unknown categories get
// the default bank.
func Bank(category model.Category) []string {
	b, ok := banks[category]
	if !ok {
		b = banks[model.CategoryDefault]
	}
	return slices.Clone(b)
}

// All returns every bank question in default, gratitude, productivity,
// mindfulness order.
func All() []string {
	var all []string
	for _, c := range []model.Category{
		model.CategoryDefault,
		model.CategoryGratitude,
		model.CategoryProductivity,
		model.CategoryMindfulness,
	} {
		all = append(all, banks[c]...)
	}
	return all
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// QuestionID derives the lossy history id of a question: lower-cased, with
// everything but ASCII letters and digits removed, cut to 20 characters.
func QuestionID(question string) string {
	id := nonAlnum.ReplaceAllString(strings.ToLower(question), "")
	if len(id) > 20 {
		id = id[:20]
	}
	return id
}
