package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHabitsDecodeAcceptsLegacyWrappers(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Habits
	}{
		{
			name: "plain booleans",
			raw:  `{"smoking":true,"alcohol":false,"high_stress":true,"poor_sleep":false,"regular_exercise":true}`,
			want: Habits{Smoking: true, HighStress: true, RegularExercise: true},
		},
		{
			name: "value wrappers",
			raw:  `{"smoking":{"value":true},"alcohol":{"value":true},"poor_sleep":{"value":false}}`,
			want: Habits{Smoking: true, Alcohol: true},
		},
		{
			name: "mixed shapes and short keys",
			raw:  `{"stress":{"value":true},"exercise":true,"poor_sleep":true,"alcohol":null}`,
			want: Habits{HighStress: true, RegularExercise: true, PoorSleep: true},
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: Habits{},
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			var got Habits
			require.NoError(t, json.Unmarshal([]byte(testCase.raw), &got))
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestHabitsDecodeRejectsGarbage(t *testing.T) {
	var got Habits
	assert.Error(t, json.Unmarshal([]byte(`{"smoking":"yes"}`), &got))
}

func TestHabitsEncodeUsesPlainBooleans(t *testing.T) {
	encoded, err := json.Marshal(Habits{Smoking: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"smoking":true,"alcohol":false,"high_stress":false,"poor_sleep":false,"regular_exercise":false}`, string(encoded))
}

func TestCycleProfileCloneDoesNotShareHistory(t *testing.T) {
	profile := CycleProfile{History: []CycleHistoryRecord{{LifestyleImpact: 1}}}
	cloned := profile.Clone()
	cloned.History[0].LifestyleImpact = 5
	assert.Equal(t, 1.0, profile.History[0].LifestyleImpact)
}
