package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 14*24*time.Hour, s.StalenessThreshold)
	assert.Equal(t, 40, s.MaxSequenceDay)
	assert.Equal(t, 10, s.TopN)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{name: "zero staleness threshold", mutate: func(s *Settings) { s.StalenessThreshold = 0 }},
		{name: "negative max sequence day", mutate: func(s *Settings) { s.MaxSequenceDay = -1 }},
		{name: "zero top n", mutate: func(s *Settings) { s.TopN = 0 }},
		{name: "zero retrieval top k", mutate: func(s *Settings) { s.RetrievalTopK = 0 }},
		{name: "zero context budget", mutate: func(s *Settings) { s.ContextBudget = 0 }},
		{name: "zero workers", mutate: func(s *Settings) { s.WorkerCount = 0 }},
		{name: "zero attempts", mutate: func(s *Settings) { s.MaxAttempts = 0 }},
		{name: "negative weight points", mutate: func(s *Settings) {
			s.Weights[SignalOpens] = SignalWeight{Points: -1, Max: 10}
		}},
		{name: "empty day steps", mutate: func(s *Settings) { s.DaySteps = nil }},
		{name: "unordered day steps", mutate: func(s *Settings) {
			s.DaySteps = []DayStep{{Before: 14, Interval: 7}, {Before: 2, Interval: 2}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
