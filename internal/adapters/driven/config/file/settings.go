package file

import (
	"strconv"
	"strings"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// LoadSettings builds engine settings from the config store, starting
// from defaults and overriding with whatever keys are present. Unknown
// keys are ignored; absent keys keep their defaults. The result still
// goes through Settings.Validate at startup.
func LoadSettings(store driven.ConfigStore) domain.Settings {
	s := domain.DefaultSettings()

	if v := store.GetInt("engine.staleness_days"); v > 0 {
		s.StalenessThreshold = time.Duration(v) * 24 * time.Hour
	}
	if v := store.GetInt("engine.max_sequence_day"); v > 0 {
		s.MaxSequenceDay = v
	}
	if v := store.GetInt("engine.top_n"); v > 0 {
		s.TopN = v
	}
	if v := store.GetInt("engine.reply_bonus"); v > 0 {
		s.ReplyBonus = v
	}
	if v := store.GetInt("engine.workers"); v > 0 {
		s.WorkerCount = v
	}
	if v := store.GetInt("engine.call_timeout_seconds"); v > 0 {
		s.ExternalCallTimeout = time.Duration(v) * time.Second
	}
	if v := store.GetInt("engine.max_attempts"); v > 0 {
		s.MaxAttempts = v
	}
	if v := store.GetStringSlice("engine.day_steps"); v != nil {
		if steps := parseDaySteps(v); steps != nil {
			s.DaySteps = steps
		}
	}

	if v := store.GetInt("retrieval.top_k"); v > 0 {
		s.RetrievalTopK = v
	}
	if v := store.GetInt("retrieval.context_budget"); v > 0 {
		s.ContextBudget = v
	}

	for kind := range s.Weights {
		key := "weights." + string(kind)
		if points := store.GetInt(key + ".points"); points > 0 {
			w := s.Weights[kind]
			w.Points = points
			s.Weights[kind] = w
		}
		if max := store.GetInt(key + ".max"); max > 0 {
			w := s.Weights[kind]
			w.Max = max
			s.Weights[kind] = w
		}
	}

	if v := store.GetInt("filters.min_employee_size"); v > 0 {
		s.Filters.MinEmployeeSize = v
	}
	if v := store.GetStringSlice("filters.industries"); v != nil {
		s.Filters.Industries = v
	}
	if v := store.GetStringSlice("filters.countries"); v != nil {
		s.Filters.Countries = v
	}
	if v := store.GetStringSlice("filters.title_keywords"); v != nil {
		s.Filters.TitleKeywords = v
	}
	if v := store.GetStringSlice("filters.lifecycle_stages"); v != nil {
		s.Filters.LifecycleStages = v
	}

	if v := store.GetStringSlice("chat.channels"); v != nil {
		s.ChatChannels = v
	}

	return s
}

// parseDaySteps reads a drip schedule written as "before:interval"
// pairs, e.g. ["2:2", "7:5", "14:7"]. Any malformed entry discards the
// whole override so a typo cannot silently truncate the schedule.
func parseDaySteps(entries []string) []domain.DayStep {
	steps := make([]domain.DayStep, 0, len(entries))
	for _, entry := range entries {
		beforeRaw, intervalRaw, ok := strings.Cut(entry, ":")
		if !ok {
			return nil
		}
		before, err := strconv.Atoi(strings.TrimSpace(beforeRaw))
		if err != nil {
			return nil
		}
		interval, err := strconv.Atoi(strings.TrimSpace(intervalRaw))
		if err != nil {
			return nil
		}
		steps = append(steps, domain.DayStep{Before: before, Interval: interval})
	}
	return steps
}
