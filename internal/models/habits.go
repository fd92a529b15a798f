package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Habits struct {
	Smoking         bool `json:"smoking"`
	Alcohol         bool `json:"alcohol"`
	HighStress      bool `json:"high_stress"`
	PoorSleep       bool `json:"poor_sleep"`
	RegularExercise bool `json:"regular_exercise"`
}

// habitFlag decodes either a bare boolean or the schema v1 {"value": bool} wrapper.
type habitFlag bool

func (flag *habitFlag) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*flag = false
		return nil
	}
	if trimmed[0] == '{' {
		var wrapped struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return fmt.Errorf("decode wrapped habit flag: %w", err)
		}
		*flag = habitFlag(wrapped.Value)
		return nil
	}

	var plain bool
	if err := json.Unmarshal(trimmed, &plain); err != nil {
		return fmt.Errorf("decode habit flag: %w", err)
	}
	*flag = habitFlag(plain)
	return nil
}

func (habits *Habits) UnmarshalJSON(raw []byte) error {
	var decoded struct {
		Smoking         habitFlag `json:"smoking"`
		Alcohol         habitFlag `json:"alcohol"`
		HighStress      habitFlag `json:"high_stress"`
		Stress          habitFlag `json:"stress"`
		PoorSleep       habitFlag `json:"poor_sleep"`
		RegularExercise habitFlag `json:"regular_exercise"`
		Exercise        habitFlag `json:"exercise"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	*habits = Habits{
		Smoking:         bool(decoded.Smoking),
		Alcohol:         bool(decoded.Alcohol),
		HighStress:      bool(decoded.HighStress) || bool(decoded.Stress),
		PoorSleep:       bool(decoded.PoorSleep),
		RegularExercise: bool(decoded.RegularExercise) || bool(decoded.Exercise),
	}
	return nil
}
