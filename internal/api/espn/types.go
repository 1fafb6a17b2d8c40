package espn

import (
	"encoding/json"
	"strconv"
)

// Wire types for the ESPN site API. Only the fields the pipeline consumes.

type scoreboardResponse struct {
	Events []event `json:"events"`
}

type scheduleResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
	Venue       struct {
		FullName string `json:"fullName"`
	} `json:"venue"`
	Status struct {
		Type struct {
			Description string `json:"description"`
			Completed   bool   `json:"completed"`
		} `json:"type"`
	} `json:"status"`
}

type competitor struct {
	HomeAway string    `json:"homeAway"`
	Score    flexScore `json:"score"`
	Team     struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"team"`
}

// flexScore absorbs the three shapes ESPN uses for a score: a bare number,
// a numeric string, or an object with a "value" field. Anything else is
// recorded as invalid and discarded downstream.
type flexScore struct {
	Value int
	Valid bool
}

func (s *flexScore) UnmarshalJSON(data []byte) error {
	s.Valid = false
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		s.Value = int(num)
		s.Valid = s.Value >= 0
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.Atoi(str); err == nil && v >= 0 {
			s.Value = v
			s.Valid = true
		}
		return nil
	}

	var obj struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Value != nil {
		s.Value = int(*obj.Value)
		s.Valid = s.Value >= 0
		return nil
	}

	// Unknown shape is not fatal, the game is just unusable
	return nil
}
