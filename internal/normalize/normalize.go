// Package normalize turns raw image-extraction payloads into validated
// RawResultRecord lists. Payloads come from an external vision service and
// arrive imperfect: sometimes a JSON array, sometimes a single object,
// sometimes wrapped in code fences or prose. Cleaning is best effort.
// Validation is strict: records that fail it are dropped with a reason,
// never coerced.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"scrimtally/internal/model"
)

// ErrNoPayload is returned when a payload contains nothing parseable at all.
var ErrNoPayload = errors.New("no parseable JSON in payload")

// Outcome is the result of parsing one payload: the records that survived
// validation and a reason per record that did not.
type Outcome struct {
	Records []model.RawResultRecord
	Dropped []string
}

// Clean strips code-fence wrappers and leading/trailing non-JSON characters
// from a payload. Recovery only; the result may still be invalid JSON.
func Clean(payload string) string {
	s := strings.TrimSpace(payload)

	// Code fences, with or without a language tag.
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
			s = s[nl+1:] // drop the "json" tag line
		}
	}

	// Trim to the outermost bracket pair.
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndexAny(s, "]}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

// ParsePayload cleans and parses one extraction payload. The payload may be
// a JSON array of result records or a single record object. It returns
// ErrNoPayload (wrapped) when nothing parseable remains after cleaning;
// individual invalid records land in Outcome.Dropped.
func ParsePayload(payload string) (Outcome, error) {
	cleaned := Clean(payload)
	if cleaned == "" {
		return Outcome{}, ErrNoPayload
	}
	if !gjson.Valid(cleaned) {
		return Outcome{}, fmt.Errorf("malformed JSON: %w", ErrNoPayload)
	}

	parsed := gjson.Parse(cleaned)
	var candidates []gjson.Result
	switch {
	case parsed.IsArray():
		candidates = parsed.Array()
	case parsed.IsObject():
		candidates = []gjson.Result{parsed}
	default:
		return Outcome{}, fmt.Errorf("payload is neither array nor object: %w", ErrNoPayload)
	}

	var out Outcome
	for i, c := range candidates {
		rec, reason := validateRecord(c)
		if reason != "" {
			out.Dropped = append(out.Dropped, fmt.Sprintf("record %d: %s", i+1, reason))
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// validateRecord checks one candidate object against the record contract:
// placement present and > 0, players an array of exactly MaxTeamSize
// non-empty strings, kills a non-negative number. Returns the record and an
// empty reason on success.
func validateRecord(c gjson.Result) (model.RawResultRecord, string) {
	if !c.IsObject() {
		return model.RawResultRecord{}, "not an object"
	}

	placement := c.Get("placement")
	if !placement.Exists() || placement.Int() <= 0 {
		return model.RawResultRecord{}, "missing placement"
	}

	playersVal := c.Get("players")
	if !playersVal.IsArray() {
		return model.RawResultRecord{}, "players is not an array"
	}
	playerList := playersVal.Array()
	if len(playerList) != model.MaxTeamSize {
		return model.RawResultRecord{}, fmt.Sprintf("expected %d players, got %d", model.MaxTeamSize, len(playerList))
	}
	players := make([]string, 0, model.MaxTeamSize)
	for _, p := range playerList {
		name := strings.TrimSpace(p.String())
		if name == "" || p.Type != gjson.String {
			return model.RawResultRecord{}, "empty or non-string player name"
		}
		players = append(players, name)
	}

	kills := c.Get("kills")
	if !kills.Exists() || kills.Type != gjson.Number {
		return model.RawResultRecord{}, "kills is not a number"
	}
	if kills.Int() < 0 {
		return model.RawResultRecord{}, "negative kills"
	}

	teamName := strings.TrimSpace(c.Get("teamName").String())
	if teamName == "" {
		teamName = strings.TrimSpace(c.Get("team").String())
	}

	return model.RawResultRecord{
		Slot:      int(c.Get("slot").Int()),
		TeamName:  teamName,
		Placement: int(placement.Int()),
		Players:   players,
		Kills:     int(kills.Int()),
	}, ""
}

// ParseRoster decodes a roster payload: {"teams":[{"slot","name","players"}]}.
// Teams with more than MaxTeamSize players keep only the first MaxTeamSize.
func ParseRoster(payload string) ([]model.Team, error) {
	cleaned := Clean(payload)
	if cleaned == "" {
		return nil, ErrNoPayload
	}
	var frag struct {
		Teams []model.Team `json:"teams"`
	}
	if err := json.Unmarshal([]byte(cleaned), &frag); err != nil {
		return nil, fmt.Errorf("parse roster payload: %w", err)
	}
	if len(frag.Teams) == 0 {
		return nil, fmt.Errorf("roster payload has no teams: %w", ErrNoPayload)
	}
	for i := range frag.Teams {
		frag.Teams[i].Name = strings.TrimSpace(frag.Teams[i].Name)
		if len(frag.Teams[i].Players) > model.MaxTeamSize {
			frag.Teams[i].Players = frag.Teams[i].Players[:model.MaxTeamSize]
		}
	}
	return frag.Teams, nil
}
