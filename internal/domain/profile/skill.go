package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

// Skill is either a bare name or a rated record. Bare names come from the
// background form; rated records come from analysis.
type Skill struct {
	Name     string
	Level    string
	Relevant bool
	rated    bool
}

func NamedSkill(name string) Skill {
	return Skill{Name: name}
}

func RatedSkill(name, level string, relevant bool) Skill {
	return Skill{Name: name, Level: level, Relevant: relevant, rated: true}
}

func (s Skill) IsRated() bool { return s.rated }

// Normalize returns the rated form. Bare names become Intermediate and relevant.
func (s Skill) Normalize() Skill {
	if s.rated {
		if s.Level == "" {
			s.Level = LevelIntermediate
		}
		return s
	}
	return RatedSkill(s.Name, LevelIntermediate, true)
}

type ratedSkillJSON struct {
	Name     string `json:"name"`
	Level    string `json:"level"`
	Relevant *bool  `json:"relevant,omitempty"`
}

func (s Skill) MarshalJSON() ([]byte, error) {
	if !s.rated {
		return json.Marshal(s.Name)
	}
	relevant := s.Relevant
	return json.Marshal(ratedSkillJSON{Name: s.Name, Level: s.Level, Relevant: &relevant})
}

func (s *Skill) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = NamedSkill(name)
		return nil
	}
	var rec ratedSkillJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("skill must be a name or {name, level, relevant}: %w", err)
	}
	relevant := true
	if rec.Relevant != nil {
		relevant = *rec.Relevant
	}
	*s = RatedSkill(rec.Name, rec.Level, relevant)
	return nil
}

// Skills accepts a list of names, a list of rated records, a mix of both, or
// a single comma-separated string.
type Skills []Skill

func (ss *Skills) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ss = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var csv string
		if err := json.Unmarshal(data, &csv); err != nil {
			return err
		}
		*ss = ParseSkillList(csv)
		return nil
	}
	var list []Skill
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*ss = list
	return nil
}

func (ss Skills) MarshalJSON() ([]byte, error) {
	if ss == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Skill(ss))
}

// ParseSkillList splits a comma-separated list into bare names, dropping blanks.
func ParseSkillList(csv string) Skills {
	var out Skills
	for _, part := range strings.Split(csv, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, NamedSkill(name))
		}
	}
	return out
}

// NormalizeSkills is the single read path for current_skills.
func NormalizeSkills(ss Skills) []Skill {
	out := make([]Skill, 0, len(ss))
	for _, s := range ss {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		out = append(out, s.Normalize())
	}
	return out
}

func (ss Skills) Names() []string {
	names := make([]string, 0, len(ss))
	for _, s := range ss {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}
