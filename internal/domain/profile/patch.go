package profile

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Patch is a partial profile keyed by JSON field name. Applying it overwrites
// the named top-level keys and leaves the rest alone.
type Patch map[string]any

// Merge folds other into a copy of p. Later keys win.
func (p Patch) Merge(other Patch) Patch {
	out := make(Patch, len(p)+len(other))
	maps.Copy(out, p)
	maps.Copy(out, other)
	return out
}

// Without drops the given keys from a copy of p.
func (p Patch) Without(keys ...string) Patch {
	out := maps.Clone(p)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Apply returns p with patch merged on top. The merge runs on the JSON
// document, so unknown keys are kept in Extra. A value whose shape does not
// fit its field returns ErrInvalidPatch and the receiver is untouched.
func (p Profile) Apply(patch Patch) (Profile, error) {
	if len(patch) == 0 {
		return p, nil
	}
	base, err := json.Marshal(p)
	if err != nil {
		return p, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(base, &doc); err != nil {
		return p, err
	}
	for k, v := range patch {
		raw, err := json.Marshal(v)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", ErrInvalidPatch, k, err)
		}
		doc[k] = raw
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return p, err
	}
	var out Profile
	if err := json.Unmarshal(merged, &out); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return out, nil
}
