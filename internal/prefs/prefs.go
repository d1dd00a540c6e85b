package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// Preferences is a small string map of user settings (theme, locale hints)
// with validation and stable JSON encoding. It is persisted verbatim in the
// state snapshot and never influences balance computation.
type Preferences map[string]string

const (
	MaxPairs     = 16
	MaxKeyLen    = 40
	MaxValLen    = 128
	MaxTotalJSON = 2048
)

// KeyTheme selects the light/dark rendering of any client.
const KeyTheme = "theme"

func New(m map[string]string) Preferences {
	if m == nil {
		return Preferences{}
	}
	out := make(Preferences, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (p Preferences) Clone() Preferences {
	if p == nil {
		return Preferences{}
	}
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Preferences) Get(k string) (string, bool) { v, ok := p[k]; return v, ok }

func (p Preferences) Validate() error {
	if len(p) > MaxPairs {
		return errors.New("preferences: too many pairs")
	}
	for k, v := range p {
		if len(k) == 0 || len(k) > MaxKeyLen {
			return errors.New("preferences: key empty or too long")
		}
		if len(v) > MaxValLen {
			return errors.New("preferences: value too long")
		}
	}
	b, err := p.MarshalStableJSON()
	if err != nil {
		return err
	}
	if len(b) > MaxTotalJSON {
		return errors.New("preferences: exceeds max json size")
	}
	return nil
}

// MarshalStableJSON returns a deterministic representation with sorted keys,
// so snapshot files do not churn between saves.
func (p Preferences) MarshalStableJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, k := range keys {
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(p[k])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p Preferences) MarshalJSON() ([]byte, error) { return p.MarshalStableJSON() }

func (p *Preferences) UnmarshalJSON(b []byte) error {
	var tmp map[string]string
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = Preferences{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*p = New(tmp)
	return nil
}
