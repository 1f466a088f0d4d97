package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultLanguage is the fixed fallback for localized text resolution.
const DefaultLanguage = "en"

// LocalizedString is a backend text field that is either a plain string or a
// map of language code to translation. The map's key order as it appeared in
// the JSON document is preserved, because "first available translation" is
// part of the resolution contract.
//
// The zero value is valid and resolves to the empty string.
type LocalizedString struct {
	plain   string
	isPlain bool
	langs   []string
	values  map[string]string
}

// NewLocalizedString returns a plain (non-localized) value.
func NewLocalizedString(s string) LocalizedString {
	return LocalizedString{plain: s, isPlain: true}
}

// NewLocalizedMap builds a localized value from ordered language/text pairs.
func NewLocalizedMap(pairs ...[2]string) LocalizedString {
	ls := LocalizedString{values: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		if _, seen := ls.values[p[0]]; !seen {
			ls.langs = append(ls.langs, p[0])
		}
		ls.values[p[0]] = p[1]
	}
	return ls
}

// Resolve picks the best-matching variant for lang: the exact language,
// else DefaultLanguage, else the first entry in document order, else "".
func (ls LocalizedString) Resolve(lang string) string {
	if ls.isPlain {
		return ls.plain
	}
	if len(ls.langs) == 0 {
		return ""
	}
	if v, ok := ls.values[lang]; ok {
		return v
	}
	if v, ok := ls.values[DefaultLanguage]; ok {
		return v
	}
	return ls.values[ls.langs[0]]
}

// IsZero reports whether no value is present at all.
func (ls LocalizedString) IsZero() bool {
	return !ls.isPlain && len(ls.langs) == 0
}

func (ls LocalizedString) String() string {
	return ls.Resolve(DefaultLanguage)
}

// UnmarshalJSON accepts a JSON string, a language map, or null. Map key
// order is captured via a streaming decode.
func (ls *LocalizedString) UnmarshalJSON(data []byte) error {
	*ls = LocalizedString{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		ls.isPlain = true
		return json.Unmarshal(trimmed, &ls.plain)
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil { // opening brace
			return err
		}
		ls.values = make(map[string]string)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("localized string: unexpected key token %v", keyTok)
			}
			var val string
			if err := dec.Decode(&val); err != nil {
				return fmt.Errorf("localized string: value for %q: %w", key, err)
			}
			if _, seen := ls.values[key]; !seen {
				ls.langs = append(ls.langs, key)
			}
			ls.values[key] = val
		}
		_, err := dec.Token() // closing brace
		return err
	default:
		return fmt.Errorf("localized string: unsupported JSON value %s", trimmed)
	}
}

// MarshalJSON writes back the original shape: a plain string, an object in
// the captured key order, or null when empty.
func (ls LocalizedString) MarshalJSON() ([]byte, error) {
	if ls.isPlain {
		return json.Marshal(ls.plain)
	}
	if len(ls.langs) == 0 {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lang := range ls.langs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(lang)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ls.values[lang])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
