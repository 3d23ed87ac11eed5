package league

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Extras holds object keys a record does not declare. They are written back
// after the declared fields, so tools that add their own keys to rounds or
// pairings keep them across commits.
type Extras map[string]json.RawMessage

var declaredKeysByType sync.Map

func declaredKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := declaredKeysByType.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		keys[name] = struct{}{}
	}
	declaredKeysByType.Store(t, keys)
	return keys
}

// decodeRecord fills dst, a pointer to a method-free alias of the record, and
// returns the keys it does not declare.
func decodeRecord(raw []byte, dst any) (Extras, error) {
	if err := codec.Unmarshal(raw, dst); err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var all map[string]json.RawMessage
	if err := codec.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	declared := declaredKeys(reflect.TypeOf(dst).Elem())

	var extras Extras
	for key, value := range all {
		if _, ok := declared[key]; ok {
			continue
		}
		if extras == nil {
			extras = make(Extras)
		}
		extras[key] = value
	}
	return extras, nil
}

// encodeRecord renders src, a method-free alias of the record, and appends
// extras in key order.
func encodeRecord(src any, extras Extras) ([]byte, error) {
	raw, err := codec.Marshal(src)
	if err != nil || len(extras) == 0 {
		return raw, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) < 2 || raw[len(raw)-1] != '}' {
		return nil, fmt.Errorf("encode %T: expected a JSON object", src)
	}

	keys := make([]string, 0, len(extras))
	for key := range extras {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]byte, 0, len(raw)+64*len(keys))
	out = append(out, raw[:len(raw)-1]...)
	for _, key := range keys {
		if out[len(out)-1] != '{' {
			out = append(out, ',')
		}
		name, err := codec.Marshal(key)
		if err != nil {
			return nil, err
		}
		out = append(out, name...)
		out = append(out, ':')
		value := extras[key]
		if len(bytes.TrimSpace(value)) == 0 {
			value = json.RawMessage("null")
		}
		out = append(out, value...)
	}
	return append(out, '}'), nil
}

type (
	documentRecord Document
	infoRecord     Info
	leagueRecord   League
	playerRecord   Player
	roundRecord    Round
	matchRecord    Match
	frameRecord    Frame
)

func (d Document) MarshalJSON() ([]byte, error) {
	return encodeRecord(documentRecord(d), d.Extra)
}

func (d *Document) UnmarshalJSON(raw []byte) error {
	var rec documentRecord
	extras, err := decodeRecord(raw, &rec)
	if err != nil {
		return err
	}
	*d = Document(rec)
	d.Extra = extras
	return nil
}

func (i Info) MarshalJSON() ([]byte, error) {
	return encodeRecord(infoRecord(i), i.Extra)
}

func (i *Info) UnmarshalJSON(raw []byte) error {
	var rec infoRecord
	extras, err := decodeRecord(raw, &rec)
	if err != nil {
		return err
	}
	*i = Info(rec)
	i.Extra = extras
	return nil
}

func (l League) MarshalJSON() ([]byte, error) {
	return encodeRecord(leagueRecord(l), l.Extra)
}

func (l *League) UnmarshalJSON(raw []byte) error {
	var rec leagueRecord
	extras, err := decodeRecord(raw, &rec)
	if err != nil {
		return err
	}
	*l = League(rec)
	l.Extra = extras
	return nil
}

func (p Player) MarshalJSON() ([]byte, error) {
	return encodeRecord(playerRecord(p), p.Extra)
}

func (p *Player) UnmarshalJSON(raw []byte) error {
	var rec playerRecord
	extras, err := decodeRecord(raw, &rec)
	if err != nil {
		return err
	}
	*p = Player(rec)
	p.Extra = extras
	return nil
}

func (r Round) MarshalJSON() ([]byte, error) {
	return encodeRecord(roundRecord(r), r.Extra)
}

func (r *Round) UnmarshalJSON(raw []byte) error {
	var rec roundRecord
	extras, err := decodeRecord(raw, &rec)
	if err != nil {
		return err
	}
	*r = Round(rec)
	r.Extra = extras
	return nil
}

func (m Match) MarshalJSON() ([]byte, error) {
	return encodeRecord(matchRecord(m), m.Extra)
}

func (m *Match) UnmarshalJSON(raw []byte) error {
	var rec matchRecord
	extras, err := decodeRecord(raw, &rec)
	if err != nil {
		return err
	}
	*m = Match(rec)
	m.Extra = extras
	return nil
}

func (f Frame) MarshalJSON() ([]byte, error) {
	return encodeRecord(frameRecord(f), f.Extra)
}

func (f *Frame) UnmarshalJSON(raw []byte) error {
	var rec frameRecord
	extras, err := decodeRecord(raw, &rec)
	if err != nil {
		return err
	}
	*f = Frame(rec)
	f.Extra = extras
	return nil
}
