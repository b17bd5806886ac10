package indoor

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"wayfinder/core-go/internal/maperr"
)

const draftPrefix = "draft:"

// Ref identifies a map, node or edge. It is either Persisted (a storage id) or a
// Draft (a local reference for an entity that has not been saved yet). The zero
// Ref means "no identity assigned".
type Ref struct {
	id    int64
	local string
}

// Persisted returns the ref of a stored entity. id must be positive.
func Persisted(id int64) Ref { return Ref{id: id} }

// Draft returns a fresh local ref.
func Draft() Ref { return Ref{local: uuid.NewString()} }

// DraftRef rebuilds a draft ref from its local part.
func DraftRef(local string) Ref { return Ref{local: local} }

func (r Ref) IsZero() bool { return r.id == 0 && r.local == "" }

func (r Ref) IsDraft() bool { return r.local != "" }

func (r Ref) IsPersisted() bool { return r.id > 0 }

// ID returns the storage id and true when r is persisted.
func (r Ref) ID() (int64, bool) { return r.id, r.id > 0 }

func (r Ref) String() string {
	switch {
	case r.local != "":
		return draftPrefix + r.local
	case r.id > 0:
		return strconv.FormatInt(r.id, 10)
	default:
		return ""
	}
}

// ParseRef accepts "42" and "draft:<local>".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if local, ok := strings.CutPrefix(s, draftPrefix); ok {
		if local == "" {
			return Ref{}, maperr.New(maperr.CodeValidation, "empty draft reference")
		}
		return DraftRef(local), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Ref{}, maperr.New(maperr.CodeValidation, "invalid reference %q", s)
	}
	return Persisted(id), nil
}

// CompareRefs orders persisted refs by id, then drafts by local part, then zero refs.
func CompareRefs(a, b Ref) int {
	rank := func(r Ref) int {
		switch {
		case r.IsPersisted():
			return 0
		case r.IsDraft():
			return 1
		default:
			return 2
		}
	}
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.id, b.id); c != 0 {
		return c
	}
	return cmp.Compare(a.local, b.local)
}

// MarshalJSON writes persisted refs as numbers, drafts as strings and zero as null.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch {
	case r.IsDraft():
		return json.Marshal(r.String())
	case r.IsPersisted():
		return []byte(strconv.FormatInt(r.id, 10)), nil
	default:
		return []byte("null"), nil
	}
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*r = Ref{}
			return nil
		}
		parsed, err := ParseRef(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("ref: %w", err)
	}
	if id <= 0 {
		return maperr.New(maperr.CodeValidation, "invalid reference %d", id)
	}
	*r = Persisted(id)
	return nil
}
