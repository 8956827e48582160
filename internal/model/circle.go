package model

import (
	"errors"
	"fmt"
	"strings"
)

// Circle is the domain model for a managed circle.
// ID is assigned by the backend and stays empty until the record is persisted.
type Circle struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	Avatar string `json:"avatar"`
}

// Persisted reports whether the backend has assigned an id.
func (c Circle) Persisted() bool { return c.ID != "" }

// ErrInvalid marks a draft that failed client-side validation.
var ErrInvalid = errors.New("invalid draft")

// Draft is either a NewDraft or an ExistingPatch.
type Draft interface {
	isDraft()
}

// NewDraft is a record that has never been persisted.
type NewDraft struct {
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	Avatar string `json:"avatar"`
}

// ExistingPatch changes a persisted record. Nil fields are left untouched.
type ExistingPatch struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Desc   *string `json:"desc,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

func (NewDraft) isDraft()      {}
func (ExistingPatch) isDraft() {}

// Validate checks the required fields of a new record.
func (d NewDraft) Validate() error {
	return validateFields(d.Name, d.Desc, d.Avatar)
}

// Normalize trims surrounding whitespace from every field.
func (d NewDraft) Normalize() NewDraft {
	return NewDraft{
		Name:   strings.TrimSpace(d.Name),
		Desc:   strings.TrimSpace(d.Desc),
		Avatar: strings.TrimSpace(d.Avatar),
	}
}

// Validate checks that the patch names a record and that no set field is blank.
func (p ExistingPatch) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	fields := []struct {
		label string
		value *string
	}{
		{"name", p.Name},
		{"description", p.Desc},
		{"avatar", p.Avatar},
	}
	for _, f := range fields {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalid, f.label)
		}
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p ExistingPatch) Empty() bool {
	return p.Name == nil && p.Desc == nil && p.Avatar == nil
}

// Apply returns c with the patch's set fields written over it.
func (p ExistingPatch) Apply(c Circle) Circle {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Desc != nil {
		c.Desc = *p.Desc
	}
	if p.Avatar != nil {
		c.Avatar = *p.Avatar
	}
	return c
}

// Diff builds the patch turning current into next. Only changed fields are set.
func Diff(current Circle, next NewDraft) ExistingPatch {
	p := ExistingPatch{ID: current.ID}
	if next.Name != current.Name {
		p.Name = &next.Name
	}
	if next.Desc != current.Desc {
		p.Desc = &next.Desc
	}
	if next.Avatar != current.Avatar {
		p.Avatar = &next.Avatar
	}
	return p
}

func validateFields(name, desc, avatar string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalid)
	case strings.TrimSpace(desc) == "":
		return fmt.Errorf("%w: description cannot be empty", ErrInvalid)
	case strings.TrimSpace(avatar) == "":
		return fmt.Errorf("%w: avatar is required", ErrInvalid)
	}
	return nil
}
