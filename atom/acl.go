package atom

import (
	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/parser"
)

// ScopeType is the kind of grantee of an access rule.
type ScopeType uint8

const (
	ScopeUser ScopeType = iota + 1
	ScopeDomain
	ScopeDefault
)

// ScopeTypes lists every scope type.
var ScopeTypes = []ScopeType{ScopeUser, ScopeDomain, ScopeDefault}

func (s ScopeType) String() string {
	switch s {
	case ScopeUser:
		return "USER"
	case ScopeDomain:
		return "DOMAIN"
	case ScopeDefault:
		return "DEFAULT"
	default:
		return ""
	}
}

// ParseScopeType matches the lower-case attribute form.
func ParseScopeType(value string) (ScopeType, error) {
	return parser.MatchEnum(TypeAttr.Name.Local, value, ScopeTypes, parser.LowerCase[ScopeType])
}

// Scope is the grantee of an access rule. Value is empty for ScopeDefault.
type Scope struct {
	Value string
	Type  ScopeType
}

func (s Scope) validate() error {
	if s.Type == ScopeDefault {
		if s.Value != "" {
			return gdataerrors.NewParse(gdataerrors.ErrInvalidValue, "attribute value should not be set for default type")
		}
		return nil
	}
	if s.Value == "" {
		return gdataerrors.NewParsef(gdataerrors.ErrMissingAttribute, "Missing attribute: '%s'", ValueAttr.Name.Local)
	}
	return nil
}

// AclScope returns the gAcl:scope of an ACL entry.
func AclScope(e *model.Element) (Scope, error) {
	child := e.Element(ScopeKey)
	if child == nil {
		return Scope{}, gdataerrors.NewParsef(gdataerrors.ErrMissingElement, "Required element %s is missing.", ScopeKey.Name.Local)
	}
	v, _ := model.Attr[string](child, TypeAttr)
	typ, err := ParseScopeType(v)
	if err != nil {
		return Scope{}, err
	}
	s := Scope{Type: typ}
	s.Value, _ = model.Attr[string](child, ValueAttr)
	return s, s.validate()
}

// SetAclScope replaces the gAcl:scope of e.
func SetAclScope(e *model.Element, s Scope) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.Type.String() == "" {
		return gdataerrors.NewParsef(gdataerrors.ErrInvalidEnum, "Invalid scope type: %d", s.Type)
	}
	if err := e.RemoveElement(ScopeKey); err != nil {
		return err
	}
	child := model.NewElement(e.Metadata().BindChild(ScopeKey))
	if err := child.SetAttribute(TypeAttr, parser.LowerCase(s.Type)); err != nil {
		return err
	}
	if s.Value != "" {
		if err := child.SetAttribute(ValueAttr, s.Value); err != nil {
			return err
		}
	}
	return e.AddElement(child)
}

// AclRole returns the gAcl:role value of e, or "".
func AclRole(e *model.Element) string {
	if child := e.Element(RoleKey); child != nil {
		v, _ := model.Attr[string](child, ValueAttr)
		return v
	}
	return ""
}
