package model

import "github.com/jacoelho/gdata/pkg/qname"

// Kind discriminates representations that share an element name, such as a
// generic Atom entry and a service-specific entry. Kinds form a parent chain;
// a kind inherits the declarations of its ancestors.
type Kind struct {
	parent   *Kind
	name     string
	element  qname.QName
	datatype Datatype
}

// NewKind declares a kind for elements named element. parent may be nil.
func NewKind(name string, element qname.QName, datatype Datatype, parent *Kind) *Kind {
	return &Kind{name: name, element: element, datatype: datatype, parent: parent}
}

// Name returns the kind name used in configuration and catalogs.
func (k *Kind) Name() string {
	if k == nil {
		return ""
	}
	return k.name
}

// Parent returns the kind this one extends, or nil.
func (k *Kind) Parent() *Kind {
	if k == nil {
		return nil
	}
	return k.parent
}

// Key returns the element key of this kind.
func (k *Kind) Key() ElementKey {
	return ElementKey{Name: k.element, Datatype: k.datatype, Kind: k}
}

// Is reports whether k is other or extends it.
func (k *Kind) Is(other *Kind) bool {
	for cur := k; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Ancestors returns the kind chain from the root kind down to k.
func (k *Kind) Ancestors() []*Kind {
	var chain []*Kind
	for cur := k; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (k *Kind) String() string {
	return k.Name()
}

// ElementKey identifies an element by name, text datatype and kind.
type ElementKey struct {
	Kind     *Kind
	Name     qname.QName
	Datatype Datatype
}

// Key returns an element key without a kind.
func Key(name qname.QName, datatype Datatype) ElementKey {
	return ElementKey{Name: name, Datatype: datatype}
}

// IsZero reports whether the key is unset.
func (k ElementKey) IsZero() bool {
	return k.Name.IsZero() && k.Kind == nil
}

// Matches reports whether k can stand in for declared: same name and
// datatype, and a kind that is or extends the declared kind.
func (k ElementKey) Matches(declared ElementKey) bool {
	if k.Name != declared.Name || k.Datatype != declared.Datatype {
		return false
	}
	if declared.Kind == nil {
		return true
	}
	return k.Kind.Is(declared.Kind)
}

// lineage returns the keys whose declarations k inherits, least derived first,
// ending with k itself.
func (k ElementKey) lineage() []ElementKey {
	if k.Kind == nil {
		return []ElementKey{k}
	}
	out := []ElementKey{{Name: k.Name, Datatype: k.Datatype}}
	for _, kind := range k.Kind.Ancestors() {
		key := kind.Key()
		if kind == k.Kind {
			key = k
		}
		out = append(out, key)
	}
	return out
}

func (k ElementKey) String() string {
	s := k.Name.String()
	if k.Kind != nil {
		s += "[" + k.Kind.Name() + "]"
	}
	return s
}

// AttributeKey identifies an attribute by name and value datatype.
type AttributeKey struct {
	Name     qname.QName
	Datatype Datatype
}

// AttrKey returns an attribute key.
func AttrKey(name qname.QName, datatype Datatype) AttributeKey {
	return AttributeKey{Name: name, Datatype: datatype}
}

func (k AttributeKey) String() string {
	return k.Name.String()
}
