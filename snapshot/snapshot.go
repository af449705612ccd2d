// Package snapshot stores element graphs in a compact binary form.
//
// A snapshot records element keys, attribute values and text in their
// lexical form together with captured foreign markup. Decoding binds the
// graph again against a schema, so a snapshot taken under one context can be
// restored under another, and every value is checked against its datatype.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/xmlblob"
)

// formatVersion is bumped when the encoding changes incompatibly.
const formatVersion = 1

var errNilElement = errors.New("snapshot: nil element")

type document struct {
	Root    node `msgpack:"r"`
	Version int  `msgpack:"v"`
}

type name struct {
	Space string `msgpack:"s,omitempty"`
	Local string `msgpack:"l"`
}

type node struct {
	Text     *string `msgpack:"t,omitempty"`
	Blob     *blob   `msgpack:"b,omitempty"`
	Name     name    `msgpack:"n"`
	Kind     string  `msgpack:"k,omitempty"`
	Lang     string  `msgpack:"xl,omitempty"`
	Base     string  `msgpack:"xb,omitempty"`
	Attrs    []attr  `msgpack:"a,omitempty"`
	Children []node  `msgpack:"c,omitempty"`
	Datatype uint8   `msgpack:"d"`
}

type attr struct {
	Name     name   `msgpack:"n"`
	Value    string `msgpack:"v"`
	Datatype uint8  `msgpack:"d"`
}

type blob struct {
	Lang       string      `msgpack:"l,omitempty"`
	Base       string      `msgpack:"b,omitempty"`
	FullText   string      `msgpack:"f,omitempty"`
	Namespaces [][2]string `msgpack:"ns,omitempty"`
	Segments   []segment   `msgpack:"s,omitempty"`
}

type segment struct {
	XML      string `msgpack:"x"`
	Position int    `msgpack:"p"`
}

// Encode serializes e and its descendants.
func Encode(e *model.Element) ([]byte, error) {
	if e == nil {
		return nil, errNilElement
	}
	root, err := encodeNode(e)
	if err != nil {
		return nil, err
	}
	data, err := msgpack.Marshal(document{Version: formatVersion, Root: root})
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

func encodeNode(e *model.Element) (node, error) {
	key := e.Key()
	n := node{
		Name:     name{Space: key.Name.Space, Local: key.Name.Local},
		Kind:     key.Kind.Name(),
		Lang:     e.Lang(),
		Base:     e.Base(),
		Datatype: uint8(key.Datatype),
	}
	for _, ak := range e.AttributeKeys() {
		v, _ := e.AttributeValue(ak)
		lexical, err := ak.Datatype.Format(v)
		if err != nil {
			return node{}, fmt.Errorf("snapshot: attribute %s of %s: %w", ak, key, err)
		}
		n.Attrs = append(n.Attrs, attr{
			Name:     name{Space: ak.Name.Space, Local: ak.Name.Local},
			Value:    lexical,
			Datatype: uint8(ak.Datatype),
		})
	}
	if _, ok := e.Text(); ok {
		text := e.TextString()
		n.Text = &text
	}
	if b := e.Blob(); b != nil {
		n.Blob = encodeBlob(b)
	}
	for _, c := range e.Children() {
		child, err := encodeNode(c)
		if err != nil {
			return node{}, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func encodeBlob(b *xmlblob.Blob) *blob {
	out := &blob{Lang: b.Lang, Base: b.Base, FullText: b.FullText}
	for _, ns := range b.Namespaces {
		out.Namespaces = append(out.Namespaces, [2]string{ns.Prefix, ns.URI})
	}
	for _, s := range b.Segments {
		out.Segments = append(out.Segments, segment{XML: s.XML, Position: s.Position})
	}
	return out
}

// Decode restores a graph encoded by Encode, binding metadata from schema in
// ctx. Kinds are matched by name against the keys declared in schema.
// Values that no longer parse as their datatype, and attributes the bound
// metadata does not declare, are reported as *errors.ParseError values.
func Decode(data []byte, schema *model.Schema, ctx model.Context) (*model.Element, error) {
	if schema == nil {
		return nil, errors.New("snapshot: nil schema")
	}
	var doc document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("snapshot: unsupported format version %d", doc.Version)
	}
	d := decoder{kinds: kindsOf(schema)}
	key := d.key(doc.Root, nil)
	root := model.NewElement(schema.Root(key, ctx))
	if err := d.fill(root, doc.Root, "/"+key.Name.Local); err != nil {
		return nil, err
	}
	return root, nil
}

type decoder struct {
	kinds map[string]*model.Kind
}

func kindsOf(schema *model.Schema) map[string]*model.Kind {
	kinds := make(map[string]*model.Kind)
	for _, k := range schema.Keys() {
		for kind := k.Kind; kind != nil; kind = kind.Parent() {
			kinds[kind.Name()] = kind
		}
	}
	return kinds
}

// key resolves the element key of n, preferring the children declared by
// parent.
func (d decoder) key(n node, parent *model.ElementMetadata) model.ElementKey {
	key := model.ElementKey{
		Name:     qname.New(n.Name.Space, n.Name.Local),
		Datatype: model.Datatype(n.Datatype),
	}
	if n.Kind == "" {
		return key
	}
	if parent != nil {
		for _, ck := range parent.ChildKeys() {
			if ck.Name == key.Name && ck.Datatype == key.Datatype && ck.Kind.Name() == n.Kind {
				return ck
			}
		}
	}
	key.Kind = d.kinds[n.Kind]
	return key
}

func (d decoder) fill(e *model.Element, n node, path string) error {
	meta := e.Metadata()
	if n.Kind != "" && e.Key().Kind == nil {
		return located(gdataerrors.NewParsef(gdataerrors.ErrInvalidDeclaration, "Unknown kind: '%s'", n.Kind), path)
	}
	if err := e.SetLang(n.Lang); err != nil {
		return err
	}
	if err := e.SetBase(n.Base); err != nil {
		return err
	}
	for _, a := range n.Attrs {
		ak := model.AttrKey(qname.New(a.Name.Space, a.Name.Local), model.Datatype(a.Datatype))
		if meta.Attribute(ak) == nil {
			return located(gdataerrors.NewParsef(gdataerrors.ErrUnknownAttribute, "Unknown attribute: '%s'", a.Name.Local), path)
		}
		v, err := ak.Datatype.Parse(a.Value)
		if err != nil {
			return located(gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err,
				fmt.Sprintf("Invalid value for attribute: '%s'", a.Name.Local)), path)
		}
		if err := e.SetAttribute(ak, v); err != nil {
			return located(gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, err.Error()), path)
		}
	}
	if n.Text != nil {
		v, err := meta.Datatype().Parse(*n.Text)
		if err != nil {
			return located(gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err,
				"Invalid value for element '"+n.Name.Local+"': "+err.Error()), path)
		}
		if err := e.SetText(v); err != nil {
			return located(gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, err.Error()), path)
		}
	}
	if n.Blob != nil {
		if err := e.SetBlob(decodeBlob(n.Blob)); err != nil {
			return err
		}
	}
	for _, cn := range n.Children {
		key := d.key(cn, meta)
		child := model.NewElement(meta.BindChild(key))
		if err := e.AddElement(child); err != nil {
			return located(gdataerrors.WrapParse(gdataerrors.ErrUnrecognizedElement, err, err.Error()), path)
		}
		if err := d.fill(child, cn, path+"/"+cn.Name.Local); err != nil {
			return err
		}
	}
	return nil
}

func decodeBlob(b *blob) *xmlblob.Blob {
	out := &xmlblob.Blob{Lang: b.Lang, Base: b.Base, FullText: b.FullText}
	for _, ns := range b.Namespaces {
		out.Namespaces = append(out.Namespaces, qname.Namespace{Prefix: ns[0], URI: ns[1]})
	}
	for _, s := range b.Segments {
		out.Segments = append(out.Segments, xmlblob.Segment{XML: s.XML, Position: s.Position})
	}
	return out
}

func located(pe *gdataerrors.ParseError, path string) *gdataerrors.ParseError {
	pe.Element = path
	return pe
}
