package atom

import (
	"strings"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/parser"
)

// OperationType is the batch:operation type of an entry.
type OperationType uint8

const (
	OperationInsert OperationType = iota + 1
	OperationUpdate
	OperationDelete
	OperationQuery
)

// OperationTypes lists every operation type.
var OperationTypes = []OperationType{OperationInsert, OperationUpdate, OperationDelete, OperationQuery}

func (o OperationType) String() string {
	switch o {
	case OperationInsert:
		return "INSERT"
	case OperationUpdate:
		return "UPDATE"
	case OperationDelete:
		return "DELETE"
	case OperationQuery:
		return "QUERY"
	default:
		return ""
	}
}

// ParseOperationType matches value case-insensitively.
func ParseOperationType(value string) (OperationType, error) {
	return parser.MatchEnum(TypeAttr.Name.Local, strings.ToUpper(value), OperationTypes, OperationType.String)
}

// Operation returns the batch operation declared on e. ok is false when e
// has no batch:operation child.
func Operation(e *model.Element) (op OperationType, ok bool, err error) {
	child := e.Element(BatchOperationKey)
	if child == nil {
		return 0, false, nil
	}
	v, _ := model.Attr[string](child, TypeAttr)
	op, err = ParseOperationType(v)
	if err != nil {
		return 0, true, err
	}
	return op, true, nil
}

// SetOperation replaces the batch operation of e.
func SetOperation(e *model.Element, op OperationType) error {
	if op.String() == "" {
		return gdataerrors.NewParsef(gdataerrors.ErrInvalidEnum, "Invalid batch operation: %d", op)
	}
	if err := e.RemoveElement(BatchOperationKey); err != nil {
		return err
	}
	child := model.NewElement(e.Metadata().BindChild(BatchOperationKey))
	if err := child.SetAttribute(TypeAttr, strings.ToLower(op.String())); err != nil {
		return err
	}
	return e.AddElement(child)
}

// Status is the result of one batch operation.
type Status struct {
	Code        int
	Reason      string
	ContentType string
	Detail      string
}

// BatchStatus returns the batch:status of e.
func BatchStatus(e *model.Element) (Status, bool) {
	child := e.Element(BatchStatusKey)
	if child == nil {
		return Status{}, false
	}
	s := Status{Detail: child.TextString()}
	s.Code, _ = model.Attr[int](child, CodeAttr)
	s.Reason, _ = model.Attr[string](child, ReasonAttr)
	s.ContentType, _ = model.Attr[string](child, ContentTypeAttr)
	return s, true
}
