/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dop251/goja"

	"github.com/suparena/dynascript/errors"
)

// errExecLimit is the interrupt value used when a job exceeds the
// execution limit.
const errExecLimit = "execution limit exceeded"

// newError builds the Error object a promise is rejected with. It carries
// the error's kind and keeps the Go error for the way back.
func (h *Host) newError(err error) goja.Value {
	obj, cerr := h.vm.New(h.vm.Get("Error"), h.vm.ToValue(err.Error()))
	if cerr != nil {
		return h.vm.ToValue(err.Error())
	}
	_ = obj.Set("kind", errors.KindOf(err))
	_ = obj.DefineDataPropertySymbol(h.errSym, h.vm.ToValue(err), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	return obj
}

// wrappedError returns the Go error behind an Error object made by newError.
func (h *Host) wrappedError(v goja.Value) error {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	inner := obj.GetSymbol(h.errSym)
	if inner == nil || goja.IsUndefined(inner) {
		return nil
	}
	err, _ := inner.Export().(error)
	return err
}

// toError converts a rejection reason into a Go error.
func (h *Host) toError(reason goja.Value) error {
	if err := h.wrappedError(reason); err != nil {
		return err
	}
	if reason == nil || goja.IsUndefined(reason) {
		return &ScriptError{Message: "promise rejected without a reason"}
	}
	return &ScriptError{Message: reason.String()}
}

// scriptError converts an error returned by the runtime into a Go error.
func (h *Host) scriptError(script string, err error) error {
	var interrupted *goja.InterruptedError
	if stderrors.As(err, &interrupted) {
		if interrupted.Value() == errExecLimit {
			return errors.NewTimeoutError("script execution", h.limit, 1)
		}
		return &ScriptError{Script: script, Message: interrupted.Error()}
	}

	var ex *goja.Exception
	if stderrors.As(err, &ex) {
		if inner := h.wrappedError(ex.Value()); inner != nil {
			return inner
		}
		return &ScriptError{Script: script, Message: ex.Error()}
	}
	return err
}

// attributeValue converts a stored attribute into a script value.
func (h *Host) attributeValue(av types.AttributeValue) goja.Value {
	if av == nil {
		return goja.Undefined()
	}

	var v any
	if err := attributevalue.Unmarshal(av, &v); err != nil {
		h.logger.Debug("cannot convert attribute value", "error", err)
		return goja.Undefined()
	}
	if list, ok := v.([]string); ok {
		return h.vm.ToValue(stringsToValues(list))
	}
	return h.vm.ToValue(v)
}

// fromValue converts a script value assigned to attr into an attribute value.
func (h *Host) fromValue(attr string, v goja.Value) (types.AttributeValue, error) {
	exported := v.Export()

	switch x := exported.(type) {
	case *itemObject:
		return &types.AttributeValueMemberM{Value: x.row.Item()}, nil
	case *rowObject:
		return &types.AttributeValueMemberM{Value: x.row.Item()}, nil
	case *resultSetObject:
		return nil, errors.NewTypeMismatchError(attr, "attribute value", "ResultSet")
	}

	av, err := attributevalue.Marshal(exported)
	if err != nil {
		return nil, errors.NewTypeMismatchError(attr, "attribute value", jsTypeName(v))
	}
	return av, nil
}

func jsTypeName(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}

	switch x := v.Export().(type) {
	case string:
		return "string"
	case int64, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", x)
	}
}

func stringsToValues(list []string) []any {
	values := make([]any, len(list))
	for i, s := range list {
		values[i] = s
	}
	return values
}
