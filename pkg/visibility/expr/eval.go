package expr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/visibility"
)

// Evaluator compiles and runs predicates against visibility.Context values.
// It keeps no state between calls.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// Eval implements visibility.Evaluator. A blank predicate is always visible.
func (e *Evaluator) Eval(fieldKey, predicate string, ctx visibility.Context) (bool, error) {
	_ = fieldKey
	program, err := Compile(predicate)
	if err != nil {
		return false, err
	}
	return program.Eval(ctx.Values)
}

// Eval runs the program with values bound to its single variable.
func (p *Program) Eval(values map[string]any) (bool, error) {
	if p == nil || p.root == nil {
		return true, nil
	}
	if values == nil {
		values = map[string]any{}
	}
	result, err := p.root.eval(values)
	if err != nil {
		return false, err
	}
	return truthy(result), nil
}

type node interface {
	eval(values map[string]any) (any, error)
}

type orNode struct {
	left  node
	right node
}

func (n orNode) eval(values map[string]any) (any, error) {
	left, err := n.left.eval(values)
	if err != nil {
		return nil, err
	}
	if truthy(left) {
		return true, nil
	}
	right, err := n.right.eval(values)
	if err != nil {
		return nil, err
	}
	return truthy(right), nil
}

type andNode struct {
	left  node
	right node
}

func (n andNode) eval(values map[string]any) (any, error) {
	left, err := n.left.eval(values)
	if err != nil {
		return nil, err
	}
	if !truthy(left) {
		return false, nil
	}
	right, err := n.right.eval(values)
	if err != nil {
		return nil, err
	}
	return truthy(right), nil
}

type notNode struct {
	inner node
}

func (n notNode) eval(values map[string]any) (any, error) {
	inner, err := n.inner.eval(values)
	if err != nil {
		return nil, err
	}
	return !truthy(inner), nil
}

type literalNode struct {
	value any
}

func (n literalNode) eval(map[string]any) (any, error) { return n.value, nil }

type pathNode struct {
	segments []string
}

func (n pathNode) eval(values map[string]any) (any, error) {
	var current any = values
	for _, segment := range n.segments {
		next, ok := member(current, segment)
		if !ok {
			return nil, nil
		}
		current = next
	}
	return current, nil
}

func member(current any, name string) (any, bool) {
	switch typed := current.(type) {
	case map[string]any:
		value, ok := typed[name]
		return value, ok
	case map[string]string:
		value, ok := typed[name]
		return value, ok
	case []any:
		if name == "length" {
			return len(typed), true
		}
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil, false
		}
		return typed[idx], true
	case []string:
		if name == "length" {
			return len(typed), true
		}
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil, false
		}
		return typed[idx], true
	case string:
		if name == "length" {
			return len([]rune(typed)), true
		}
		return nil, false
	default:
		return nil, false
	}
}

type compareNode struct {
	op    tokenKind
	left  node
	right node
}

func (n compareNode) eval(values map[string]any) (any, error) {
	left, err := n.left.eval(values)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(values)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokenEq:
		return looseEqual(left, right), nil
	case tokenNeq:
		return !looseEqual(left, right), nil
	case tokenStrictEq:
		return strictEqual(left, right), nil
	case tokenStrictNeq:
		return !strictEqual(left, right), nil
	case tokenLt, tokenLte, tokenGt, tokenGte:
		cmp, ok := order(left, right)
		if !ok {
			return false, nil
		}
		switch n.op {
		case tokenLt:
			return cmp < 0, nil
		case tokenLte:
			return cmp <= 0, nil
		case tokenGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	default:
		return nil, fmt.Errorf("visibility/expr: unsupported operator")
	}
}

func looseEqual(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if lb, ok := left.(bool); ok {
		rb, _ := coerceBool(right)
		return lb == rb
	}
	if rb, ok := right.(bool); ok {
		lb, _ := coerceBool(left)
		return lb == rb
	}
	ln, lok := coerceNumber(left)
	rn, rok := coerceNumber(right)
	if lok && rok && (isNumber(left) || isNumber(right)) {
		return ln == rn
	}
	return coerceString(left) == coerceString(right)
}

func strictEqual(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	switch l := left.(type) {
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	}
	if isNumber(left) && isNumber(right) {
		ln, _ := coerceNumber(left)
		rn, _ := coerceNumber(right)
		return ln == rn
	}
	return false
}

func order(left, right any) (int, bool) {
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return strings.Compare(ls, rs), true
		}
	}
	ln, lok := coerceNumber(left)
	rn, rok := coerceNumber(right)
	if !lok || !rok {
		return 0, false
	}
	switch {
	case ln < rn:
		return -1, true
	case ln > rn:
		return 1, true
	default:
		return 0, true
	}
}

func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return true
	case map[string]any:
		return true
	default:
		if n, ok := coerceNumber(value); ok && isNumber(value) {
			return n != 0
		}
		return true
	}
}

func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}

func coerceBool(value any) (bool, bool) {
	if value == nil {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
		return v != "", true
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
