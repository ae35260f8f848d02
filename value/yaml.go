package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-yaml/ast"
)

// UnmarshalYAML builds the map from a YAML mapping, keeping document order.
// Anchors and tags are resolved to their values; aliases are rejected.
func (m *Map) UnmarshalYAML(node ast.Node) error {
	v, err := nodeToValue(node)
	if err != nil {
		return err
	}
	parsed, ok := v.Map()
	if !ok {
		return fmt.Errorf("%w: got YAML %s", ErrNotObject, node.Type())
	}
	*m = *parsed
	return nil
}

func nodeToValue(node ast.Node) (Value, error) {
	switch n := node.(type) {
	case nil:
		return Null(), nil
	case *ast.NullNode:
		return Null(), nil
	case *ast.StringNode:
		return String(n.Value), nil
	case *ast.LiteralNode:
		if n.Value == nil {
			return String(""), nil
		}
		return String(n.Value.Value), nil
	case *ast.IntegerNode:
		switch i := n.Value.(type) {
		case int64:
			return Int(i), nil
		case uint64:
			if i > math.MaxInt64 {
				return Float(float64(i)), nil
			}
			return Int(int64(i)), nil
		default:
			return Value{}, fmt.Errorf("value: unexpected integer node value type: %T", n.Value)
		}
	case *ast.FloatNode:
		return Float(n.Value), nil
	case *ast.InfinityNode:
		return Float(n.Value), nil
	case *ast.NanNode:
		return Float(math.NaN()), nil
	case *ast.BoolNode:
		return Bool(n.Value), nil
	case *ast.TagNode:
		return nodeToValue(n.Value)
	case *ast.AnchorNode:
		return nodeToValue(n.Value)
	case *ast.SequenceNode:
		items := make([]Value, 0, len(n.Values))
		for index, item := range n.Values {
			v, err := nodeToValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", index, err)
			}
			items = append(items, v)
		}
		return List(items...), nil
	case *ast.MappingValueNode:
		m := NewMap()
		if err := setPair(m, n); err != nil {
			return Value{}, err
		}
		return FromMap(m), nil
	case *ast.MappingNode:
		m := NewMap()
		for _, pair := range n.Values {
			if err := setPair(m, pair); err != nil {
				return Value{}, err
			}
		}
		return FromMap(m), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported YAML node %s", node.Type())
	}
}

func setPair(m *Map, pair *ast.MappingValueNode) error {
	key, err := mappingKey(pair.Key)
	if err != nil {
		return err
	}
	v, err := nodeToValue(pair.Value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	m.Set(key, v)
	return nil
}

func mappingKey(node ast.MapKeyNode) (string, error) {
	switch k := node.(type) {
	case *ast.StringNode:
		return k.Value, nil
	case *ast.IntegerNode:
		return fmt.Sprint(k.Value), nil
	case *ast.BoolNode:
		return strconv.FormatBool(k.Value), nil
	default:
		if tok := node.GetToken(); tok != nil {
			return tok.Value, nil
		}
		return "", fmt.Errorf("value: unsupported YAML mapping key %s", node.Type())
	}
}
