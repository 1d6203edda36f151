package core

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"
)

// ValueKind 指令值的类型标签
// 设计目标：用带标签的变体类型代替运行时类型嗅探
// 指令值在字段构建时解码一次，之后的访问不再做类型断言
type ValueKind int

const (
	// KindNone 零值，表示指令未设置
	KindNone ValueKind = iota
	// KindScalar 标量字符串值
	KindScalar
	// KindList 有序字符串列表值（multi指令合并的结果）
	KindList
	// KindCallback 无参回调值（延迟求值，如default指令的动态默认值）
	KindCallback
)

// Value 指令值的带标签变体：Scalar | List | Callback
// 不可变：所有修改操作返回新的 Value，已有实例可被多个字段安全共享
type Value struct {
	kind     ValueKind
	scalar   string
	list     []string
	callback func() string
}

// Scalar 构造标量值
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List 构造列表值（拷贝输入切片）
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Callback 构造回调值
func Callback(fn func() string) Value {
	return Value{kind: KindCallback, callback: fn}
}

// None 返回未设置的零值
func None() Value {
	return Value{}
}

// FromAny 将任意输入解码为 Value
// 支持：字符串/数字/布尔（转为标量）、字符串切片、any切片、无参回调
// 其他类型（嵌套map等）返回 ErrMalformedValue
func FromAny(v any) (Value, error) {
	switch tv := v.(type) {
	case nil:
		return None(), nil
	case Value:
		return tv, nil
	case string:
		return Scalar(tv), nil
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return Scalar(cast.ToString(tv)), nil
	case []string:
		return List(tv...), nil
	case []any:
		items := make([]string, 0, len(tv))
		for _, item := range tv {
			s, err := cast.ToStringE(item)
			if err != nil {
				return None(), fmt.Errorf("%w: list element %v", ErrMalformedValue, item)
			}
			items = append(items, s)
		}
		return List(items...), nil
	case func() string:
		return Callback(tv), nil
	default:
		return None(), fmt.Errorf("%w: unsupported type %T", ErrMalformedValue, v)
	}
}

// Kind 返回值的类型标签
func (v Value) Kind() ValueKind { return v.kind }

// IsZero 判断值是否未设置或为空
// 标量空字符串、空列表均视为空；回调永远视为非空（求值前无法判断）
func (v Value) IsZero() bool {
	switch v.kind {
	case KindNone:
		return true
	case KindScalar:
		return v.scalar == ""
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// Scalar 返回标量形式
// 列表值返回首元素，回调值触发求值
func (v Value) Scalar() string {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		if len(v.list) > 0 {
			return v.list[0]
		}
		return ""
	case KindCallback:
		if v.callback != nil {
			return v.callback()
		}
		return ""
	default:
		return ""
	}
}

// List 返回列表形式（标量值包装为单元素列表）
func (v Value) List() []string {
	switch v.kind {
	case KindList:
		cp := make([]string, len(v.list))
		copy(cp, v.list)
		return cp
	case KindScalar:
		return []string{v.scalar}
	case KindCallback:
		if v.callback != nil {
			return []string{v.callback()}
		}
		return nil
	default:
		return nil
	}
}

// Bool 返回标量的布尔解释（"1"/"true"/"yes"/"on" 为真）
func (v Value) Bool() bool {
	switch v.Scalar() {
	case "1", "true", "yes", "on", "+":
		return true
	default:
		return false
	}
}

// Int 返回标量的整数解释，非数字返回0
func (v Value) Int() int {
	return cast.ToInt(v.Scalar())
}

// Contains 判断列表形式是否包含指定元素
func (v Value) Contains(item string) bool {
	for _, s := range v.List() {
		if s == item {
			return true
		}
	}
	return false
}

// Union 合并两个值为去重后的列表值（multi指令的合并语义）
// 保持接收者元素在前、参数元素在后的相对顺序，重复元素只保留首次出现
func (v Value) Union(other Value) Value {
	seen := make(map[string]struct{})
	var merged []string
	for _, s := range append(v.List(), other.List()...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
	}
	return Value{kind: KindList, list: merged}
}

// Equal 判断两个值是否相等（回调值按指针不可比，恒为不等）
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindScalar:
		return v.scalar == other.scalar
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String 实现 fmt.Stringer
func (v Value) String() string {
	switch v.kind {
	case KindList:
		sorted := v.List()
		sort.Strings(sorted)
		return fmt.Sprintf("%v", sorted)
	case KindCallback:
		return "<callback>"
	default:
		return v.Scalar()
	}
}
