package params

import (
	"strconv"
	"strings"

	"katydid-common-validation/pkg/validation/core"

	"github.com/spf13/cast"
)

// 嵌套树与扁平键空间的互转
// 键约定："." 连接map路径，":" 连接数组下标，可任意组合（a:0.b.c:2）
// 往返律：对仅由 map[string]any / []any / 字符串标量构成的树 t，
// UnflattenTree(FlattenTree(t)) == t

// FlattenTree 将嵌套树压平为 键 -> 标量 映射
// 树中的叶子必须是标量（字符串/数字/布尔），遇到无法转换的叶子返回错误
func FlattenTree(tree map[string]any) (map[string]string, error) {
	flat := make(map[string]string)
	if err := flattenInto(flat, "", tree); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenInto(flat map[string]string, prefix string, node any) error {
	switch tv := node.(type) {
	case map[string]any:
		for k, v := range tv {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenInto(flat, key, v); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, v := range tv {
			if err := flattenInto(flat, prefix+":"+strconv.Itoa(i), v); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for i, v := range tv {
			flat[prefix+":"+strconv.Itoa(i)] = v
		}
		return nil
	default:
		s, err := cast.ToStringE(node)
		if err != nil {
			return core.Fatalf(core.ErrMalformedParameter, "key %q: leaf %T is not a scalar", prefix, node)
		}
		flat[prefix] = s
		return nil
	}
}

// UnflattenTree 从扁平键空间重建嵌套树
// 稀疏数组的空洞填为nil；非法下标段按字面map键处理
func UnflattenTree(flat map[string]string) map[string]any {
	var root any = make(map[string]any)
	for key, value := range flat {
		root = place(root, splitKey(key), value)
	}
	return root.(map[string]any)
}

// keyToken 键路径的一段：map键名或数组下标
type keyToken struct {
	name    string
	index   int
	isIndex bool
}

// splitKey 解析扁平键为路径段序列
// "a:0.b" -> [map键a, 下标0, map键b]
// ":"后跟非数字的段不视为下标，并回字面键名（"a:x" -> map键"a:x"）
func splitKey(key string) []keyToken {
	var tokens []keyToken
	for _, chunk := range strings.Split(key, ".") {
		parts := strings.Split(chunk, ":")
		name := parts[0]
		// 非数字的":"段并回键名
		rest := parts[1:]
		for len(rest) > 0 {
			if _, err := strconv.Atoi(rest[0]); err == nil {
				break
			}
			name = name + ":" + rest[0]
			rest = rest[1:]
		}
		tokens = append(tokens, keyToken{name: name})
		for _, idx := range rest {
			n, err := strconv.Atoi(idx)
			if err != nil {
				// 混合段（a:0:x），剩余部分并回为键名
				tokens = append(tokens, keyToken{name: idx})
				continue
			}
			tokens = append(tokens, keyToken{index: n, isIndex: true})
		}
	}
	return tokens
}

// place 按路径段把标量放进树中，沿途创建map/数组容器
// 返回（可能因扩容而更换的）容器，调用方负责回写
func place(node any, tokens []keyToken, value string) any {
	if len(tokens) == 0 {
		return value
	}

	tok := tokens[0]
	if tok.isIndex {
		slice, _ := node.([]any)
		for len(slice) <= tok.index {
			slice = append(slice, nil)
		}
		slice[tok.index] = place(slice[tok.index], tokens[1:], value)
		return slice
	}

	m, ok := node.(map[string]any)
	if !ok || m == nil {
		m = make(map[string]any)
	}
	m[tok.name] = place(m[tok.name], tokens[1:], value)
	return m
}
