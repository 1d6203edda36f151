package directive

import (
	"sort"

	"katydid-common-validation/pkg/validation/core"
)

// Resolve 对订阅了指定事件的指令做依赖拓扑排序
// 参数：
//
//	event: 生命周期事件
//	active: 当前字段上实际出现的指令名集合
//
// 排序保证：对每条边 a depends_on b，结果中 b 先于 a
// 同层指令按字典序输出，保证结果确定性
//
// 失败情形（均为致命配置错误）：
//   - 指令依赖自身 -> ErrDirectCircularDependency
//   - 依赖目标不在活跃集内 -> ErrInvalidDependency
//   - Kahn排序后有剩余节点 -> ErrIndirectCircularDependency
//     （定论式的剩余节点检查，不采用迭代计数启发式）
func (r *Registry) Resolve(event core.Event, active []string) ([]string, error) {
	// 活跃集内订阅了该事件的节点
	nodes := make(map[string]*core.Descriptor)
	for _, name := range active {
		d, ok := r.Get(name)
		if !ok {
			continue // 未注册指令由引擎的normalize阶段负责报告
		}
		if d.SubscribesTo(event) {
			nodes[name] = d
		}
	}

	// 建边：b -> a 表示 a depends_on b
	indegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))
	for name := range nodes {
		indegree[name] = 0
	}
	for name, d := range nodes {
		for _, dep := range d.DependsOn(event) {
			if dep == name {
				return nil, core.Fatalf(core.ErrDirectCircularDependency,
					"directive %q depends on itself for event %q", name, event)
			}
			if _, ok := nodes[dep]; !ok {
				return nil, core.Fatalf(core.ErrInvalidDependency,
					"directive %q depends on %q which is not present for event %q", name, dep, event)
			}
			successors[dep] = append(successors[dep], name)
			indegree[name]++
		}
	}

	// Kahn：每轮取字典序最小的零入度节点
	ready := make([]string, 0, len(nodes))
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	ordered := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, name)

		released := false
		for _, succ := range successors[name] {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	// 剩余节点即循环成员
	if len(ordered) != len(nodes) {
		var leftover []string
		for name := range nodes {
			found := false
			for _, o := range ordered {
				if o == name {
					found = true
					break
				}
			}
			if !found {
				leftover = append(leftover, name)
			}
		}
		sort.Strings(leftover)
		return nil, core.Fatalf(core.ErrIndirectCircularDependency,
			"directives %v form a dependency cycle for event %q", leftover, event)
	}

	return ordered, nil
}
