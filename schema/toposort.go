// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

// TopoSort reorders f.Messages so that every message appears before any
// message that references it. On success it returns a new *File with
// Messages reordered leaves-first and Cyclic set to false. If the
// message reference graph has a cycle, it returns f unchanged with
// Cyclic set to true; the caller (feature negotiation) demotes type
// annotations in that case rather than treating it as fatal.
func TopoSort(f *File) *File {
	indegree := make(map[string]int, len(f.Messages))
	dependents := make(map[string][]string, len(f.Messages))
	for _, m := range f.Messages {
		indegree[m.Name] = 0
	}
	for _, m := range f.Messages {
		for _, dep := range directDependencies(m) {
			dependents[dep] = append(dependents[dep], m.Name)
			indegree[m.Name]++
		}
	}

	// Kahn's algorithm, seeded with messages in declaration order so the
	// result is deterministic among ties.
	var queue []string
	for _, m := range f.Messages {
		if indegree[m.Name] == 0 {
			queue = append(queue, m.Name)
		}
	}

	byName := make(map[string]*Message, len(f.Messages))
	for _, m := range f.Messages {
		byName[m.Name] = m
	}

	var ordered []*Message
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		ordered = append(ordered, byName[name])
		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(ordered) != len(f.Messages) {
		out := *f
		out.Cyclic = true
		return &out
	}

	out := *f
	out.Messages = ordered
	out.Cyclic = false
	return &out
}

// directDependencies returns the names of the messages m directly
// references through a message-typed field, in field declaration order
// with duplicates removed.
func directDependencies(m *Message) []string {
	var deps []string
	seen := map[string]bool{}
	for _, f := range m.Fields {
		if f.Kind != KindMessage || f.MsgRef == nil {
			continue
		}
		if !seen[f.MsgRef.Name] {
			seen[f.MsgRef.Name] = true
			deps = append(deps, f.MsgRef.Name)
		}
	}
	return deps
}
