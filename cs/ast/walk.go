// Copyright 2026 The Continuum Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ast

// Walk traverses a declaration tree in depth-first order: It starts by
// calling before(node); node must not be nil. If before returns true,
// Walk invokes itself recursively for each of the children of node,
// followed by a call of after. Both functions may be nil.
func Walk(node Node, before func(Node) bool, after func(Node)) {
	if before != nil && !before(node) {
		return
	}
	for _, c := range node.Children() {
		Walk(c, before, after)
	}
	if after != nil {
		after(node)
	}
}

// Path returns the chain of nodes from root down to the innermost node
// whose span contains offset, root first. It returns nil if root itself
// does not contain offset.
func Path(root Node, offset int) []Node {
	if !root.Span().Contains(offset) {
		return nil
	}
	path := []Node{root}
	for n := root; ; {
		var next Node
		for _, c := range n.Children() {
			if c.Span().Contains(offset) {
				next = c
				// Keep looking: when one construct ends exactly where the
				// next begins the later one wins.
			}
		}
		if next == nil {
			return path
		}
		path = append(path, next)
		n = next
	}
}

// Types calls f for every type declaration in file, including nested types,
// in source order. Iteration stops if f returns false.
func Types(file *File, f func(*TypeDecl) bool) {
	var visitNS func(*Namespace) bool
	var visitType func(*TypeDecl) bool
	visitType = func(t *TypeDecl) bool {
		if !f(t) {
			return false
		}
		for _, n := range t.Types() {
			if !visitType(n) {
				return false
			}
		}
		return true
	}
	visitNS = func(ns *Namespace) bool {
		for _, t := range ns.Types {
			if !visitType(t) {
				return false
			}
		}
		for _, n := range ns.Namespaces {
			if !visitNS(n) {
				return false
			}
		}
		return true
	}
	if file != nil && file.Namespace != nil {
		visitNS(file.Namespace)
	}
}
