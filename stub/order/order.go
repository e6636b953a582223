// Package order sorts class definitions so that every class follows the
// classes it depends on.
//
// Bases and classes named in default values are hard dependencies: the stub
// would not load without them. Property types are soft: an annotation can
// name a class defined later, so a soft edge is dropped to break a cycle.
package order

import (
	"regexp"
	"strings"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/stub"
)

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

type edge struct {
	to   int
	soft bool
}

type color int

const (
	white color = iota
	gray
	black
)

// Sort returns classes in dependency order. Classes without dependencies
// keep their relative source order. A cycle made only of hard edges is
// reported as errors.ErrDependencyCycle.
func Sort(classes []*stub.Class) ([]*stub.Class, error) {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c.Name]; !dup {
			index[c.Name] = i
		}
	}

	graph := make([][]edge, len(classes))
	for i, c := range classes {
		graph[i] = dependencies(i, c, index)
	}

	for {
		s := &sorter{classes: classes, graph: graph, colors: make([]color, len(classes))}
		for i := range classes {
			if s.cycle != nil {
				break
			}
			s.visit(i)
		}
		if s.cycle == nil {
			return s.out, nil
		}

		from, at, ok := softEdge(graph, s.cycle)
		if !ok {
			return nil, errors.Wrap(errors.ErrDependencyCycle, s.describe())
		}
		graph[from] = append(graph[from][:at:at], graph[from][at+1:]...)
	}
}

// dependencies lists the distinct in-list classes that c refers to, hard
// edges first. Self references are ignored.
func dependencies(self int, c *stub.Class, index map[string]int) []edge {
	var edges []edge
	seen := map[int]bool{self: true}
	add := func(name string, soft bool) {
		if i, ok := index[name]; ok && !seen[i] {
			seen[i] = true
			edges = append(edges, edge{to: i, soft: soft})
		}
	}

	for _, b := range c.Bases {
		add(b, false)
	}
	for _, fn := range c.Methods {
		for _, ov := range fn.Overloads {
			for _, p := range ov.Params {
				if p.HasDefault {
					add(defaultClass(p.Default), false)
				}
			}
		}
	}
	for _, p := range c.Properties {
		for _, name := range identRe.FindAllString(p.Type, -1) {
			add(name, true)
		}
	}
	return edges
}

// defaultClass returns the class a default literal is built from:
// "FBVector3d(0, 0, 0)" and "FBAttach.kNone" both name their leading identifier.
func defaultClass(literal string) string {
	end := strings.IndexAny(literal, "(.")
	if end <= 0 {
		return ""
	}
	name := strings.TrimSpace(literal[:end])
	if identRe.FindString(name) != name {
		return ""
	}
	return name
}

type sorter struct {
	classes []*stub.Class
	graph   [][]edge
	colors  []color
	path    []int
	out     []*stub.Class
	cycle   []int // closed path: first == last
}

func (s *sorter) visit(i int) {
	switch s.colors[i] {
	case black:
		return
	case gray:
		for k, n := range s.path {
			if n == i {
				s.cycle = append(append([]int(nil), s.path[k:]...), i)
				return
			}
		}
		return
	}

	s.colors[i] = gray
	s.path = append(s.path, i)
	for _, e := range s.graph[i] {
		s.visit(e.to)
		if s.cycle != nil {
			return
		}
	}
	s.path = s.path[:len(s.path)-1]
	s.colors[i] = black
	s.out = append(s.out, s.classes[i])
}

func (s *sorter) describe() string {
	names := make([]string, len(s.cycle))
	for k, i := range s.cycle {
		names[k] = s.classes[i].Name
	}
	return strings.Join(names, " -> ")
}

// softEdge finds a soft edge along cycle and returns its owner and position.
func softEdge(graph [][]edge, cycle []int) (int, int, bool) {
	for k := 0; k+1 < len(cycle); k++ {
		from, to := cycle[k], cycle[k+1]
		for at, e := range graph[from] {
			if e.to == to && e.soft {
				return from, at, true
			}
		}
	}
	return 0, 0, false
}
