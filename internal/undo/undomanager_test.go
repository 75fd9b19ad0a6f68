/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestUndoRedoRestoresStates(t *testing.T) {
	m := NewManager(Config{MaxDepth: 10})
	sc := "chart"
	// states: a -> b -> c, snapshots hold the state before each change
	m.Push(Snapshot{Scope: sc, Label: "drag", Blob: []byte("a")})
	m.Push(Snapshot{Scope: sc, Label: "drag", Blob: []byte("b")})

	s, ok := m.Undo(sc, []byte("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	s, ok = m.Undo(sc, []byte("b"))
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("undo expected 'a', got ok=%v blob=%q", ok, s.Blob)
	}
	if m.CanUndo(sc) {
		t.Fatalf("undo stack should be empty")
	}
	s, ok = m.Redo(sc, []byte("a"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	s, ok = m.Redo(sc, []byte("b"))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, s.Blob)
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	m.Push(Snapshot{Scope: "x", Blob: []byte("1")})
	m.Undo("x", []byte("2"))
	if !m.CanRedo("x") {
		t.Fatalf("expected redo available")
	}
	m.Push(Snapshot{Scope: "x", Blob: []byte("3")})
	if m.CanRedo("x") {
		t.Fatalf("new change must invalidate redo")
	}
}

func TestCoalesceKeepsOlderState(t *testing.T) {
	m := NewManager(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.Push(Snapshot{Scope: "x", Label: "drag", Blob: []byte("1"), TS: t0})
	m.Push(Snapshot{Scope: "x", Label: "drag", Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)})
	m.Push(Snapshot{Scope: "x", Label: "draw", Blob: []byte("3"), TS: t0.Add(20 * time.Millisecond)})
	if _, _, depth := m.Stats(); depth != 2 {
		t.Fatalf("expected 2 snapshots after coalescing, got %d", depth)
	}
	m.Undo("x", nil)
	s, _ := m.Undo("x", nil)
	if string(s.Blob) != "1" {
		t.Fatalf("expected the older drag state, got %q", s.Blob)
	}
}

func TestDepthAndByteCaps(t *testing.T) {
	m := NewManager(Config{MaxDepth: 2})
	for _, b := range []string{"a", "b", "c"} {
		m.Push(Snapshot{Scope: "x", Blob: []byte(b)})
	}
	if _, _, depth := m.Stats(); depth != 2 {
		t.Fatalf("depth cap not enforced: %d", depth)
	}

	m = NewManager(Config{MaxBytes: 4})
	t0 := time.Now()
	m.Push(Snapshot{Scope: "a", Blob: []byte("123"), TS: t0})
	m.Push(Snapshot{Scope: "b", Blob: []byte("45"), TS: t0.Add(time.Second)})
	total, scopes, _ := m.Stats()
	if total > 4 || scopes != 1 || m.CanUndo("a") {
		t.Fatalf("byte cap should prune the oldest scope entry: total=%d scopes=%d", total, scopes)
	}
	m.Clear("b")
	if total, _, _ = m.Stats(); total != 0 {
		t.Fatalf("clear should release bytes, got %d", total)
	}
}
