/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pointer delivers pointer events to gesture state machines.
//
// A Bus is the document-scoped listener registry: gestures attach move/up
// listeners at gesture start and remove them through the returned Handle.
// An Owner is the single token deciding which state machine currently
// captures the pointer; the host chart pans or zooms only when nobody does.
package pointer

// Kind names a pointer event.
type Kind uint8

const (
	Down Kind = iota
	Up
	Move
	Click
	DblClick
	Over
	Out
	kindCount
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "mousedown"
	case Up:
		return "mouseup"
	case Move:
		return "mousemove"
	case Click:
		return "click"
	case DblClick:
		return "dblclick"
	case Over:
		return "mouseover"
	case Out:
		return "mouseout"
	}
	return "unknown"
}

// Button identifies the pressed mouse button.
type Button uint8

const (
	Primary Button = iota
	Secondary
	Middle
)

// Event is a normalized pointer event in chart coordinates.
type Event struct {
	Kind   Kind
	X, Y   float64
	Button Button
}

type handler struct {
	id uint32
	fn func(Event)
}

// Bus is a per-kind handler registry.
type Bus struct {
	handlers [kindCount][]handler
	nextID   uint32
}

// Handle removes a registered callback.
type Handle struct {
	id   uint32
	bus  *Bus
	kind Kind
}

// On registers fn for events of kind k.
func (b *Bus) On(k Kind, fn func(Event)) Handle {
	b.nextID++
	id := b.nextID
	b.handlers[k] = append(b.handlers[k], handler{id: id, fn: fn})
	return Handle{id: id, bus: b, kind: k}
}

// Remove unregisters the callback. Removing twice or removing the zero
// Handle does nothing.
func (h Handle) Remove() {
	if h.bus == nil {
		return
	}
	s := h.bus.handlers[h.kind]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = handler{}
			h.bus.handlers[h.kind] = s[:len(s)-1]
			return
		}
	}
}

// Active reports whether h is still registered.
func (h Handle) Active() bool {
	if h.bus == nil {
		return false
	}
	for _, x := range h.bus.handlers[h.kind] {
		if x.id == h.id {
			return true
		}
	}
	return false
}

// Dispatch calls the handlers of e.Kind in registration order. Handlers
// added or removed while dispatching take effect on the next event.
func (b *Bus) Dispatch(e Event) {
	if e.Kind >= kindCount {
		return
	}
	hs := append([]handler(nil), b.handlers[e.Kind]...)
	for _, h := range hs {
		h.fn(e)
	}
}

// Count reports how many handlers are registered for k.
func (b *Bus) Count(k Kind) int {
	if k >= kindCount {
		return 0
	}
	return len(b.handlers[k])
}
