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

package workspace

import "sync"

type msg[T any] struct {
	content T
	done    chan struct{}
	stopped <-chan struct{}
}

// wait blocks until m has been handled and reports whether it was.
func (m *msg[T]) wait() bool {
	select {
	case <-m.done:
		return true
	case <-m.stopped:
		// Both may be ready, in which case select picks either.
		select {
		case <-m.done:
			return true
		default:
			return false
		}
	}
}

// A mailbox delivers messages to a single goroutine running serve.
type mailbox[T any] struct {
	ch       chan *msg[T]
	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{
		ch:      make(chan *msg[T]),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// send delivers content, waiting for it to be handled if wait is set.
// It reports false if the mailbox has stopped.
func (mb *mailbox[T]) send(content T, wait bool) bool {
	m := &msg[T]{
		content: content,
		done:    make(chan struct{}),
		stopped: mb.stopped,
	}
	select {
	case <-mb.stopped:
		return false
	case mb.ch <- m:
	}
	if wait {
		return m.wait()
	}
	return true
}

// serve handles messages in order until stop is called.
func (mb *mailbox[T]) serve(handle func(T)) {
	defer close(mb.stopped)
	for {
		select {
		case m := <-mb.ch:
			handle(m.content)
			close(m.done)
		case <-mb.quit:
			return
		}
	}
}

// stop ends serve and waits for it to return. It is idempotent.
func (mb *mailbox[T]) stop() {
	mb.stopOnce.Do(func() { close(mb.quit) })
	<-mb.stopped
}
