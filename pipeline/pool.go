// Copyright 2025 Google LLC
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

// Package pipeline renders the spec's three-stage callback pipeline
// (acquire connection, await HTTP completion, mutate tree and complete) as
// a bounded-concurrency gate a goroutine acquires before making a blocking
// store call, per §9's design notes.
package pipeline

import "context"

// Pool is the Go analogue of §6.4's connection pool acquire/release
// contract: a caller acquires a slot, does its blocking work, then
// releases the slot.
type Pool struct {
	slots chan struct{}
}

// NewPool constructs a pool with the given number of concurrent slots.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Acquire blocks until a slot is available or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the pool.
func (p *Pool) Release() {
	<-p.slots
}

// Do acquires a slot, runs fn, and releases the slot on every return path —
// the idiomatic rendering of "acquire, dispatch, eventually complete" as a
// single blocking call from the calling goroutine's point of view.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.Acquire(ctx); err != nil {
		return err
	}
	defer p.Release()
	return fn(ctx)
}
