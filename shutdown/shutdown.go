// Package shutdown runs teardown hooks in priority order, either for a
// scoped resource lifetime (a mounted widget) or for the whole process.
package shutdown

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

const (
	PriorityIngress       = 0
	PriorityDefault       = 100
	PriorityRasterizers   = 200
	PrioritySubscriptions = 300
	PriorityCritical      = 400
)

type Hook struct {
	label    string
	priority int
	seq      int
	fn       func()
	index    int // for heap interface
}

type HookHeap []*Hook

func (h HookHeap) Len() int { return len(h) }

// Less orders by priority, then newest first like deferred calls.
func (h HookHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq > h[j].seq
}

func (h HookHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *HookHeap) Push(x interface{}) {
	n := len(*h)
	item := x.(*Hook)
	item.index = n
	*h = append(*h, item)
}

func (h *HookHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	*h = old[0 : n-1]
	return item
}

// Scope owns a set of hooks that run together when the scope closes.
type Scope struct {
	label  string
	mu     sync.Mutex
	hooks  HookHeap
	seq    int
	closed bool
}

// NewScope creates an open scope.
func NewScope(label string) *Scope {
	return &Scope{label: label}
}

// Add registers a hook with default priority
func (s *Scope) Add(label string, fn func()) {
	s.AddWithPriority(label, PriorityDefault, fn)
}

// AddWithPriority registers a hook with a specific priority. A hook added
// after the scope closed runs immediately.
func (s *Scope) AddWithPriority(label string, priority int, fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logger.Debugf("%s already closed, running hook %s now", s.label, label)
		run(&Hook{label: label, priority: priority, fn: fn})
		return
	}
	s.seq++
	heap.Push(&s.hooks, &Hook{label: label, priority: priority, seq: s.seq, fn: fn})
	s.mu.Unlock()
}

// AddCloser registers c.Close as a hook; errors are logged.
func (s *Scope) AddCloser(label string, priority int, c io.Closer) {
	s.AddWithPriority(label, priority, func() {
		if err := c.Close(); err != nil {
			logger.Warnf("Closing %s: %v", label, err)
		}
	})
}

// Closed reports whether Close has run.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close executes all registered hooks in priority order. Later calls do
// nothing.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	if len(hooks) == 0 {
		return
	}
	logger.Debugf("Executing %d %s shutdown hooks", len(hooks), s.label)

	// Execute hooks in priority order (lowest priority first)
	for hooks.Len() > 0 {
		run(heap.Pop(&hooks).(*Hook))
	}
}

func run(hook *Hook) {
	logger.Debugf("Executing shutdown hook: %s (priority=%d)", hook.label, hook.priority)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Panic in shutdown hook %s: %v", hook.label, r)
		}
	}()
	hook.fn()
}

var process = NewScope("process")

// AddHook registers a process shutdown hook with default priority
func AddHook(label string, fn func()) {
	process.Add(label, fn)
}

// AddHookWithPriority registers a process shutdown hook with specific priority
func AddHookWithPriority(label string, priority int, fn func()) {
	process.AddWithPriority(label, priority, fn)
}

// Shutdown executes all process hooks in priority order
func Shutdown() {
	process.Close()
}

// NotifyContext returns a context cancelled on the first interrupt or
// SIGTERM. A second signal exits immediately.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived %s - initiating graceful shutdown...\n", sig)
			fmt.Fprintf(os.Stderr, "   Press Ctrl+C again to force immediate exit\n\n")
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			return
		}
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nForce exit\n")
		os.Exit(1)
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
