package repository

import (
	"bytes"
	"errors"
	"sync"
)

// Fault selects an operation a MemoryProvider should fail for a path.
type Fault int

// Injectable faults.
const (
	FaultOpen Fault = iota + 1
	FaultWrite
	FaultSync
	FaultClose
)

// ErrInjected is returned by operations failed through MemoryProvider.Fail.
var ErrInjected = errors.New("injected destination failure")

// MemoryProvider keeps destinations in memory. Content survives Close so a
// later Open in append mode sees it, the way a file would.
type MemoryProvider struct {
	mu     sync.Mutex
	data   map[string]*bytes.Buffer
	faults map[string]map[Fault]bool
	open   map[string]int
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		data:   make(map[string]*bytes.Buffer),
		faults: make(map[string]map[Fault]bool),
		open:   make(map[string]int),
	}
}

// Fail makes the given operation fail for path until Heal is called.
func (p *MemoryProvider) Fail(path string, f Fault) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.faults[path] == nil {
		p.faults[path] = make(map[Fault]bool)
	}
	p.faults[path][f] = true
}

// Heal clears every fault registered for path.
func (p *MemoryProvider) Heal(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.faults, path)
}

// Seed sets the content of path as if it had been written earlier.
func (p *MemoryProvider) Seed(path, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[path] = bytes.NewBufferString(content)
}

// Contents returns the bytes made durable for path so far.
func (p *MemoryProvider) Contents(path string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok := p.data[path]; ok {
		return b.String()
	}
	return ""
}

// OpenHandles returns the number of sinks opened and not yet closed.
func (p *MemoryProvider) OpenHandles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.open {
		n += c
	}
	return n
}

func (p *MemoryProvider) failing(path string, f Fault) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.faults[path][f]
}

// Open implements Provider.
func (p *MemoryProvider) Open(path string, appendMode bool) (Sink, error) {
	if p.failing(path, FaultOpen) {
		return nil, errors.Join(ErrOpen, ErrInjected)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	s := &memSink{p: p, path: path}
	buf, ok := p.data[path]
	if appendMode && ok && buf.Len() > 0 {
		s.header, s.hasContent = firstLine(buf.Bytes()), true
	}
	if !appendMode || !ok {
		p.data[path] = &bytes.Buffer{}
	}
	p.open[path]++
	return s, nil
}

type memSink struct {
	mu         sync.Mutex
	p          *MemoryProvider
	path       string
	pending    bytes.Buffer
	header     string
	hasContent bool
	closed     bool
}

func (s *memSink) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if s.p.failing(s.path, FaultWrite) {
		return 0, ErrInjected
	}
	return s.pending.Write(b)
}

func (s *memSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.flushLocked()
}

func (s *memSink) flushLocked() error {
	if s.p.failing(s.path, FaultSync) {
		return ErrInjected
	}
	s.p.mu.Lock()
	s.p.data[s.path].Write(s.pending.Bytes())
	s.p.mu.Unlock()
	s.pending.Reset()
	return nil
}

func (s *memSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.flushLocked()

	s.p.mu.Lock()
	s.p.open[s.path]--
	s.p.mu.Unlock()

	if err != nil {
		return err
	}
	if s.p.failing(s.path, FaultClose) {
		return ErrInjected
	}
	return nil
}

func (s *memSink) ExistingHeader() (string, bool) {
	return s.header, s.hasContent
}
