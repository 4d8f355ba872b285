package repository

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileProvider opens destinations as files on the local filesystem.
type FileProvider struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
	bufSize  int
}

// NewFileProvider creates a file-backed provider.
func NewFileProvider(opts ...Option) *FileProvider {
	p := &FileProvider{
		dirPerm:  defaultDirPerm,
		filePerm: defaultFilePerm,
		bufSize:  defaultBufSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open implements Provider. Parent directories are created as needed.
func (p *FileProvider) Open(path string, appendMode bool) (Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), p.dirPerm); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}

	s := &fileSink{path: path}
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		header, ok, err := readFirstLine(path)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
		}
		s.header, s.hasContent = header, ok
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, p.filePerm) //nolint:gosec // path is built from the configured data dir
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	s.f = f
	s.w = bufio.NewWriterSize(f, p.bufSize)
	return s, nil
}

// readFirstLine reports the first line of an existing non-empty file.
func readFirstLine(path string) (string, bool, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the configured data dir
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer func() { _ = f.Close() }()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if line == "" {
		return "", false, nil
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

type fileSink struct {
	mu         sync.Mutex
	path       string
	f          *os.File
	w          *bufio.Writer
	header     string
	hasContent bool
	closed     bool
}

func (s *fileSink) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.w.Write(b)
}

func (s *fileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("fsync %s: %w", s.path, err)
	}
	return nil
}

// Close always releases the file handle, even when the final flush fails.
func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.w.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush %s: %w", s.path, err))
	}
	if err := s.f.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("fsync %s: %w", s.path, err))
	}
	if err := s.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", s.path, err))
	}
	return errors.Join(errs...)
}

func (s *fileSink) ExistingHeader() (string, bool) {
	return s.header, s.hasContent
}
