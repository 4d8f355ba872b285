package repository

import "os"

// Default permissions for created directories and files.
const (
	defaultDirPerm  os.FileMode = 0o755
	defaultFilePerm os.FileMode = 0o644
	defaultBufSize              = 4096
)

// Option applies a configuration option to the FileProvider.
type Option func(*FileProvider)

// WithDirPerm sets the permission used when creating parent directories.
func WithDirPerm(perm os.FileMode) Option {
	return func(p *FileProvider) {
		if perm != 0 {
			p.dirPerm = perm
		}
	}
}

// WithFilePerm sets the permission used when creating destination files.
func WithFilePerm(perm os.FileMode) Option {
	return func(p *FileProvider) {
		if perm != 0 {
			p.filePerm = perm
		}
	}
}

// WithBufferSize sets the write buffer size per destination.
func WithBufferSize(size int) Option {
	return func(p *FileProvider) {
		if size > 0 {
			p.bufSize = size
		}
	}
}
