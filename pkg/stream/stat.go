package stream

import (
	"io/fs"
	"path"
	"time"

	"github.com/fystack/kvstream/pkg/common/constant"
)

// Metadata is what FileInfo.Sys returns.
type Metadata struct {
	Scheme     string
	Key        string
	Exists     bool
	Size       int64
	Hits       uint64
	CreatedAt  time.Time
	ModifiedAt time.Time
	AccessedAt time.Time
}

// RawMode is the stat-style mode word: a regular file with 0700.
func (m *Metadata) RawMode() uint32 {
	return constant.FileModeRegular
}

// FileInfo describes a stored value as a regular file.
type FileInfo struct {
	meta *Metadata
}

var _ fs.FileInfo = (*FileInfo)(nil)

func (fi *FileInfo) Name() string {
	return path.Base(fi.meta.Key)
}

func (fi *FileInfo) Size() int64 {
	return fi.meta.Size
}

func (fi *FileInfo) Mode() fs.FileMode {
	return fs.FileMode(constant.FileModeRegular) & fs.ModePerm
}

func (fi *FileInfo) ModTime() time.Time {
	return fi.meta.ModifiedAt
}

func (fi *FileInfo) IsDir() bool { return false }

func (fi *FileInfo) Sys() any { return fi.meta }
