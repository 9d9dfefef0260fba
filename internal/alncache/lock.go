package alncache

import (
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var (
	dirLocks   sync.Map // normalized path -> *sync.RWMutex
	dirLocksMu sync.Mutex
)

// DirLock returns the process-wide reader/writer lock of a cache
// directory. Paths naming the same directory share one lock.
func DirLock(dir string) (*sync.RWMutex, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "normalize cache dir: %s", dir)
	}
	path = filepath.Clean(path)

	if l, ok := dirLocks.Load(path); ok {
		return l.(*sync.RWMutex), nil
	}

	dirLocksMu.Lock()
	defer dirLocksMu.Unlock()

	if l, ok := dirLocks.Load(path); ok {
		return l.(*sync.RWMutex), nil
	}
	l := &sync.RWMutex{}
	dirLocks.Store(path, l)
	return l, nil
}
