//go:build linux

package h2f

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MMIO is the bridge mapped from physical memory.
type MMIO struct {
	RegFile
	fd  int
	mem []byte
}

// Open maps span bytes of the device at base. Failure here is fatal for the
// instrument; callers report it and exit.
func Open(path string, base int64, span int) (*MMIO, error) {
	if span < (WordInputs+1)*4 {
		return nil, errors.Errorf("bridge span 0x%x too small", span)
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	mem, err := unix.Mmap(fd, base, span, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "failed to mmap 0x%x", base)
	}
	m := &MMIO{fd: fd, mem: mem}
	m.RegFile = NewRegFile(m.store)
	return m, nil
}

func (m *MMIO) word(i int) *uint32 {
	return (*uint32)(unsafe.Pointer(&m.mem[i*4]))
}

func (m *MMIO) store(i int, v uint32) {
	atomic.StoreUint32(m.word(i), v)
}

func (m *MMIO) Inputs() uint32 {
	return atomic.LoadUint32(m.word(WordInputs))
}

// Close unmaps the window and closes the device.
func (m *MMIO) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	if cerr := unix.Close(m.fd); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "failed to release bridge")
}
