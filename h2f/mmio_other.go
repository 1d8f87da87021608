//go:build !linux

package h2f

import "github.com/pkg/errors"

// MMIO is only available on the HPS (linux).
type MMIO struct {
	RegFile
}

func Open(path string, base int64, span int) (*MMIO, error) {
	return nil, errors.Errorf("failed to open %s: memory-mapped bridge requires linux", path)
}

func (m *MMIO) Inputs() uint32 { return ButtonsMask }

func (m *MMIO) Close() error { return nil }
