package midi

import (
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// Ports lists the port names of the MIDI driver
type Ports struct {
	Ins  []string
	Outs []string
}

// ErrPortsTimeout is returned when the driver does not answer in time
var ErrPortsTimeout = errors.New("midi: port enumeration timed out")

// ListPorts enumerates ports, giving up after timeout (CoreMIDI can hang)
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		var p Ports
		for _, in := range gomidi.GetInPorts() {
			p.Ins = append(p.Ins, in.String())
		}
		for _, out := range gomidi.GetOutPorts() {
			p.Outs = append(p.Outs, out.String())
		}
		ch <- p
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrPortsTimeout
	}
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}
