package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// FanoutWriter duplicates every write to all of its targets. A failing target
// does not stop the remaining ones; its error is combined into the result.
type FanoutWriter struct {
	targets []io.Writer
}

func NewFanoutWriter(targets ...io.Writer) *FanoutWriter {
	fw := &FanoutWriter{}
	for _, t := range targets {
		if t != nil {
			fw.targets = append(fw.targets, t)
		}
	}
	return fw
}

func (fw *FanoutWriter) Targets() int {
	return len(fw.targets)
}

// Write returns len(p) when at least one target accepted the whole buffer,
// so a broken log file never silences stdout.
func (fw *FanoutWriter) Write(p []byte) (int, error) {
	var errs error
	accepted := 0
	for _, t := range fw.targets {
		n, err := t.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		accepted++
	}
	if accepted == 0 && len(fw.targets) > 0 {
		return 0, errs
	}
	return len(p), errs
}
