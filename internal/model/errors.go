package model

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrInvalidParameters marks a request that cannot be packed at all.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrNotFound means no cached result exists for a hash: not yet computed or expired.
	ErrNotFound = errors.New("result not found")
	// ErrCacheUnavailable wraps I/O failures talking to the cache store.
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// ParameterError describes one structural problem with a request.
type ParameterError struct {
	Field    string
	Material string
	Reason   string
}

func (e *ParameterError) Error() string {
	if e.Material != "" {
		return fmt.Sprintf("invalid %s for material %q: %s", e.Field, e.Material, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameters
}

// Validate checks the cutting parameters against one board. All violations
// are returned together.
func (cp CuttingParameters) Validate(m Material) error {
	var err error
	if !m.Size().Valid() {
		err = multierr.Append(err, &ParameterError{Field: "size", Material: m.Code, Reason: fmt.Sprintf("%.2f x %.2f is not a positive size", m.Width, m.Height)})
		return err
	}
	values := []struct {
		name string
		v    float64
	}{
		{"kerf", cp.Kerf},
		{"top_trim", cp.TopTrim},
		{"bottom_trim", cp.BottomTrim},
		{"left_trim", cp.LeftTrim},
		{"right_trim", cp.RightTrim},
	}
	finite := true
	for _, f := range values {
		if !Finite(f.v) {
			err = multierr.Append(err, &ParameterError{Field: f.name, Material: m.Code, Reason: "must be a finite number"})
			finite = false
			continue
		}
		if f.v < 0 {
			err = multierr.Append(err, &ParameterError{Field: f.name, Material: m.Code, Reason: "must not be negative"})
		}
	}
	if !finite {
		return err
	}
	if cp.LeftTrim+cp.RightTrim >= m.Width {
		err = multierr.Append(err, &ParameterError{Field: "trims", Material: m.Code,
			Reason: fmt.Sprintf("left+right trim %.2f leaves no usable width of %.2f", cp.LeftTrim+cp.RightTrim, m.Width)})
	}
	if cp.TopTrim+cp.BottomTrim >= m.Height {
		err = multierr.Append(err, &ParameterError{Field: "trims", Material: m.Code,
			Reason: fmt.Sprintf("top+bottom trim %.2f leaves no usable height of %.2f", cp.TopTrim+cp.BottomTrim, m.Height)})
	}
	if cp.Kerf >= m.Width || cp.Kerf >= m.Height {
		err = multierr.Append(err, &ParameterError{Field: "kerf", Material: m.Code,
			Reason: fmt.Sprintf("%.2f exceeds the board dimensions", cp.Kerf)})
	}
	return err
}
