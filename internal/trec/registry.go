package trec

import (
	"io"
	"strings"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
)

const (
	registryFields = 7
	runGroupFields = 2
	poolFields     = 7
)

// DefaultTrack is the registry track whose runs are registered.
const DefaultTrack = "adhoc"

// ReadRegistry reads a colon-delimited run table
// (run:pid:_:track:_:_:task) and registers the runs of track.
func ReadRegistry(path, track string) (*Registry, error) {
	reg := NewRegistry()
	err := readFile(path, splitRegistry, registryLine(path, track, reg))
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ParseRegistry is ReadRegistry over a reader.
func ParseRegistry(name string, r io.Reader, track string) (*Registry, error) {
	reg := NewRegistry()
	if err := scan(name, r, splitRegistry, registryLine(name, track, reg)); err != nil {
		return nil, err
	}
	return reg, nil
}

func registryLine(name, track string, reg *Registry) lineFunc {
	return func(lineNo int, fields []string) error {
		if err := expectFields(name, lineNo, fields, registryFields); err != nil {
			return err
		}
		if strings.TrimSpace(fields[3]) != track {
			return nil
		}
		run, pid := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if err := reg.Add(run, pid); err != nil {
			return apperrors.MalformedInputError(name, lineNo, err.Error())
		}
		return nil
	}
}

// ReadRunGroups reads a "runtag pid" list.
func ReadRunGroups(path string) (*Registry, error) {
	reg := NewRegistry()
	if err := readFile(path, strings.Fields, runGroupLine(path, reg)); err != nil {
		return nil, err
	}
	return reg, nil
}

// ParseRunGroups is ReadRunGroups over a reader.
func ParseRunGroups(name string, r io.Reader) (*Registry, error) {
	reg := NewRegistry()
	if err := scan(name, r, strings.Fields, runGroupLine(name, reg)); err != nil {
		return nil, err
	}
	return reg, nil
}

func runGroupLine(name string, reg *Registry) lineFunc {
	return func(lineNo int, fields []string) error {
		if err := expectFields(name, lineNo, fields, runGroupFields); err != nil {
			return err
		}
		if err := reg.Add(fields[0], fields[1]); err != nil {
			return apperrors.MalformedInputError(name, lineNo, err.Error())
		}
		return nil
	}
}

// ReadAnnotatedRunGroups collects the run -> group mapping from an
// annotated pool or provenance qrels file
// (topic docid run group rank score rel).
func ReadAnnotatedRunGroups(path string) (*Registry, error) {
	reg := NewRegistry()
	err := readFile(path, strings.Fields, func(lineNo int, fields []string) error {
		if err := expectFields(path, lineNo, fields, poolFields); err != nil {
			return err
		}
		if err := reg.Add(fields[2], fields[3]); err != nil {
			return apperrors.MalformedInputError(path, lineNo, err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}
