package tkv

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Giulio2002/tkv/internal/engine/bolt"
	"github.com/Giulio2002/tkv/internal/engine/mdbx"
)

// dataFormat describes how to recognize the data file of a backend.
type dataFormat struct {
	backend Backend
	file    string
	size    int
	check   func([]byte) error
}

var dataFormats = []dataFormat{
	{BackendMDBX, mdbx.DataFile, mdbx.HeaderSize, mdbx.CheckHeader},
	{BackendBolt, bolt.DataFile, bolt.HeaderSize, bolt.CheckHeader},
}

// DetectBackend reports which engine created the environment in dir by
// reading the header of its data file. It fails with NotFound when dir holds
// no environment, InvalidFile or VersionMismatch when the header is not
// usable, and IncompatibleOptions when data files of both engines exist.
func DetectBackend(dir string) (Backend, error) {
	b, found, err := detectBackend(dir)
	if err != nil {
		return b, err
	}
	if !found {
		return b, newError(opOpen, NotFound, "no environment in directory")
	}
	return b, nil
}

func detectBackend(dir string) (Backend, bool, error) {
	var (
		found   bool
		backend Backend
	)
	for _, f := range dataFormats {
		header, err := readHeader(filepath.Join(dir, f.file), f.size)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, false, &Error{Kind: Unknown, Op: opOpen, Message: "cannot read data file", Err: err}
		}
		if found {
			return 0, false, newError(opOpen, IncompatibleOptions, "directory holds data files of several engines")
		}
		if err := f.check(header); err != nil {
			return 0, false, translate(opOpen, err)
		}
		found, backend = true, f.backend
	}
	return backend, found, nil
}

// readHeader reads the first n bytes of path. A shorter file yields what it
// holds, leaving the size check to the caller.
func readHeader(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}
