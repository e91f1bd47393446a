package srm

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-only container loaded from disk.
type File struct {
	*Container
	// Size is the on-disk size, which may differ from ContainerSize.
	Size    int64
	mmapped bool
}

// Open maps an SRM file read-only. Files that are not exactly ContainerSize
// bytes, or systems without mmap, fall back to a heap copy. The returned
// container must not be modified; copy it with FromBytes first. Close
// releases any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()

	if size == ContainerSize {
		data, err := unix.Mmap(int(f.Fd()), 0, ContainerSize, unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			return &File{Container: &Container{data: data}, Size: size, mmapped: true}, nil
		}
	}
	return OpenReaderAt(f, size)
}

// OpenReaderAt loads a container from a random-access reader without mmap.
// Short input yields ErrShortContainer together with a usable File.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 {
		return nil, ErrShortContainer
	}
	n := min(size, int64(ContainerSize))
	raw, err := readAllAt(r, int(n))
	if err != nil {
		return nil, err
	}
	c, err := FromBytes(raw)
	return &File{Container: c, Size: size}, err
}

// Close unmaps the file. It is safe to call more than once.
func (f *File) Close() error {
	if f == nil || f.Container == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.data)
		f.mmapped = false
	}
	f.Container = nil
	return err
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
