package typo

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
)

// membershipDict is a large word list kept out of the heap: the file stays
// memory-mapped and membership is answered by binary search over an offset
// index sorted by line content. Lists this size are used for exact checks
// only, never for fuzzy suggestion.
type membershipDict struct {
	file    *os.File
	data    mmap.MMap
	offsets []int
	count   int
}

func openMembershipDict(path string) (*membershipDict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open membership dictionary: %w", err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	d := &membershipDict{file: f, data: data}
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			if i > start {
				d.offsets = append(d.offsets, start)
			}
			start = i + 1
		}
	}
	d.count = len(d.offsets)
	// Word lists are not guaranteed to be pre-sorted; sorting the offset
	// index once keeps every lookup a binary search over mapped bytes.
	sort.Slice(d.offsets, func(i, j int) bool {
		return bytes.Compare(d.line(d.offsets[i]), d.line(d.offsets[j])) < 0
	})
	return d, nil
}

func (d *membershipDict) line(offset int) []byte {
	end := offset
	for end < len(d.data) && d.data[end] != '\n' {
		end++
	}
	l := d.data[offset:end]
	return bytes.TrimRight(l, "\r")
}

// Contains reports whether word appears as a full line. Lists are expected
// to be lowercase, one word per line.
func (d *membershipDict) Contains(word string) bool {
	target := []byte(word)
	i := sort.Search(len(d.offsets), func(i int) bool {
		return bytes.Compare(d.line(d.offsets[i]), target) >= 0
	})
	return i < len(d.offsets) && bytes.Equal(d.line(d.offsets[i]), target)
}

func (d *membershipDict) Close() error {
	if err := d.data.Unmap(); err != nil {
		d.file.Close()
		return err
	}
	return d.file.Close()
}
