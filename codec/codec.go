// Package codec encodes the section descriptors of sequence archives.
//
// Archives store the codec name in their header; Load selects the codec by
// name, so changing Default never breaks existing files. Custom codecs must be
// registered before archives that name them are loaded.
package codec

import (
	"errors"
	"fmt"
	"sync"
)

// Codec encodes and decodes descriptors. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ErrDuplicate is returned by Register for a name already in use.
var ErrDuplicate = errors.New("codec: duplicate name")

// Default is the codec used for newly written archives.
var Default Codec = GoJSON{}

var registry = struct {
	sync.RWMutex
	byName map[string]Codec
}{byName: map[string]Codec{
	JSON{}.Name():   JSON{},
	GoJSON{}.Name(): GoJSON{},
}}

// Register makes c loadable by name. Names are limited to 255 bytes so they
// fit the archive header.
func Register(c Codec) error {
	name := c.Name()
	if name == "" || len(name) > 255 {
		return fmt.Errorf("codec: invalid name %q", name)
	}
	registry.Lock()
	defer registry.Unlock()
	if _, ok := registry.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	registry.byName[name] = c
	return nil
}

// ByName returns the registered codec called name.
func ByName(name string) (Codec, bool) {
	registry.RLock()
	defer registry.RUnlock()
	c, ok := registry.byName[name]
	return c, ok
}
