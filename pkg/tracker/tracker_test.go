package tracker

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddKeepsExistingEntry(t *testing.T) {
	registry := NewRegistry()
	assert.True(t, registry.IsEmpty())

	first := TrackedFile{
		AbsolutePath: "/workspace/a.txt",
		RelativePath: "a.txt",
		Category:     Text,
		View:         TextView{Content: "seen\n"},
	}
	assert.True(t, registry.Add(first))
	assert.False(t, registry.IsEmpty())

	// Re-adding the same path must not reset the agent's view.
	assert.False(t, registry.Add(TrackedFile{
		AbsolutePath: "/workspace/a.txt",
		Category:     Text,
	}))

	got, ok := registry.Get("/workspace/a.txt")
	assert.True(t, ok)
	assert.Equal(t, first, got)
}

func TestAddDefaultsToNoView(t *testing.T) {
	registry := NewRegistry()
	registry.Add(TrackedFile{AbsolutePath: "/a", Category: Text})

	got, ok := registry.Get("/a")
	assert.True(t, ok)
	assert.Equal(t, NoView{}, got.View)
}

func TestRemove(t *testing.T) {
	registry := NewRegistry()
	registry.Add(TrackedFile{AbsolutePath: "/a", Category: Text})
	registry.Add(TrackedFile{AbsolutePath: "/b", Category: Text})

	registry.Remove("/a")
	_, ok := registry.Get("/a")
	assert.False(t, ok)
	_, ok = registry.Get("/b")
	assert.True(t, ok)

	// Removing an untracked path is a no-op.
	registry.Remove("/a")
	assert.False(t, registry.IsEmpty())
}

func TestSetView(t *testing.T) {
	registry := NewRegistry()
	registry.Add(TrackedFile{AbsolutePath: "/a", Category: Text})

	registry.SetView("/a", TextView{Content: "contents\n"})
	got, ok := registry.Get("/a")
	assert.True(t, ok)
	assert.Equal(t, TextView{Content: "contents\n"}, got.View)

	// Setting the view of an untracked path must not resurrect it.
	registry.SetView("/gone", BinaryView{ModTime: time.Now()})
	_, ok = registry.Get("/gone")
	assert.False(t, ok)
}

func TestAllReturnsSnapshot(t *testing.T) {
	registry := NewRegistry()
	registry.Add(TrackedFile{AbsolutePath: "/a", Category: Text})
	registry.Add(TrackedFile{AbsolutePath: "/b", Category: Pdf})

	all := registry.All()
	assert.Len(t, all, 2)

	// Mutations after the snapshot don't affect it.
	registry.Remove("/a")
	registry.Remove("/b")
	assert.Len(t, all, 2)
	assert.True(t, registry.IsEmpty())
}

func TestConcurrentPerPathMutation(t *testing.T) {
	registry := NewRegistry()
	for i := 0; i < 64; i++ {
		registry.Add(TrackedFile{
			AbsolutePath: fmt.Sprintf("/file-%d", i),
			Category:     Text,
		})
	}

	var wg sync.WaitGroup
	for _, f := range registry.All() {
		f := f
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.SetView(f.AbsolutePath, TextView{Content: f.AbsolutePath})
		}()
	}
	wg.Wait()

	for _, f := range registry.All() {
		assert.Equal(t, TextView{Content: f.AbsolutePath}, f.View)
	}
}
