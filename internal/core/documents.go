package core

import "context"

// Documents is the authoritative in-memory text of every room seen since start.
// Not safe for concurrent use; the hub goroutine owns it.
type Documents struct {
	content map[string]string
	persist *Persistence
}

// NewDocuments returns an empty document store backed by persist.
func NewDocuments(persist *Persistence) *Documents {
	return &Documents{
		content: make(map[string]string),
		persist: persist,
	}
}

// GetOrLoad returns the room's text, hydrating it from persistence on first access.
// Hydration happens once per room; later changes to the backing snapshot are not observed.
func (d *Documents) GetOrLoad(ctx context.Context, room string) string {
	if content, ok := d.content[room]; ok {
		return content
	}
	content, _ := d.persist.Load(ctx, room)
	d.content[room] = content
	return content
}

// Set replaces the room's text and queues it for saving.
// Memory is updated first; a failed save does not roll it back.
func (d *Documents) Set(room, content string) {
	d.content[room] = content
	d.persist.Enqueue(room, content)
}

// Lookup returns the in-memory text without hydrating.
func (d *Documents) Lookup(room string) (string, bool) {
	content, ok := d.content[room]
	return content, ok
}

// Len returns the number of rooms held in memory.
func (d *Documents) Len() int {
	return len(d.content)
}
