package memory

import (
	"time"
)

type auditedDoc[T any] interface {
	cloner[T]
	registryDate() time.Time
	stamp(id string, registry, modified time.Time) T
}

// upsertAudited stores doc under id (a fresh id when empty). lastModified is
// set on every call; registryDate is set when the document is created and
// carried over otherwise. merge, when given, fills the fields doc leaves
// unset from the existing document or from entity defaults.
func upsertAudited[T auditedDoc[T]](c *collection[T], id string, now time.Time, doc T, merge func(doc, existing T, found bool) T) T {
	if id == "" {
		id = newID()
	}
	out, _ := c.update(id, func(existing T, found bool) (T, bool) {
		next := doc.clone()
		if merge != nil {
			next = merge(next, existing, found)
		}
		registry := now
		if found {
			registry = existing.registryDate()
		}
		return next.stamp(id, registry, now), true
	})
	return out
}
