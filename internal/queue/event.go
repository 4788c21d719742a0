// Package queue defines the media-cleanup events exchanged over the
// message broker and the publisher/consumer around them. Remote asset
// deletes are best-effort and must never fail the mutation that
// orphaned the asset, so they are decoupled from the request path.
package queue

// MediaCleanupEvent asks the consumer to delete orphaned assets from
// the media store. Keys are object-store keys; Reason records which
// mutation orphaned them, for the cleanup log.
type MediaCleanupEvent struct {
	Keys        []string `json:"keys"`
	Reason      string   `json:"reason"`
	RequestedAt string   `json:"requested_at"`
}
