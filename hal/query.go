package hal

// Optional encoder capabilities.
//
// Query recording is not part of the CommandEncoder contract: most backends
// have no query support, and forcing stub methods on all of them buys
// nothing. Instead, a backend that can record queries asserts one of the
// interfaces below, and callers feature-detect with a type assertion, the
// same way net/http callers probe for http.Flusher.

// QueryCommandEncoder is implemented by command encoders that can record
// timestamp writes and query-result resolves.
type QueryCommandEncoder interface {
	// WriteTimestamp writes a GPU timestamp into the query set at index.
	WriteTimestamp(set QuerySet, index uint32)

	// ResolveQuerySet copies queryCount query results starting at
	// firstQuery into dst at dstOffset, 8 bytes per result.
	ResolveQuerySet(set QuerySet, firstQuery, queryCount uint32, dst Buffer, dstOffset uint64)
}

// OcclusionQueryEncoder is implemented by render pass encoders that can
// bracket draws with occlusion queries. The query set comes from the render
// pass descriptor's OcclusionQuerySet.
type OcclusionQueryEncoder interface {
	// BeginOcclusionQuery starts the occlusion query at index.
	BeginOcclusionQuery(index uint32)

	// EndOcclusionQuery ends the active occlusion query.
	EndOcclusionQuery()
}

// QuerySetProvider is implemented by devices that support query sets.
type QuerySetProvider interface {
	// CreateQuerySet creates a query set.
	CreateQuerySet(desc *QuerySetDescriptor) (QuerySet, error)

	// DestroyQuerySet destroys a query set.
	DestroyQuerySet(set QuerySet)
}
