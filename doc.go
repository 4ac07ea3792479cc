// Package revstore implements an embedded, document-oriented revision
// store: versioned JSON documents with a branching revision history,
// suitable as the local endpoint of a CouchDB-style master-master
// replication protocol.
//
// revstore owns the document/revision data model, the transactional rules
// that keep the revision DAG consistent under both local writes and
// replicated inserts, revision identifier generation, the change feed, and
// the auxiliary queries a replicator needs (missing-revision diffing,
// history traversal, change enumeration). It does not implement the view
// engine, the HTTP layer, the replication transport, or attachment
// storage; those are external collaborators.
package revstore
