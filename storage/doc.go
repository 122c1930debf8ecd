// Package storage defines the repository interfaces for podrec's persisted
// state: transcript chunks with their embeddings, the single ingestion
// progress record, and the append-only exception journal. Concrete
// implementations live in subpackages (storage/badger); callers depend on
// the interfaces here so the backend can be swapped in tests.
//
// Serialization uses the mus binary format. The Marshal/Unmarshal helpers
// in this package wrap the core serializers so backends never touch mus
// buffers directly.
package storage
