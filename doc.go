// Package indexer converts bibliographic and archival catalog records, held
// across several independently-keyed relational sources, into canonical
// documents for a search index, and republishes the index without downtime.
//
// The pipeline has four stages, each behind a small interface so that
// implementations can be swapped in tests and tools:
//
// 1. Cursor
//
//    A Cursor pages bounded batches of raw rows out of one relational source.
//    It is strictly sequential - one fetch at a time, each page materialized
//    before it is handed off. The sql-backed implementation lives in the
//    source subpackage.
//
// 2. DocumentBuilder
//
//    A DocumentBuilder turns one source row into zero or more index
//    documents. The builders in the records subpackage parse the row's
//    tagged-field record blob (marc subpackage), run it through a declarative
//    field-mapping profile (profile subpackage), and normalize free-text date
//    statements along the way (dates subpackage). Builder errors are scoped
//    to the single record that caused them.
//
// 3. Indexer
//
//    An Indexer submits a batch's surviving documents as one bulk write. The
//    solr subpackage provides the real one.
//
// 4. Publisher
//
//    After every record type of a run has finished, the Publisher reloads the
//    freshly written staging index generation and, only when every record
//    type succeeded, swaps it atomically into the live position.
//
// The Ingester drives stages 1-3 for one record type, fanning batches out to
// a bounded worker pool and tolerating per-record failure: a malformed record
// or a missing required field drops that record, never the batch.
package indexer
