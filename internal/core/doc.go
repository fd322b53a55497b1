// Package core provides the business logic for the hiring data loader.
//
// It contains all domain logic independent of the HTTP layer and of
// PostgreSQL. Storage is reached through the [Store] interface and the
// reports through [Querier], so the pipeline runs the same against the
// database package and against the in-memory store used in tests.
//
// # Table Registry
//
// Entities are registered at init time by the tables package using
// [Register]. Each [TableDefinition] states its columns, how a row becomes a
// [Record] and whether re-uploads may overwrite stored rows:
//
//	core.Register(core.TableDefinition{
//	    Info:        core.TableInfo{Key: core.EntityJobs, Table: "jobs"},
//	    FieldSpecs:  jobFields,
//	    BuildRecord: buildNamedRecord(jobFields),
//	})
//
// # Upload Pipeline
//
// [Service.Upload] runs synchronously and in order:
//
//  1. The payload is size limited and normalized to UTF-8 ([WrapForStreaming])
//  2. Rows are decoded positionally, without a header ([Decode])
//  3. Each row is validated by its entity ([ValidateRows])
//  4. Valid records are split against stored ids ([Reconcile])
//  5. New and changed records are committed in batches ([BatchWriter])
//
// Row problems are reported in the [UploadResult]; only payload level
// problems and storage outages fail the call.
//
// # Reports
//
// [Aggregator] runs the quarterly hiring and above-mean department queries
// for one calendar year.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code prefix for support reference: DB, VAL,
// FILE, UPL, ENT and RATE.
package core
