// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CRMClient: Prospect and engagement data from the CRM
//   - CorpusSource: Reads raw documents from the knowledge corpus
//   - Normaliser: Transforms raw documents into indexed form
//   - NormaliserRegistry: Selects appropriate normaliser
//   - PostProcessorPipeline: Chunks normalised documents
//   - DocumentStore: Document and chunk persistence
//   - IndexStateStore: Per-path fingerprint persistence
//   - DraftStore: Generated draft persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, indexing
//     and knowledge-base retrieval are disabled.
//   - VectorSearcher: Semantic similarity search over stored chunks.
//     Only usable when EmbeddingService is configured.
//   - GenerationService: Drafts outreach emails. Without it, runs rank
//     and report but produce no drafts.
//   - SnippetProvider: Extra context sources (chat, transcripts). Missing
//     providers simply contribute nothing.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
