// Package services holds the engine's business logic: prospect
// classification and ranking, context aggregation, knowledge-base
// indexing and retrieval, and the outreach run orchestrator. Services
// implement the driving ports and reach the outside world only through
// driven ports, so every adapter is swappable in tests.
package services
