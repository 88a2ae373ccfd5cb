// Package agents defines the contract between the pipeline core and external
// content analyzers, plus a reference HTTP invoker.
//
// The core never depends on a specific analysis provider. It requires only
// the Invoker interface: one call per analyzer per detected item, returning
// an AgentResult or an error. Analyzer responses cross a validated boundary;
// payloads that do not satisfy the result schema are rejected rather than
// propagated inward as loose data.
package agents
