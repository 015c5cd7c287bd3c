// Package harness runs YAML-defined scenarios through the full engine:
// grammar compilation, parsing, execution against a task board, and
// trace recording into an in-memory store with deterministic run
// tokens. Scenarios declare a program and expectations over the
// resulting invocations, tasks, and errors; golden files pin the
// recorded trace byte-for-byte.
package harness
