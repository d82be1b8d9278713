// Package ir provides the intermediate representation of an RPC API
// description consumed by the code generator.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Namespaces, routes and types keep declaration order; generation
//     output follows that order exactly
//   - Type references have one canonical text form (see ParseTypeRef) used
//     by JSON and YAML IR files
//   - All JSON tags use snake_case
//   - The IR is read-only once loaded; generators never mutate it
package ir
