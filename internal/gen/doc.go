// Package gen emits Go client bindings for the routes of an API.
//
// Each namespace with at least one route becomes one file declaring a
// Client interface, an apiImpl implementation over the runtime context,
// one error-wrapper type and two methods per route, and a constructor.
//
// Emission is layered leaves first:
//
//	TypeFormatter   IR type reference -> Go type expression
//	BuildSignature  route -> default and context-explicit method signatures
//	errorWrapper    route -> <Ident>APIError declaration
//	contextBody     route -> request, execute, error upgrade, decode, return
//	Assembler       namespace -> *jen.File
//	Generator       API -> files on disk
//
// Every choice that depends on a route's shape (argument void, result
// void/struct/union, style, deprecation) is looked up in the tables in
// shape.go rather than branched on separately by each emitter.
package gen
