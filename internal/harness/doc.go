// Package harness provides conformance testing for generated client files.
//
// A scenario embeds a small API description, names the namespace to
// render, and lists assertions about the rendered file. The harness renders
// the namespace through gen.Generator (nothing is written to disk), parses
// the result with go/parser, checks the invariants every client file must
// hold, and evaluates the assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	namespace: files
//	options:
//	  strict_unions: true
//	api:
//	  namespaces:
//	    - name: files
//	      types:
//	        - name: DeleteArg
//	      routes:
//	        - name: delete
//	          version: 2
//	          arg: DeleteArg
//	          result: Void
//	          error: Void
//	assertions:
//	  - type: method
//	    signature: "DeleteV2(arg *DeleteArg) (err error)"
//	  - type: request
//	    method: DeleteV2Context
//	    fields: { Route: '"delete_v2"' }
//
// A scenario that sets expect_error passes when rendering fails with an
// error containing that text.
//
// # Assertion Types
//
//   - contains / not_contains: the source does (not) contain text
//   - count: text occurs exactly count times
//   - method: the Client interface declares the signature exactly
//   - request: the method's dropbox.Request literal has the fields (subset)
//   - decl_order: the declarations appear in this order
//
// # Golden Snapshots
//
// RunWithGolden compares the file's Snapshot (package, header, imports,
// declarations, interface methods and request literals) with
// testdata/golden/<name>.golden as indented canonical JSON.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/union_result.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
