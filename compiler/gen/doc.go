// Package gen renders the artifacts of the autogen pipelines.
//
// # Architecture
//
// Both pipelines end in the same tracked output sink:
//
//	//autogen markers (load.Fragment)        XML definitions (load.Definition)
//	        ↓                                          ↓
//	   GroupFragments → TypeGroup             NewErrorTable → ErrorTable
//	        ↓                                          ↓
//	   Emitter.Property               Emitter.ErrorClass, Accessor, Bundle
//	        ↘                                          ↙
//	                 Generator → Output → Writer
//
// Every name shared between emitters (identifiers, resource keys, import
// paths and artifact paths) comes from Naming, so the error class and the
// resource accessor always agree.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - ConfigError: configuration errors
//   - DefinitionError: unusable error definitions
//   - MarkerError: marker comments that cannot be applied
//   - GenerationError: rendering, formatting and write failures
//
// Each matches a sentinel with errors.Is:
//
//	table, err := gen.NewErrorTable(def, module)
//	if errors.Is(err, gen.ErrInvalidLanguage) {
//	    // the <lang> element is not a BCP 47 tag
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	config, err := gen.NewConfig(
//	    gen.WithProjectDir("."),
//	    gen.WithErrorsPackage("internal/errorcodes"),
//	    gen.WithExportedSetters(true),
//	)
//
// The module path is inferred from go.mod by compiler.Prepare when not set.
//
// # Jennifer Generator
//
// Go sources are built with Jennifer, which tracks imports, and are then
// formatted with golang.org/x/tools/imports. Emitters are pure functions of
// their model and run in parallel on a bounded number of workers.
package gen
