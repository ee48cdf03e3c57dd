// Package output renders a Compilation as YAML or JSON.
//
// # Document
//
// NewDocument converts the declaration model into plain structs whose keys
// follow the model: namespaces, classes, enums, functions, fields,
// typedefs, macros and diagnostics. Empty sections are omitted and
// members keep their insertion order.
//
// # Density Modes
//
//   - Sparse: names, kinds and locations only
//     Example: {name: area, location: shapes.h:12}
//
//   - Medium (default): adds types, signatures, function flags, bases,
//     enum values and attributes
//
//   - Dense: adds sizes, field offsets, initializers, doc comments, macro
//     tokens and inclusion directives
//
// Diagnostics are emitted at every density.
//
// # Example Usage
//
//	f, err := output.GetFormatter(output.FormatYAML)
//	if err != nil {
//	    return err
//	}
//	err = f.FormatToWriter(os.Stdout, comp, output.Options{Density: output.DensityMedium})
package output
