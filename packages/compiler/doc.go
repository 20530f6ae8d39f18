// Package compiler holds the template compiler used by the linker to turn a
// component declaration into its `ɵɵdefineComponent` definition.
//
// Main sub-packages:
//
//   - core: enums shared with the runtime (ViewEncapsulation, ChangeDetectionStrategy, ...)
//   - output: the output AST, its builders and the source map generator
//   - pool: the constant pool that deduplicates and hoists constants
//   - ml_parser: HTML template lexing and parsing
//   - expression_parser: binding expressions and interpolation
//   - template_parser: the binding parser joining both
//   - css: selectors, selector matching and style encapsulation
//   - render3: the render3 template AST
//     - r3_identifiers: runtime instruction references
//     - view: component definition and template function generation
//
// All APIs are internal to the linker and may change without notice.
package compiler
