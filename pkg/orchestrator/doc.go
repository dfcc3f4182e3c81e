// Package orchestrator wires the loader → transformer → trace index → view →
// renderer pipeline behind one entry point, used by the CLI to print single
// screens and to export a whole project as static pages.
package orchestrator
