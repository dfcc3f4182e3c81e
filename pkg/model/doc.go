// Package model defines the requirements-document entities consumed by the
// view layer: projects, documents, sections, requirements and text nodes,
// plus scanned source files and the project file tree. Concrete types live in
// internal/model and are re-exported here. Entities are populated by a loader,
// indexed once with Project.Index (parents, levels, title numbers, MID lookup)
// and treated as read-only by every renderer afterwards.
package model
