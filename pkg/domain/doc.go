/*
Package domain contains the lattice path geometry model.

It turns a step encoding ('0' for an east step, '1' for a north step) into an
annotated coordinate path, and composes two paths sharing both endpoints into
the closed polygon bounding the region between them. This package is kept pure
and free of I/O, so every function is safe for concurrent use.

# Key Entities

  - LatticePath: coordinates plus upmarks, corners, inside corners and row extents.
  - Polygon: closed boundary of the region between a lower and an upper path.
  - Point: an integer lattice point, serialized as [x, y].

Errors unwrap to ErrInvalidInput (caller-correctable) or ErrIntegrityViolation
(a bug in the derivation). No partial value is ever returned alongside an error.
*/
package domain
