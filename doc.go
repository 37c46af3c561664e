/*
Package lpm renders combinatorial lattice-path diagrams for TeX documents.

A path is written as a bit-string of unit steps: '0' moves east, '1' moves
north. lpm derives the path geometry (vertices, direction changes, inside
corners, row extents), composes the polygon between two paths that share their
endpoints, and emits TeX macro files plus JSON manifests into a fenced
artifact store. Documents load the emitted files through the returned
\gdef macros.

# Key Features

  - Pure geometry core (pkg/domain), safe for concurrent use.
  - Content-addressed artifacts: names carry a BLAKE2b key of the declaration.
  - Pluggable storage: fenced filesystem cache, Redis, or memory.
  - Surfaces: library, CLI (cmd/lpm), HTTP API and MCP tools.

# Usage

	store, err := file.New("lp-cache")
	if err != nil {
		log.Fatal(err)
	}
	tk := lpm.New(store)

	macros, err := tk.DeclarePathJSON(ctx, `{"bits": "0101", "name": "demo"}`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(macros)

Errors unwrap to domain.ErrInvalidInput for bad specifications and to
domain.ErrIntegrityViolation for internal derivation defects.
*/
package lpm
