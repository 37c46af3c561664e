/*
Package ports defines the driven ports (interfaces) for the lpm toolkit.

These interfaces decouple the emitter from concrete storage, allowing the same
TeX and JSON artifacts to land on a fenced filesystem cache, in Redis, or in
memory.

# Key Interfaces

  - ArtifactStore: persists emitted artifacts under cache-relative names.
  - DistributedLocker: serializes writers of shared name records across processes.
*/
package ports
