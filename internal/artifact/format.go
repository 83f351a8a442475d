// Package artifact implements the artifact packer (C5, spec §4.5) and
// loader (C6, spec §4.6): bit-exact binary file layout, little-endian,
// plus the JSON side files (meta.json, idmap.json).
package artifact

import "github.com/AntonIsraelsson/cryptobib-search/internal/types"

// Fixed artifact filenames (spec §6, "Builder output artifacts").
const (
	CoreMetaFile     = "index.core.meta.json"
	CoreDictFile     = "index.core.dict.bin"
	CorePtrsFile     = "index.core.ptrs.bin"
	CorePostingsFile = "index.core.postings.bin"

	ExtMetaFile     = "index.ext.meta.json"
	ExtDictFile     = "index.ext.dict.bin"
	ExtPtrsFile     = "index.ext.ptrs.bin"
	ExtPostingsFile = "index.ext.postings.bin"

	DocIndexFile = "doc.index.bin"
	DocBlobFile  = "doc.blob.bin"
	IDMapFile    = "idmap.json"
)

// Meta is the JSON sidecar for one tier (spec §4.5). NumDocs is populated
// for the core tier only; the extended tier relies on the core tier's
// doc.index.bin / doc.blob.bin, which it shares.
type Meta struct {
	Version  string `json:"version"`
	BuildID  string `json:"build_id"`
	NumDocs  uint32 `json:"num_docs,omitempty"`
	NumTerms uint32 `json:"num_terms"`
}

// fieldOrderFor fixes the ptrs.bin field order per tier; this order is
// part of the format contract (spec §4.5). It reuses types.CoreFields /
// types.ExtFields so the resolver and the on-disk layout never disagree
// about field order.
func fieldOrderFor(tier types.Tier) []types.Field {
	if tier == types.TierExtended {
		return types.ExtFields
	}
	return types.CoreFields
}
