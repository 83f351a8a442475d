package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonIsraelsson/cryptobib-search/internal/artifact"
	"github.com/AntonIsraelsson/cryptobib-search/internal/resolve"
	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

func k1k4Records() []types.Record {
	return []types.Record{
		{ID: 0, Key: "K1", Title: "Authenticated Encryption", AuthorsStr: "Rogaway, P", Venue: "CCS", Year: 2002},
		{ID: 1, Key: "K2", Title: "Zero Knowledge Proofs", AuthorsStr: "Bellare, M; Rogaway, P", Venue: "CRYPTO", Year: 1993},
		{ID: 2, Key: "K3", Title: "Authenticated Encryption with Associated Data", AuthorsStr: "Rogaway, P", Venue: "CCS", Year: 2002},
		{ID: 3, Key: "K4", Title: "Lattice Signatures", AuthorsStr: "Lyubashevsky, V", Venue: "EUROCRYPT", Year: 2012},
	}
}

func TestBuildWritesLoadableArtifacts(t *testing.T) {
	dir := t.TempDir()
	b := New(&Option{TargetDir: dir, Version: "test-v1"})
	require.NoError(t, b.Build(k1k4Records()))

	core, err := artifact.LoadTier(dir, types.TierCore)
	require.NoError(t, err)
	require.EqualValues(t, 4, core.Meta.NumDocs)
	require.Equal(t, "test-v1", core.Meta.Version)
	require.NotEmpty(t, core.Meta.BuildID)

	ext, err := artifact.LoadTier(dir, types.TierExtended)
	require.NoError(t, err)
	require.Equal(t, core.Meta.BuildID, ext.Meta.BuildID)

	ds, err := artifact.LoadDocstore(dir, core.Meta.NumDocs)
	require.NoError(t, err)
	require.NotNil(t, ds)

	idm, err := artifact.LoadIDMap(dir)
	require.NoError(t, err)
	require.Len(t, idm, 4)
	require.EqualValues(t, 1, idm["K2"])

	id, found := resolve.Exact(core, "rogaway")
	require.True(t, found)
	require.Equal(t, "rogaway", core.Dict.Term(id))

	yearID, found := resolve.Exact(ext, "1993")
	require.True(t, found)
	require.Equal(t, "1993", ext.Dict.Term(yearID))
}

func TestBuildTermsAreSortedAndUnique(t *testing.T) {
	dir := t.TempDir()
	b := New(&Option{TargetDir: dir, Version: "test-v1"})
	require.NoError(t, b.Build(k1k4Records()))

	core, err := artifact.LoadTier(dir, types.TierCore)
	require.NoError(t, err)
	for i := 1; i < core.Dict.Len(); i++ {
		require.Less(t, core.Dict.Term(i-1), core.Dict.Term(i))
	}
}
