package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/curveinfo"
)

func TestExportLoadRoundTrip(t *testing.T) {
	ct, err := NewCiphertext(curveinfo.BNP254ID, SchemeCPABE, []byte("ciphertext body"))
	require.NoError(t, err)
	require.Equal(t, byte(LibraryVersion), ct.LibVersion)

	out := ct.ExportToBytes()
	loaded, err := LoadFromBytes(out)
	require.NoError(t, err)

	require.Equal(t, ct.LibVersion, loaded.LibVersion)
	require.Equal(t, ct.CurveID, loaded.CurveID)
	require.Equal(t, ct.Scheme, loaded.Scheme)
	require.Equal(t, ct.UID, loaded.UID)
	require.Equal(t, ct.Body, loaded.Body)
}

func TestTwoContainersGetDistinctUIDs(t *testing.T) {
	a, err := NewCiphertext(curveinfo.BNP254ID, SchemeKPABE, []byte("x"))
	require.NoError(t, err)
	b, err := NewCiphertext(curveinfo.BNP254ID, SchemeKPABE, []byte("x"))
	require.NoError(t, err)
	require.NotEqual(t, a.UID, b.UID)
}

func TestLoadFromBytesRejectsEmptyBody(t *testing.T) {
	ct, err := NewCiphertext(curveinfo.BNP254ID, SchemeCPABE, []byte("placeholder"))
	require.NoError(t, err)
	ct.Body = nil
	_, err = LoadFromBytes(ct.ExportToBytes())
	require.ErrorIs(t, err, abeerr.ErrInvalidCiphertextBody)
}

func TestLoadFromBytesRejectsNewerLibraryVersion(t *testing.T) {
	ct, err := NewCiphertext(curveinfo.BNP254ID, SchemeCPABE, []byte("body"))
	require.NoError(t, err)
	ct.LibVersion = LibraryVersion + 1
	out := ct.ExportToBytes()
	_, err = LoadFromBytes(out)
	require.ErrorIs(t, err, abeerr.ErrInvalidLibVersion)
}

func TestExportLoadWithoutHeaderRoundTrip(t *testing.T) {
	ct, err := NewCiphertext(curveinfo.BNP254ID, SchemeHybrid, []byte("body-only"))
	require.NoError(t, err)

	body := ct.ExportToBytesWithoutHeader()
	restored := &Ciphertext{LibVersion: ct.LibVersion, CurveID: ct.CurveID, Scheme: ct.Scheme, UID: ct.UID}
	require.NoError(t, restored.LoadFromBytesWithoutHeader(body))
	require.Equal(t, ct.Body, restored.Body)
}
