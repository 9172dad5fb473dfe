package buildinfo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/buildinfo"
)

func TestNewStampHasDistinctBuildIDs(t *testing.T) {
	a := buildinfo.New(3)
	b := buildinfo.New(3)
	require.NotEqual(t, a.BuildID, b.BuildID)
	require.Equal(t, 3, a.NumChunks)
}

func TestReportMentionsBuildID(t *testing.T) {
	stamp := buildinfo.New(1)
	require.Contains(t, buildinfo.Report(stamp, true), stamp.BuildID.String())
}
