package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/oneee-playground/playback-tester/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRunner struct {
	runs []orchestrator.RunContext
}

func (r *recordingRunner) Run(ctx context.Context, rc orchestrator.RunContext) *orchestrator.Report {
	r.runs = append(r.runs, rc)
	return &orchestrator.Report{DeploymentID: rc.DeploymentID}
}

func TestSelectAssets(t *testing.T) {
	list := filepath.Join(t.TempDir(), "assets.txt")
	require.NoError(t, os.WriteFile(list, []byte("http://example/a.m3u8\nhttp://example/b.mpd\n"), 0o644))

	testcases := []struct {
		desc      string
		asset     string
		list      string
		expect    []string
		expectErr bool
	}{
		{desc: "single asset", asset: "http://example/a.m3u8", expect: []string{"http://example/a.m3u8"}},
		{desc: "asset list", list: list, expect: []string{"http://example/a.m3u8", "http://example/b.mpd"}},
		{desc: "both", asset: "http://example/a.m3u8", list: list, expectErr: true},
		{desc: "neither", expectErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := selectAssets(tc.asset, tc.list)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestPlaybackRunsEachAsset(t *testing.T) {
	r := &recordingRunner{}
	params := orchestrator.Params{GroupName: "qa", Platforms: []string{"ios"}, DurationSeconds: 120}

	err := playback(context.Background(), zap.NewNop(), r, []string{"http://example/a.m3u8", "http://example/b.mpd"}, params, false)
	require.NoError(t, err)

	require.Len(t, r.runs, 2)
	assert.Equal(t, "http://example/a.m3u8", r.runs[0].AssetURL)
	assert.Equal(t, "http://example/b.mpd", r.runs[1].AssetURL)
	assert.Equal(t, "qa", r.runs[1].GroupName)
	assert.NotEqual(t, r.runs[0].DeploymentID, r.runs[1].DeploymentID)
}

func TestPlaybackStopsWhenCanceled(t *testing.T) {
	r := &recordingRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := playback(ctx, zap.NewNop(), r, []string{"http://example/a.m3u8"}, orchestrator.Params{DurationSeconds: 1}, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.runs)
}

func TestNoArgs(t *testing.T) {
	assert.NoError(t, noArgs(nil))

	err := noArgs([]string{"android"})
	assert.ErrorContains(t, err, "android")
}
