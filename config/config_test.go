// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := NewBuilder().Build()
	require.NoError(err)
	require.Equal(10*time.Second, cfg.TRound)
	require.Equal(uint64(50), cfg.GCDepth)
	require.Equal(FetchRedundant, cfg.TransmissionFetchPolicy)
}

func TestBuilderWithIdentity(t *testing.T) {
	require := require.New(t)

	nodeID := ids.GenerateTestNodeID()
	cfg, err := NewBuilder().WithIdentity(7, nodeID).Build()
	require.NoError(err)
	require.Equal(uint64(7), cfg.CommitteeEpoch)
	require.Equal(nodeID, cfg.ValidatorID)
}

func TestBuilderRejectsInvalidRoundTimeout(t *testing.T) {
	require := require.New(t)

	_, err := NewBuilder().WithRoundTimeouts(0, time.Second, time.Second).Build()
	require.ErrorIs(err, ErrRoundTimeoutTooLow)
}

func TestBuilderRejectsQueueSmallerThanBatch(t *testing.T) {
	require := require.New(t)

	_, err := NewBuilder().WithWorkerBounds(100, 50).Build()
	require.ErrorIs(err, ErrInvalidQueueSize)
}

func TestPresets(t *testing.T) {
	require := require.New(t)

	for _, name := range PresetNames() {
		cfg, err := FromPresetName(name)
		require.NoError(err)
		require.NoError(cfg.Validate())
	}

	_, err := FromPresetName("nonexistent")
	require.ErrorIs(err, ErrUnknownPreset)
}

func TestLocalPresetUsesPartitionedFetch(t *testing.T) {
	require.New(t).Equal(FetchPartitioned, Local.TransmissionFetchPolicy)
}
