package l1

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scroll-tech/go-ethereum/common"
	"github.com/scroll-tech/go-ethereum/core/types"
)

func TestRollupABIEventSignatures(t *testing.T) {
	rollupABI, err := RollupMetaData.GetAbi()
	require.NoError(t, err)

	require.NotEqual(t, common.Hash{}, rollupABI.Events[commitBatchEventName].ID)
	require.NotEqual(t, common.Hash{}, rollupABI.Events[revertBatchEventName].ID)
	require.NotEqual(t, common.Hash{}, rollupABI.Events[finalizeBatchEventName].ID)
	require.Contains(t, rollupABI.Methods, commitBatchMethodName)
}

func TestUnpackCommitBatchLog(t *testing.T) {
	rollupABI, err := RollupMetaData.GetAbi()
	require.NoError(t, err)

	batchHash := common.HexToHash("0x89a1c4692d97c7a4a516b35bc46963da3425af5273cb5a7b8ee2cdcf41c6fa65")
	vLog := types.Log{
		Topics: []common.Hash{
			rollupABI.Events[commitBatchEventName].ID,
			common.BigToHash(big.NewInt(42)),
			batchHash,
		},
	}

	event := &commitBatchEventUnpacked{}
	require.NoError(t, UnpackLog(rollupABI, event, commitBatchEventName, vLog))
	require.Equal(t, uint64(42), event.BatchIndex.Uint64())
	require.Equal(t, batchHash, event.BatchHash)

	// A log carrying a different event signature must be rejected.
	vLog.Topics[0] = rollupABI.Events[revertBatchEventName].ID
	require.Error(t, UnpackLog(rollupABI, event, commitBatchEventName, vLog))
}

func TestUnpackFinalizeBatchLog(t *testing.T) {
	rollupABI, err := RollupMetaData.GetAbi()
	require.NoError(t, err)

	stateRoot := common.HexToHash("0x20a6aa14638839f76d2b233499439e45cd315434f9628902793c421ec71fcb0c")
	withdrawRoot := common.HexToHash("0xeda0cccc67b86712eea4536d186be3d412b86c4c56741d641d1bbfdd26b5d40b")

	data, err := rollupABI.Events[finalizeBatchEventName].Inputs.NonIndexed().Pack(stateRoot, withdrawRoot)
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			rollupABI.Events[finalizeBatchEventName].ID,
			common.BigToHash(big.NewInt(7)),
			common.HexToHash("0x02"),
		},
		Data: data,
	}

	event := &finalizeBatchEventUnpacked{}
	require.NoError(t, UnpackLog(rollupABI, event, finalizeBatchEventName, vLog))
	require.Equal(t, uint64(7), event.BatchIndex.Uint64())
	require.Equal(t, stateRoot, event.StateRoot)
	require.Equal(t, withdrawRoot, event.WithdrawRoot)
}
