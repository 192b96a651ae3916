package l1

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scroll-tech/go-ethereum"
	"github.com/scroll-tech/go-ethereum/common"
	"github.com/scroll-tech/go-ethereum/core/types"

	"github.com/morph-l2/da-codec/encoding"
)

type mockClient struct {
	blockNumber uint64
	logs        []types.Log
	txs         map[common.Hash]*types.Transaction
}

func (m *mockClient) BlockNumber(ctx context.Context) (uint64, error) {
	return m.blockNumber, nil
}

func (m *mockClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	var out []types.Log
	for _, vLog := range m.logs {
		if q.FromBlock != nil && vLog.BlockNumber < q.FromBlock.Uint64() {
			continue
		}
		if q.ToBlock != nil && vLog.BlockNumber > q.ToBlock.Uint64() {
			continue
		}
		out = append(out, vLog)
	}
	return out, nil
}

func (m *mockClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	tx, ok := m.txs[txHash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx, false, nil
}

func (m *mockClient) BlockByHash(ctx context.Context, hash common.Hash) (*types.Block, error) {
	return nil, errors.New("not implemented")
}

func repeatHash(b byte) common.Hash {
	var h common.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func testParentHeader() *encoding.BatchHeader {
	return encoding.NewBatchHeader(
		1, 5, 10, 500,
		repeatHash(0x11), repeatHash(0x22), repeatHash(0x33), repeatHash(0x44),
		repeatHash(0x55), repeatHash(0x66), repeatHash(0x77),
		nil,
	)
}

func commitCalldata(t *testing.T, parentHeader []byte) []byte {
	t.Helper()
	rollupABI, err := RollupMetaData.GetAbi()
	require.NoError(t, err)

	calldata, err := rollupABI.Pack(commitBatchMethodName,
		batchDataInput{
			Version:                1,
			ParentBatchHeader:      parentHeader,
			BlockContexts:          []byte{0x01},
			SkippedL1MessageBitmap: nil,
			PrevStateRoot:          repeatHash(0x33),
			PostStateRoot:          repeatHash(0x44),
			WithdrawalRoot:         repeatHash(0x55),
		},
		batchSignatureInput{
			SignedSequencersBitmap: big.NewInt(0b111),
			SequencerSets:          []byte{0x02},
			Signature:              []byte{0x03},
		},
	)
	require.NoError(t, err)
	return calldata
}

// newTestChain builds a mock client holding two CommitBatch events, where
// the newer commit's calldata carries the given bytes as parent header.
func newTestChain(t *testing.T, parentHeaderInCalldata []byte, parentBatchHash common.Hash) (*mockClient, common.Address) {
	t.Helper()
	rollupABI, err := RollupMetaData.GetAbi()
	require.NoError(t, err)
	commitSig := rollupABI.Events[commitBatchEventName].ID

	rollupAddress := common.HexToAddress("0x0000000000000000000000000000000000524f4c")

	commitTx := types.NewTx(&types.LegacyTx{
		Nonce:    1,
		Gas:      1_000_000,
		GasPrice: big.NewInt(1),
		To:       &rollupAddress,
		Data:     commitCalldata(t, parentHeaderInCalldata),
	})

	logs := []types.Log{
		{
			Address:     rollupAddress,
			Topics:      []common.Hash{commitSig, common.BigToHash(big.NewInt(5)), parentBatchHash},
			BlockNumber: 100,
			TxHash:      common.HexToHash("0xaa"),
			BlockHash:   common.HexToHash("0xab"),
		},
		{
			Address:     rollupAddress,
			Topics:      []common.Hash{commitSig, common.BigToHash(big.NewInt(6)), common.HexToHash("0xb6")},
			BlockNumber: 110,
			TxHash:      commitTx.Hash(),
			BlockHash:   common.HexToHash("0xbb"),
		},
	}

	return &mockClient{
		blockNumber: 700,
		logs:        logs,
		txs: map[common.Hash]*types.Transaction{
			commitTx.Hash(): commitTx,
		},
	}, rollupAddress
}

func TestNewReaderRejectsZeroAddress(t *testing.T) {
	_, err := NewReader(context.Background(), Config{}, &mockClient{})
	require.Error(t, err)
}

func TestFetchRollupEventsInRange(t *testing.T) {
	parent := testParentHeader()
	client, rollupAddress := newTestChain(t, parent.Encode(), parent.Hash())

	rollupABI, err := RollupMetaData.GetAbi()
	require.NoError(t, err)

	// Add a revert event to the chain; both indexed fields ride in topics.
	client.logs = append(client.logs, types.Log{
		Address:     rollupAddress,
		Topics:      []common.Hash{rollupABI.Events[revertBatchEventName].ID, common.BigToHash(big.NewInt(6)), common.HexToHash("0xb6")},
		BlockNumber: 120,
	})

	reader, err := NewReader(context.Background(), Config{RollupAddress: rollupAddress}, client)
	require.NoError(t, err)

	events, err := reader.FetchRollupEventsInRange(1, 700)
	require.NoError(t, err)
	require.Len(t, events, 3)

	require.Equal(t, CommitEventType, events[0].Type())
	require.Equal(t, uint64(5), events[0].BatchIndex().Uint64())
	require.Equal(t, parent.Hash(), events[0].BatchHash())

	require.Equal(t, CommitEventType, events[1].Type())
	require.Equal(t, uint64(6), events[1].BatchIndex().Uint64())

	require.Equal(t, RevertEventType, events[2].Type())
	require.Equal(t, uint64(6), events[2].BatchIndex().Uint64())

	// Range filtering is honored.
	events, err = reader.FetchRollupEventsInRange(105, 115)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, uint64(6), events[0].BatchIndex().Uint64())
}

func TestLatestCommittedBatchHeader(t *testing.T) {
	parent := testParentHeader()
	client, rollupAddress := newTestChain(t, parent.Encode(), parent.Hash())

	reader, err := NewReader(context.Background(), Config{RollupAddress: rollupAddress}, client)
	require.NoError(t, err)

	header, err := reader.LatestCommittedBatchHeader(600)
	require.NoError(t, err)
	require.Equal(t, encoding.BatchHeaderBytes(parent.Encode()), header)
	require.Equal(t, parent.Hash(), header.Hash())

	index, err := header.BatchIndex()
	require.NoError(t, err)
	require.Equal(t, uint64(5), index)
}

func TestLatestCommittedBatchHeaderNotEnoughCommits(t *testing.T) {
	parent := testParentHeader()
	client, rollupAddress := newTestChain(t, parent.Encode(), parent.Hash())
	client.logs = client.logs[1:] // drop the older commit

	reader, err := NewReader(context.Background(), Config{RollupAddress: rollupAddress}, client)
	require.NoError(t, err)

	_, err = reader.LatestCommittedBatchHeader(600)
	require.ErrorIs(t, err, ErrNotEnoughCommits)
}

func TestLatestCommittedBatchHeaderHashMismatch(t *testing.T) {
	parent := testParentHeader()

	// Tamper with the header carried in calldata; the event hash no longer
	// matches and the reader must refuse it.
	tampered := parent.Encode()
	tampered[25] ^= 0xff // first byte of dataHash

	client, rollupAddress := newTestChain(t, tampered, parent.Hash())

	reader, err := NewReader(context.Background(), Config{RollupAddress: rollupAddress}, client)
	require.NoError(t, err)

	_, err = reader.LatestCommittedBatchHeader(600)
	require.Error(t, err)
	require.Contains(t, err.Error(), "hash mismatch")
}

func TestLatestCommittedBatchHeaderMalformedCalldataHeader(t *testing.T) {
	parent := testParentHeader()
	client, rollupAddress := newTestChain(t, []byte{0x01, 0x02}, parent.Hash())

	reader, err := NewReader(context.Background(), Config{RollupAddress: rollupAddress}, client)
	require.NoError(t, err)

	_, err = reader.LatestCommittedBatchHeader(600)
	require.ErrorIs(t, err, encoding.ErrMalformedBatchHeader)
}
