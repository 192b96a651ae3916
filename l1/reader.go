package l1

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/scroll-tech/go-ethereum"
	"github.com/scroll-tech/go-ethereum/accounts/abi"
	"github.com/scroll-tech/go-ethereum/common"
	"github.com/scroll-tech/go-ethereum/core/types"
	"github.com/scroll-tech/go-ethereum/log"

	"github.com/morph-l2/da-codec/encoding"
)

const (
	commitBatchEventName   = "CommitBatch"
	revertBatchEventName   = "RevertBatch"
	finalizeBatchEventName = "FinalizeBatch"
	commitBatchMethodName  = "commitBatch"

	// the length of method ID at the beginning of transaction data
	methodIDLength = 4
)

// ErrNotEnoughCommits is returned when the scanned block range does not hold
// enough CommitBatch events to recover a committed header.
var ErrNotEnoughCommits = errors.New("not enough commit batch events in range")

// Config is the configuration parameters of the rollup event reader.
type Config struct {
	RollupAddress common.Address // address of the Rollup contract
}

// Reader fetches rollup events from L1 and recovers committed batch headers
// out of commitBatch calldata.
type Reader struct {
	ctx    context.Context
	config Config
	client Client

	rollupABI                     *abi.ABI
	l1CommitBatchEventSignature   common.Hash
	l1RevertBatchEventSignature   common.Hash
	l1FinalizeBatchEventSignature common.Hash
}

// NewReader initializes a new Reader instance
func NewReader(ctx context.Context, config Config, l1Client Client) (*Reader, error) {
	if config.RollupAddress == (common.Address{}) {
		return nil, errors.New("must pass non-zero rollup address to L1 reader")
	}

	rollupABI, err := RollupMetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to get rollup abi: %w", err)
	}

	reader := Reader{
		ctx:    ctx,
		config: config,
		client: l1Client,

		rollupABI:                     rollupABI,
		l1CommitBatchEventSignature:   rollupABI.Events[commitBatchEventName].ID,
		l1RevertBatchEventSignature:   rollupABI.Events[revertBatchEventName].ID,
		l1FinalizeBatchEventSignature: rollupABI.Events[finalizeBatchEventName].ID,
	}

	return &reader, nil
}

// FetchRollupEventsInRange retrieves and parses commit/revert/finalize rollup events between block numbers: [from, to].
func (r *Reader) FetchRollupEventsInRange(from, to uint64) (RollupEvents, error) {
	log.Trace("Reader fetchRollupEventsInRange", "fromBlock", from, "toBlock", to)

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from), // inclusive
		ToBlock:   new(big.Int).SetUint64(to),   // inclusive
		Addresses: []common.Address{
			r.config.RollupAddress,
		},
		Topics: make([][]common.Hash, 1),
	}
	query.Topics[0] = make([]common.Hash, 3)
	query.Topics[0][0] = r.l1CommitBatchEventSignature
	query.Topics[0][1] = r.l1RevertBatchEventSignature
	query.Topics[0][2] = r.l1FinalizeBatchEventSignature

	logs, err := r.client.FilterLogs(r.ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs, err: %w", err)
	}
	return r.processLogsToRollupEvents(logs)
}

func (r *Reader) processLogsToRollupEvents(logs []types.Log) (RollupEvents, error) {
	var rollupEvents RollupEvents
	var rollupEvent RollupEvent
	var err error

	for _, vLog := range logs {
		switch vLog.Topics[0] {
		case r.l1CommitBatchEventSignature:
			event := &commitBatchEventUnpacked{}
			if err = UnpackLog(r.rollupABI, event, commitBatchEventName, vLog); err != nil {
				return nil, fmt.Errorf("failed to unpack commit rollup event log, err: %w", err)
			}
			log.Trace("found new CommitBatch event", "batch index", event.BatchIndex.Uint64())
			rollupEvent = &CommitBatchEvent{
				batchIndex:  event.BatchIndex,
				batchHash:   event.BatchHash,
				txHash:      vLog.TxHash,
				blockHash:   vLog.BlockHash,
				blockNumber: vLog.BlockNumber,
			}

		case r.l1RevertBatchEventSignature:
			event := &revertBatchEventUnpacked{}
			if err = UnpackLog(r.rollupABI, event, revertBatchEventName, vLog); err != nil {
				return nil, fmt.Errorf("failed to unpack revert rollup event log, err: %w", err)
			}
			log.Trace("found new RevertBatch event", "batch index", event.BatchIndex.Uint64())
			rollupEvent = &RevertBatchEvent{
				batchIndex: event.BatchIndex,
				batchHash:  event.BatchHash,
			}

		case r.l1FinalizeBatchEventSignature:
			event := &finalizeBatchEventUnpacked{}
			if err = UnpackLog(r.rollupABI, event, finalizeBatchEventName, vLog); err != nil {
				return nil, fmt.Errorf("failed to unpack finalized rollup event log, err: %w", err)
			}
			log.Trace("found new FinalizeBatch event", "batch index", event.BatchIndex.Uint64())
			rollupEvent = &FinalizeBatchEvent{
				batchIndex:   event.BatchIndex,
				batchHash:    event.BatchHash,
				stateRoot:    event.StateRoot,
				withdrawRoot: event.WithdrawRoot,
			}

		default:
			return nil, fmt.Errorf("unknown event, topic: %v, tx hash: %v", vLog.Topics[0].Hex(), vLog.TxHash.Hex())
		}

		rollupEvents = append(rollupEvents, rollupEvent)
	}
	return rollupEvents, nil
}

// FetchTxData fetches the calldata of the transaction that raised the given event.
func (r *Reader) FetchTxData(txHash, blockHash common.Hash) ([]byte, error) {
	tx, err := r.fetchTx(txHash, blockHash)
	if err != nil {
		return nil, err
	}
	return tx.Data(), nil
}

// fetchTx fetches a transaction by hash, falling back to scanning its block
// for nodes that do not index transactions.
func (r *Reader) fetchTx(txHash, blockHash common.Hash) (*types.Transaction, error) {
	tx, _, err := r.client.TransactionByHash(r.ctx, txHash)
	if err != nil {
		log.Debug("failed to get transaction by hash, probably an unindexed transaction, fetching the whole block to get the transaction",
			"tx hash", txHash.Hex(), "block hash", blockHash.Hex(), "err", err)
		block, err := r.client.BlockByHash(r.ctx, blockHash)
		if err != nil {
			return nil, fmt.Errorf("failed to get block by hash, block hash: %v, err: %w", blockHash.Hex(), err)
		}

		found := false
		for _, txInBlock := range block.Transactions() {
			if txInBlock.Hash() == txHash {
				tx = txInBlock
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("transaction not found in the block, tx hash: %v, block hash: %v", txHash.Hex(), blockHash.Hex())
		}
	}

	return tx, nil
}

// parseCommitBatchCalldata decodes commitBatch transaction data into its arguments.
func (r *Reader) parseCommitBatchCalldata(txData []byte) (*commitBatchArgs, error) {
	if len(txData) < methodIDLength {
		return nil, fmt.Errorf("transaction data is too short, length of tx data: %v, minimum length required: %v", len(txData), methodIDLength)
	}

	method, err := r.rollupABI.MethodById(txData[:methodIDLength])
	if err != nil {
		return nil, fmt.Errorf("failed to get method by ID, ID: %v, err: %w", txData[:methodIDLength], err)
	}
	if method.Name != commitBatchMethodName {
		return nil, fmt.Errorf("unexpected method name: %s", method.Name)
	}
	values, err := method.Inputs.Unpack(txData[methodIDLength:])
	if err != nil {
		return nil, fmt.Errorf("failed to unpack transaction data using ABI, err: %w", err)
	}
	args, err := newCommitBatchArgs(method, values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode calldata into commitBatch args, err: %w", err)
	}
	return args, nil
}

// ParentBatchHeader extracts the parent batch header carried in the commit
// transaction of the given event. The commitBatch calldata for batch N holds
// the encoded header of batch N-1.
func (r *Reader) ParentBatchHeader(event *CommitBatchEvent) (encoding.BatchHeaderBytes, error) {
	txData, err := r.FetchTxData(event.TxHash(), event.BlockHash())
	if err != nil {
		return nil, err
	}
	args, err := r.parseCommitBatchCalldata(txData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse commitBatch calldata, batch index: %v, err: %w", event.BatchIndex(), err)
	}
	header, err := encoding.NewBatchHeaderBytes(args.BatchDataInput.ParentBatchHeader)
	if err != nil {
		return nil, fmt.Errorf("invalid parent batch header in calldata, batch index: %v, err: %w", event.BatchIndex(), err)
	}
	return header, nil
}

// LatestCommittedBatchHeader recovers the header of the most recently
// confirmed batch by scanning CommitBatch events over the trailing lookback
// blocks: the newest commit's calldata carries its parent's encoded header.
// The recovered header is checked against the parent's committed batch hash
// before it is returned.
func (r *Reader) LatestCommittedBatchHeader(lookback uint64) (encoding.BatchHeaderBytes, error) {
	latest, err := r.client.BlockNumber(r.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block number, err: %w", err)
	}
	var from uint64 = 1
	if latest > lookback {
		from = latest - lookback
	}

	events, err := r.FetchRollupEventsInRange(from, latest)
	if err != nil {
		return nil, err
	}

	var commits []*CommitBatchEvent
	for _, event := range events {
		if commit, ok := event.(*CommitBatchEvent); ok {
			commits = append(commits, commit)
		}
	}
	if len(commits) < 2 {
		return nil, fmt.Errorf("%w: found %d in blocks [%d, %d]", ErrNotEnoughCommits, len(commits), from, latest)
	}
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].BlockNumber() < commits[j].BlockNumber()
	})

	newest := commits[len(commits)-1]
	parent := commits[len(commits)-2]

	header, err := r.ParentBatchHeader(newest)
	if err != nil {
		return nil, err
	}

	index, err := header.BatchIndex()
	if err != nil {
		return nil, err
	}
	if index != parent.BatchIndex().Uint64() {
		return nil, fmt.Errorf("recovered header batch index mismatch, header: %d, event: %v", index, parent.BatchIndex())
	}
	if hash := header.Hash(); hash != parent.BatchHash() {
		return nil, fmt.Errorf("recovered header hash mismatch, batch index: %d, computed: %s, committed: %s",
			index, hash.Hex(), parent.BatchHash().Hex())
	}

	log.Debug("recovered latest committed batch header", "batch index", index, "hash", header.Hash().Hex())
	return header, nil
}
