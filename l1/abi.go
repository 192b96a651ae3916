package l1

import (
	"fmt"
	"math/big"

	"github.com/scroll-tech/go-ethereum/accounts/abi"
	"github.com/scroll-tech/go-ethereum/accounts/abi/bind"
	"github.com/scroll-tech/go-ethereum/common"
	"github.com/scroll-tech/go-ethereum/core/types"
)

// RollupMetaData contains the ABI of the Rollup contract: the rollup events
// plus the commitBatch method whose calldata carries the parent batch header.
var RollupMetaData = &bind.MetaData{
	ABI: "[{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"uint256\",\"name\":\"batchIndex\",\"type\":\"uint256\"},{\"indexed\":true,\"internalType\":\"bytes32\",\"name\":\"batchHash\",\"type\":\"bytes32\"}],\"name\":\"CommitBatch\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"uint256\",\"name\":\"batchIndex\",\"type\":\"uint256\"},{\"indexed\":true,\"internalType\":\"bytes32\",\"name\":\"batchHash\",\"type\":\"bytes32\"}],\"name\":\"RevertBatch\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"uint256\",\"name\":\"batchIndex\",\"type\":\"uint256\"},{\"indexed\":true,\"internalType\":\"bytes32\",\"name\":\"batchHash\",\"type\":\"bytes32\"},{\"indexed\":false,\"internalType\":\"bytes32\",\"name\":\"stateRoot\",\"type\":\"bytes32\"},{\"indexed\":false,\"internalType\":\"bytes32\",\"name\":\"withdrawRoot\",\"type\":\"bytes32\"}],\"name\":\"FinalizeBatch\",\"type\":\"event\"},{\"inputs\":[{\"components\":[{\"internalType\":\"uint8\",\"name\":\"version\",\"type\":\"uint8\"},{\"internalType\":\"bytes\",\"name\":\"parentBatchHeader\",\"type\":\"bytes\"},{\"internalType\":\"bytes\",\"name\":\"blockContexts\",\"type\":\"bytes\"},{\"internalType\":\"bytes\",\"name\":\"skippedL1MessageBitmap\",\"type\":\"bytes\"},{\"internalType\":\"bytes32\",\"name\":\"prevStateRoot\",\"type\":\"bytes32\"},{\"internalType\":\"bytes32\",\"name\":\"postStateRoot\",\"type\":\"bytes32\"},{\"internalType\":\"bytes32\",\"name\":\"withdrawalRoot\",\"type\":\"bytes32\"}],\"internalType\":\"struct IRollup.BatchDataInput\",\"name\":\"batchDataInput\",\"type\":\"tuple\"},{\"components\":[{\"internalType\":\"uint256\",\"name\":\"signedSequencersBitmap\",\"type\":\"uint256\"},{\"internalType\":\"bytes\",\"name\":\"sequencerSets\",\"type\":\"bytes\"},{\"internalType\":\"bytes\",\"name\":\"signature\",\"type\":\"bytes\"}],\"internalType\":\"struct IRollup.BatchSignatureInput\",\"name\":\"batchSignatureInput\",\"type\":\"tuple\"}],\"name\":\"commitBatch\",\"outputs\":[],\"stateMutability\":\"payable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"batchIndex\",\"type\":\"uint256\"}],\"name\":\"committedBatches\",\"outputs\":[{\"internalType\":\"bytes32\",\"name\":\"\",\"type\":\"bytes32\"}],\"stateMutability\":\"view\",\"type\":\"function\"}]",
}

const (
	// CommitEventType contains data of event of commit batch
	CommitEventType int = iota
	// RevertEventType contains data of event of revert batch
	RevertEventType
	// FinalizeEventType contains data of event of finalize batch
	FinalizeEventType
)

// RollupEvent represents a single rollup event (commit, revert, finalize)
type RollupEvent interface {
	Type() int
	BatchIndex() *big.Int
	BatchHash() common.Hash
}

type RollupEvents []RollupEvent

type commitBatchEventUnpacked struct {
	BatchIndex *big.Int
	BatchHash  common.Hash
}

type revertBatchEventUnpacked struct {
	BatchIndex *big.Int
	BatchHash  common.Hash
}

type finalizeBatchEventUnpacked struct {
	BatchIndex   *big.Int
	BatchHash    common.Hash
	StateRoot    common.Hash
	WithdrawRoot common.Hash
}

// CommitBatchEvent represents a CommitBatch event raised by the Rollup
// contract, with the location of the commit transaction attached.
type CommitBatchEvent struct {
	batchIndex  *big.Int
	batchHash   common.Hash
	txHash      common.Hash
	blockHash   common.Hash
	blockNumber uint64
}

func (c *CommitBatchEvent) Type() int {
	return CommitEventType
}

func (c *CommitBatchEvent) BatchIndex() *big.Int {
	return c.batchIndex
}

func (c *CommitBatchEvent) BatchHash() common.Hash {
	return c.batchHash
}

func (c *CommitBatchEvent) TxHash() common.Hash {
	return c.txHash
}

func (c *CommitBatchEvent) BlockHash() common.Hash {
	return c.blockHash
}

func (c *CommitBatchEvent) BlockNumber() uint64 {
	return c.blockNumber
}

// RevertBatchEvent represents a RevertBatch event raised by the Rollup contract.
type RevertBatchEvent struct {
	batchIndex *big.Int
	batchHash  common.Hash
}

func (r *RevertBatchEvent) Type() int {
	return RevertEventType
}

func (r *RevertBatchEvent) BatchIndex() *big.Int {
	return r.batchIndex
}

func (r *RevertBatchEvent) BatchHash() common.Hash {
	return r.batchHash
}

// FinalizeBatchEvent represents a FinalizeBatch event raised by the Rollup contract.
type FinalizeBatchEvent struct {
	batchIndex   *big.Int
	batchHash    common.Hash
	stateRoot    common.Hash
	withdrawRoot common.Hash
}

func (f *FinalizeBatchEvent) Type() int {
	return FinalizeEventType
}

func (f *FinalizeBatchEvent) BatchIndex() *big.Int {
	return f.batchIndex
}

func (f *FinalizeBatchEvent) BatchHash() common.Hash {
	return f.batchHash
}

func (f *FinalizeBatchEvent) StateRoot() common.Hash {
	return f.stateRoot
}

func (f *FinalizeBatchEvent) WithdrawRoot() common.Hash {
	return f.withdrawRoot
}

// batchDataInput mirrors the BatchDataInput tuple of the commitBatch method.
type batchDataInput struct {
	Version                uint8
	ParentBatchHeader      []byte
	BlockContexts          []byte
	SkippedL1MessageBitmap []byte
	PrevStateRoot          [32]byte
	PostStateRoot          [32]byte
	WithdrawalRoot         [32]byte
}

// batchSignatureInput mirrors the BatchSignatureInput tuple of the
// commitBatch method.
type batchSignatureInput struct {
	SignedSequencersBitmap *big.Int
	SequencerSets          []byte
	Signature              []byte
}

type commitBatchArgs struct {
	BatchDataInput      batchDataInput
	BatchSignatureInput batchSignatureInput
}

func newCommitBatchArgs(method *abi.Method, values []interface{}) (*commitBatchArgs, error) {
	var args commitBatchArgs
	err := method.Inputs.Copy(&args, values)
	return &args, err
}

// UnpackLog unpacks a retrieved log into the provided output structure.
func UnpackLog(c *abi.ABI, out interface{}, event string, log types.Log) error {
	if log.Topics[0] != c.Events[event].ID {
		return fmt.Errorf("event signature mismatch")
	}
	if len(log.Data) > 0 {
		if err := c.UnpackIntoInterface(out, event, log.Data); err != nil {
			return err
		}
	}
	var indexed abi.Arguments
	for _, arg := range c.Events[event].Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return abi.ParseTopics(out, indexed, log.Topics[1:])
}
