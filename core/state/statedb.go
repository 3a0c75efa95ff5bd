// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package state provides a journaled caching layer atop a flat key-value
// account store.
// state 包在扁平键值账户存储之上提供带日志的缓存层。
package state

import (
	"errors"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/log"
	"github.com/0xrusowsky/goevm/params"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
)

var errNilDatabase = errors.New("state: nil database")

// codeCacheSize is the number of contract codes kept in memory.
const codeCacheSize = 4096

type mutationType int

const (
	update mutationType = iota
	deletion
)

type mutation struct {
	typ mutationType
}

func (m *mutation) copy() *mutation {
	return &mutation{typ: m.typ}
}

func (m *mutation) isDelete() bool {
	return m.typ == deletion
}

// StateDB structs are used to store anything within the account store.
// StateDBs take care of caching and storing nested states. It's the general
// query interface to retrieve:
//
// * Contracts
// * Accounts
//
// Reads fall through to the backing database, writes stay in memory until
// Commit flushes them to a key-value writer.
// StateDB 负责缓存与嵌套状态，读取回落到底层数据库，写入在 Commit 前保留在内存中。
type StateDB struct {
	db        ethdb.Database
	codeCache *lru.Cache[common.Hash, []byte]

	// This map holds 'live' objects, which will get modified while
	// processing a state transition.
	stateObjects map[common.Address]*stateObject

	// This map holds 'deleted' objects. An object with the same address
	// might still be 'live' if it was recreated after being destructed.
	stateObjectsDestruct map[common.Address]*stateObject

	// This map tracks the account mutations that occurred since the last
	// commit.
	mutations map[common.Address]*mutation

	// DB error.
	// State objects are used by the consensus core and VM which are
	// unable to deal with database-level errors. Any error that occurs
	// during a database read is memoized here and will eventually be
	// returned by StateDB.Commit.
	dbErr error

	// The refund counter, also used by state transitioning.
	refund uint64

	// The tx context and all occurred logs in the scope of transaction.
	thash   common.Hash
	txIndex int
	logs    map[common.Hash][]*types.Log
	logSize uint

	// Preimages occurred seen by VM in the scope of block.
	preimages map[common.Hash][]byte

	// Per-transaction access list
	accessList accessList

	// Transient storage
	transientStorage transientStorage

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal *journal
}

// New creates a new state on top of the given database.
// New 基于给定数据库创建状态。
func New(db ethdb.Database) (*StateDB, error) {
	if db == nil {
		return nil, errNilDatabase
	}
	codeCache, err := lru.New[common.Hash, []byte](codeCacheSize)
	if err != nil {
		return nil, err
	}
	return &StateDB{
		db:                   db,
		codeCache:            codeCache,
		stateObjects:         make(map[common.Address]*stateObject),
		stateObjectsDestruct: make(map[common.Address]*stateObject),
		mutations:            make(map[common.Address]*mutation),
		logs:                 make(map[common.Hash][]*types.Log),
		preimages:            make(map[common.Hash][]byte),
		journal:              newJournal(),
		accessList:           newAccessList(),
		transientStorage:     newTransientStorage(),
	}, nil
}

// readCode loads contract code by hash, going through the code cache.
// readCode 按哈希读取代码，优先命中代码缓存。
func (s *StateDB) readCode(hash common.Hash) []byte {
	if code, ok := s.codeCache.Get(hash); ok {
		return code
	}
	code := rawdb.ReadCode(s.db, hash)
	if len(code) > 0 {
		s.codeCache.Add(hash, code)
	}
	return code
}

// Database returns the backing key-value store.
func (s *StateDB) Database() ethdb.Database {
	return s.db
}

// setError remembers the first non-nil error it is called with.
func (s *StateDB) setError(err error) {
	if s.dbErr == nil {
		s.dbErr = err
	}
}

// Error returns the memorized database failure occurred earlier.
func (s *StateDB) Error() error {
	return s.dbErr
}

// AddLog records a log emitted in the scope of the current transaction.
// AddLog 记录当前交易中产生的日志。
func (s *StateDB) AddLog(log *types.Log) {
	s.journal.logChange(s.thash)

	log.TxHash = s.thash
	log.Index = s.logSize
	s.logs[s.thash] = append(s.logs[s.thash], log)
	s.logSize++
}

// GetLogs returns the logs matching the specified transaction hash, and annotates
// them with the given blockNumber.
func (s *StateDB) GetLogs(hash common.Hash, blockNumber uint64) []*types.Log {
	logs := s.logs[hash]
	for _, l := range logs {
		l.BlockNumber = blockNumber
	}
	return logs
}

// Logs returns every log recorded so far, ordered by log index.
func (s *StateDB) Logs() []*types.Log {
	var logs []*types.Log
	for _, lgs := range s.logs {
		logs = append(logs, lgs...)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Index < logs[j].Index
	})
	return logs
}

// AddPreimage records a SHA3 preimage seen by the VM.
func (s *StateDB) AddPreimage(hash common.Hash, preimage []byte) {
	if _, ok := s.preimages[hash]; !ok {
		s.preimages[hash] = slices.Clone(preimage)
	}
}

// Preimages returns a list of SHA3 preimages that have been submitted.
func (s *StateDB) Preimages() map[common.Hash][]byte {
	return s.preimages
}

// AddRefund adds gas to the refund counter
func (s *StateDB) AddRefund(gas uint64) {
	s.journal.refundChange(s.refund)
	s.refund += gas
}

// SubRefund removes gas from the refund counter.
// This method will panic if the refund counter goes below zero
func (s *StateDB) SubRefund(gas uint64) {
	s.journal.refundChange(s.refund)
	if gas > s.refund {
		panic("refund counter below zero")
	}
	s.refund -= gas
}

// Exist reports whether the given account address exists in the state.
// Notably this also returns true for self-destructed accounts.
func (s *StateDB) Exist(addr common.Address) bool {
	return s.getStateObject(addr) != nil
}

// Empty returns whether the state object is either non-existent
// or empty according to the EIP161 specification (balance = nonce = code = 0)
func (s *StateDB) Empty(addr common.Address) bool {
	so := s.getStateObject(addr)
	return so == nil || so.empty()
}

// GetBalance retrieves the balance from the given address or 0 if object not found
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.Balance()
	}
	return new(uint256.Int)
}

// GetNonce retrieves the nonce from the given address or 0 if object not found
func (s *StateDB) GetNonce(addr common.Address) uint64 {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.Nonce()
	}
	return 0
}

// TxIndex returns the current transaction index set by SetTxContext.
func (s *StateDB) TxIndex() int {
	return s.txIndex
}

func (s *StateDB) GetCode(addr common.Address) []byte {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.Code()
	}
	return nil
}

func (s *StateDB) GetCodeSize(addr common.Address) int {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.CodeSize()
	}
	return 0
}

// GetCodeHash returns the code hash of the account, or the zero hash if the
// account does not exist.
func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return common.BytesToHash(stateObject.CodeHash())
	}
	return common.Hash{}
}

// GetState retrieves the value associated with the specific key.
func (s *StateDB) GetState(addr common.Address, hash common.Hash) common.Hash {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.GetState(hash)
	}
	return common.Hash{}
}

// GetCommittedState retrieves the value associated with the specific key
// without any mutations caused in the current execution.
func (s *StateDB) GetCommittedState(addr common.Address, hash common.Hash) common.Hash {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.GetCommittedState(hash)
	}
	return common.Hash{}
}

func (s *StateDB) HasSelfDestructed(addr common.Address) bool {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.selfDestructed
	}
	return false
}

/*
 * SETTERS
 */

// AddBalance adds amount to the account associated with addr.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int {
	stateObject := s.getOrNewStateObject(addr)
	return stateObject.AddBalance(amount)
}

// SubBalance subtracts amount from the account associated with addr.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int {
	stateObject := s.getOrNewStateObject(addr)
	if amount.IsZero() {
		return *(stateObject.Balance())
	}
	return stateObject.SubBalance(amount)
}

// SetBalance overwrites the balance of the account, used to seed state.
func (s *StateDB) SetBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) {
	stateObject := s.getOrNewStateObject(addr)
	stateObject.SetBalance(amount)
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	stateObject := s.getOrNewStateObject(addr)
	stateObject.SetNonce(nonce)
}

// SetCode installs code on the account and returns the code it replaced.
func (s *StateDB) SetCode(addr common.Address, code []byte) (prev []byte) {
	stateObject := s.getOrNewStateObject(addr)
	return stateObject.SetCode(crypto.Keccak256Hash(code), code)
}

// SetState sets a storage slot and returns the previous value.
func (s *StateDB) SetState(addr common.Address, key, value common.Hash) common.Hash {
	stateObject := s.getOrNewStateObject(addr)
	return stateObject.SetState(key, value)
}

// SelfDestruct marks the given account as selfdestructed.
// This clears the account balance.
//
// The account's state object is still available until the state is committed,
// getStateObject will return a non-nil account after SelfDestruct.
// SelfDestruct 将账户标记为已自毁并清空余额，返回此前的余额。
func (s *StateDB) SelfDestruct(addr common.Address) uint256.Int {
	stateObject := s.getStateObject(addr)
	var prevBalance uint256.Int
	if stateObject == nil {
		return prevBalance
	}
	prevBalance = *(stateObject.Balance())
	// Regardless of whether it is already destructed or not, we do have to
	// journal the balance-change, if we set it to zero here.
	if !stateObject.Balance().IsZero() {
		stateObject.SetBalance(new(uint256.Int))
	}
	// If it is already marked as self-destructed, we do not need to add it
	// for journalling a second time.
	if !stateObject.selfDestructed {
		s.journal.destruct(addr)
		stateObject.markSelfdestructed()
	}
	return prevBalance
}

// SelfDestruct6780 destructs the account only if it was created as a contract
// in the current transaction. It returns the balance held before the call and
// whether the destruction happened.
// SelfDestruct6780 仅在合约由当前交易创建时执行自毁（EIP-6780）。
func (s *StateDB) SelfDestruct6780(addr common.Address) (uint256.Int, bool) {
	stateObject := s.getStateObject(addr)
	if stateObject == nil {
		return uint256.Int{}, false
	}
	if stateObject.newContract {
		return s.SelfDestruct(addr), true
	}
	return *(stateObject.Balance()), false
}

// SetTransientState sets transient storage for a given account. It
// adds the change to the journal so that it can be rolled back
// to its previous value if there is a revert.
func (s *StateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	prev := s.GetTransientState(addr, key)
	if prev == value {
		return
	}
	s.journal.transientStateChange(addr, key, prev)
	s.setTransientState(addr, key, value)
}

// setTransientState is a lower level setter for transient storage. It
// is called during a revert to prevent modifications to the journal.
func (s *StateDB) setTransientState(addr common.Address, key, value common.Hash) {
	s.transientStorage.Set(addr, key, value)
}

// GetTransientState gets transient storage for a given account.
func (s *StateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return s.transientStorage.Get(addr, key)
}

//
// Setting, updating & deleting state object methods.
//

// getStateObject retrieves a state object given by the address, returning nil if
// the object is not found or was deleted in this execution context.
func (s *StateDB) getStateObject(addr common.Address) *stateObject {
	// Prefer live objects if any is available
	if obj := s.stateObjects[addr]; obj != nil {
		return obj
	}
	// Short circuit if the account is already destructed in this block.
	if _, ok := s.stateObjectsDestruct[addr]; ok {
		return nil
	}
	acct := rawdb.ReadAccount(s.db, addr)
	if acct == nil {
		return nil
	}
	// Insert into the live set
	obj := newObject(s, addr, acct)
	s.setStateObject(obj)
	return obj
}

func (s *StateDB) setStateObject(object *stateObject) {
	s.stateObjects[object.Address()] = object
}

// getOrNewStateObject retrieves a state object or create a new state object if nil.
func (s *StateDB) getOrNewStateObject(addr common.Address) *stateObject {
	obj := s.getStateObject(addr)
	if obj == nil {
		obj = s.createObject(addr)
	}
	return obj
}

// createObject creates a new state object. The assumption is held there is no
// existing account with the given address, otherwise it will be silently overwritten.
func (s *StateDB) createObject(addr common.Address) *stateObject {
	obj := newObject(s, addr, nil)
	s.journal.createObject(addr)
	s.setStateObject(obj)
	return obj
}

// CreateAccount explicitly creates a new state object, assuming that the
// account did not previously exist in the state. If the account already
// exists, this function will silently overwrite it which might lead to a
// consensus bug eventually.
func (s *StateDB) CreateAccount(addr common.Address) {
	s.createObject(addr)
}

// CreateContract is used whenever a contract is created. This may be preceded
// by CreateAccount, but that is not required if it already existed in the
// state due to funds sent beforehand.
// This operation sets the 'newContract'-flag, which is required in order to
// correctly handle EIP-6780 'delete-in-same-transaction' logic.
func (s *StateDB) CreateContract(addr common.Address) {
	obj := s.getStateObject(addr)
	if !obj.newContract {
		obj.newContract = true
		s.journal.createContract(addr)
	}
}

// Copy creates a deep, independent copy of the state.
// Snapshots of the copied state cannot be applied to the copy.
func (s *StateDB) Copy() *StateDB {
	state := &StateDB{
		db:                   s.db,
		codeCache:            s.codeCache,
		stateObjects:         make(map[common.Address]*stateObject, len(s.stateObjects)),
		stateObjectsDestruct: make(map[common.Address]*stateObject, len(s.stateObjectsDestruct)),
		mutations:            make(map[common.Address]*mutation, len(s.mutations)),
		dbErr:                s.dbErr,
		refund:               s.refund,
		thash:                s.thash,
		txIndex:              s.txIndex,
		logs:                 make(map[common.Hash][]*types.Log, len(s.logs)),
		logSize:              s.logSize,
		preimages:            maps.Clone(s.preimages),
		journal:              s.journal.copy(),

		// Both are empty between transactions, copying them keeps a
		// mid-transaction copy correct too.
		accessList:       s.accessList.Copy(),
		transientStorage: s.transientStorage.Copy(),
	}
	for addr, obj := range s.stateObjects {
		state.stateObjects[addr] = obj.deepCopy(state)
	}
	for addr, obj := range s.stateObjectsDestruct {
		state.stateObjectsDestruct[addr] = obj.deepCopy(state)
	}
	for addr, op := range s.mutations {
		state.mutations[addr] = op.copy()
	}
	// Deep copy the logs occurred in the scope of block
	for hash, logs := range s.logs {
		cpy := make([]*types.Log, len(logs))
		for i, l := range logs {
			cpy[i] = new(types.Log)
			*cpy[i] = *l
		}
		state.logs[hash] = cpy
	}
	return state
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	return s.journal.snapshot()
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	s.journal.revertToSnapshot(revid, s)
}

// GetRefund returns the current value of the refund counter.
func (s *StateDB) GetRefund() uint64 {
	return s.refund
}

// Finalise finalises the state by removing the destructed objects and clears
// the journal as well as the refunds. Finalise, however, will not push any updates
// into the database yet. Only Commit does that.
// Finalise 在交易结束时结算状态：移除已自毁（及可选的空）账户，清空日志与退款。
func (s *StateDB) Finalise(deleteEmptyObjects bool) {
	for addr := range s.journal.dirties {
		obj, exist := s.stateObjects[addr]
		if !exist {
			// The journal may mark an object dirty whose creation was reverted
			// since; that is fine, it has nothing to finalise.
			continue
		}
		if obj.selfDestructed || (deleteEmptyObjects && obj.empty()) {
			delete(s.stateObjects, obj.address)
			s.markDelete(addr)

			// Keep the original object around so commit knows the persisted
			// storage of the account has to be wiped.
			if _, ok := s.stateObjectsDestruct[obj.address]; !ok {
				s.stateObjectsDestruct[obj.address] = obj
			}
		} else {
			obj.finalise()
			s.markUpdate(addr)
		}
	}
	// Invalidate journal because reverting across transactions is not allowed.
	s.clearJournalAndRefund()
}

// SetTxContext sets the current transaction hash and index which are
// used when the EVM emits new state logs. It should be invoked before
// transaction execution.
func (s *StateDB) SetTxContext(thash common.Hash, ti int) {
	s.thash = thash
	s.txIndex = ti
}

func (s *StateDB) clearJournalAndRefund() {
	s.journal.reset()
	s.refund = 0
}

// Commit finalises the pending changes and writes every mutated account,
// its code and storage, and the recorded preimages to w. Accounts destructed
// since the last commit have their persisted storage wiped. When w is a batch
// it must be written before the state is read again.
// Commit 结算并把所有变更写入 w，已销毁账户的持久化存储会被清除。
func (s *StateDB) Commit(w ethdb.KeyValueWriter) error {
	if s.dbErr != nil {
		return s.dbErr
	}
	s.Finalise(true)

	var (
		start          = time.Now()
		accounts       int
		deleted        int
		slots          int
		slotsDeleted   int
		codeUpdated    int
		preimageWrites = len(s.preimages)
	)
	// Wipe the persisted storage of destructed accounts first, a recreated
	// account writes its fresh slots afterwards.
	for addr := range s.stateObjectsDestruct {
		var wiped []common.Hash
		err := rawdb.IterateStorage(s.db, addr, func(slot, _ common.Hash) bool {
			wiped = append(wiped, slot)
			return true
		})
		if err != nil {
			return err
		}
		for _, slot := range wiped {
			rawdb.DeleteStorage(w, addr, slot)
		}
		slotsDeleted += len(wiped)
	}
	for addr, op := range s.mutations {
		if op.isDelete() {
			rawdb.DeleteAccount(w, addr)
			deleted++
			continue
		}
		obj := s.stateObjects[addr]
		if obj == nil {
			continue
		}
		if obj.dirtyCode && len(obj.code) > 0 {
			codeUpdated++
		}
		slots += obj.commit(w)
		accounts++
	}
	if preimageWrites > 0 {
		rawdb.WritePreimages(w, s.preimages)
		s.preimages = make(map[common.Hash][]byte)
	}
	commits := rawdb.ReadCommitCount(s.db) + 1
	rawdb.WriteCommitCount(w, commits)

	clear(s.mutations)
	clear(s.stateObjectsDestruct)

	log.Debug("Committed state", "commit", commits, "accounts", accounts, "deleted", deleted,
		"slots", slots, "wiped", slotsDeleted, "code", codeUpdated, "preimages", preimageWrites,
		"elapsed", time.Since(start))
	return nil
}

// Prepare handles the preparatory steps for executing a state transition with.
// This method must be invoked before state transition.
//
// - Reset the access list and add sender, destination and precompiles (2929)
// - Add the contents of the optional tx access list (2930)
// - Add coinbase to access list (EIP-3651, Shanghai)
// - Reset transient storage (EIP-1153)
// Prepare 在执行前重置访问列表与瞬态存储，并预热发送者、接收者、预编译合约等地址。
func (s *StateDB) Prepare(rules params.Rules, sender, coinbase common.Address, dst *common.Address, precompiles []common.Address, list types.AccessList) {
	// Clear out any leftover from previous executions
	al := newAccessList()
	s.accessList = al

	al.AddAddress(sender)
	if dst != nil {
		al.AddAddress(*dst)
		// If it's a create-tx, the destination will be added inside evm.create
	}
	for _, addr := range precompiles {
		al.AddAddress(addr)
	}
	for _, el := range list {
		al.AddAddress(el.Address)
		for _, key := range el.StorageKeys {
			al.AddSlot(el.Address, key)
		}
	}
	if rules.IsShanghai {
		al.AddAddress(coinbase)
	}
	// Reset transient storage at the beginning of transaction execution
	s.transientStorage = newTransientStorage()
}

// AddAddressToAccessList adds the given address to the access list
func (s *StateDB) AddAddressToAccessList(addr common.Address) {
	if s.accessList.AddAddress(addr) {
		s.journal.accessListAddAccount(addr)
	}
}

// AddSlotToAccessList adds the given (address, slot)-tuple to the access list
func (s *StateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	addrMod, slotMod := s.accessList.AddSlot(addr, slot)
	if addrMod {
		// In practice, this should not happen, since there is no way to enter the
		// scope of 'address' without having the 'address' become already added
		// to the access list (via call-variant, create, etc).
		// Better safe than sorry, though
		s.journal.accessListAddAccount(addr)
	}
	if slotMod {
		s.journal.accessListAddSlot(addr, slot)
	}
}

// AddressInAccessList returns true if the given address is in the access list.
func (s *StateDB) AddressInAccessList(addr common.Address) bool {
	return s.accessList.ContainsAddress(addr)
}

// SlotInAccessList returns true if the given (address, slot)-tuple is in the access list.
func (s *StateDB) SlotInAccessList(addr common.Address, slot common.Hash) (addressPresent bool, slotPresent bool) {
	return s.accessList.Contains(addr, slot)
}

// markDelete is invoked when an account is deleted but the deletion is
// not yet committed.
func (s *StateDB) markDelete(addr common.Address) {
	if _, ok := s.mutations[addr]; !ok {
		s.mutations[addr] = &mutation{}
	}
	s.mutations[addr].typ = deletion
}

func (s *StateDB) markUpdate(addr common.Address) {
	if _, ok := s.mutations[addr]; !ok {
		s.mutations[addr] = &mutation{}
	}
	s.mutations[addr].typ = update
}
