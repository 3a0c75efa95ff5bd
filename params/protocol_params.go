// Copyright 2015 The go-ethereum Authors
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

package params

// Gas 费用：每个 EVM 操作都有相应的 gas 费用，以防止滥用并为执行设置确定性的上限。
// 本文件只保留解释器（坎昆规则）实际用到的常量。

const (
	MaxGasLimit uint64 = 0x7fffffffffffffff // Maximum the gas limit (2^63-1).

	ExpByteGas           uint64 = 10    // Times ceil(log256(exponent)) for the EXP instruction.
	CallValueTransferGas uint64 = 9000  // Paid for CALL when the value transfer is non-zero.
	CallNewAccountGas    uint64 = 25000 // Paid for CALL when the destination address didn't exist prior.
	TxGas                uint64 = 21000 // Per transaction not creating a contract.
	QuadCoeffDiv         uint64 = 512   // Divisor for the quadratic particle of the memory cost equation.
	LogDataGas           uint64 = 8     // Per byte in a LOG* operation's data.
	CallStipend          uint64 = 2300  // Free gas given at beginning of call.

	Keccak256Gas     uint64 = 30 // Once per KECCAK256 operation.
	Keccak256WordGas uint64 = 6  // Once per word of the KECCAK256 operation's data.
	InitCodeWordGas  uint64 = 2  // Once per word of the init code when creating a contract.

	SstoreSentryGasEIP2200            uint64 = 2300  // Minimum gas required to be present for an SSTORE call, not consumed
	SstoreSetGasEIP2200               uint64 = 20000 // Once per SSTORE operation from clean zero to non-zero
	SstoreResetGasEIP2200             uint64 = 5000  // Once per SSTORE operation from clean non-zero to something else
	SstoreClearsScheduleRefundEIP2200 uint64 = 15000 // Once per SSTORE operation for clearing an originally existing storage slot

	ColdAccountAccessCostEIP2929 = uint64(2600) // COLD_ACCOUNT_ACCESS_COST
	ColdSloadCostEIP2929         = uint64(2100) // COLD_SLOAD_COST
	WarmStorageReadCostEIP2929   = uint64(100)  // WARM_STORAGE_READ_COST

	// In EIP-2200: SstoreResetGas was 5000.
	// In EIP-2929: SstoreResetGas was changed to '5000 - COLD_SLOAD_COST'.
	// In EIP-3529: SSTORE_CLEARS_SCHEDULE is defined as SSTORE_RESET_GAS + ACCESS_LIST_STORAGE_KEY_COST
	// Which becomes: 5000 - 2100 + 1900 = 4800
	SstoreClearsScheduleRefundEIP3529 uint64 = SstoreResetGasEIP2200 - ColdSloadCostEIP2929 + TxAccessListStorageKeyGas

	JumpdestGas     uint64 = 1     // Once per JUMPDEST operation.
	CreateDataGas   uint64 = 200   // Gas cost per byte of data in contract creation
	CallCreateDepth uint64 = 1024  // Maximum depth of call/create stack.
	ExpGas          uint64 = 10    // Once per EXP instruction
	LogGas          uint64 = 375   // Per LOG* operation.
	CopyGas         uint64 = 3     // Gas cost per word for memory copy operations
	StackLimit      uint64 = 1024  // Maximum size of VM stack allowed.
	LogTopicGas     uint64 = 375   // Multiplied by the * of the LOG*, per LOG transaction. e.g. LOG0 incurs 0 * c_txLogTopicGas, LOG4 incurs 4 * c_txLogTopicGas.
	CreateGas       uint64 = 32000 // Once per CREATE operation & contract-creation transaction.
	Create2Gas      uint64 = 32000 // Once per CREATE2 operation
	MemoryGas       uint64 = 3     // Times the address of the (highest referenced byte in memory + 1). NOTE: referencing happens on read, write and in instructions such as RETURN and CALL.

	TxAccessListStorageKeyGas uint64 = 1900 // Per storage key specified in EIP 2930 access list

	CallGasEIP150         uint64 = 700   // Static portion of gas for CALL-derivates after EIP 150 (Tangerine)
	SelfdestructGasEIP150 uint64 = 5000  // Cost of SELFDESTRUCT post EIP 150 (Tangerine)
	ExpByteEIP158         uint64 = 50    // was raised to 50 during Eip158 (Spurious Dragon)

	// CreateBySelfdestructGas is used when the refunded account is one that does
	// not exist. This logic is similar to call.
	// CreateBySelfdestructGas 是通过 SELFDESTRUCT 向不存在账户转账时的额外 gas 费用，与 call 类似。
	CreateBySelfdestructGas uint64 = 25000

	MaxCodeSize     = 24576           // Maximum bytecode to permit for a contract
	MaxInitCodeSize = 2 * MaxCodeSize // Maximum initcode to permit in a creation transaction and create instructions

	// Precompiled contract gas prices
	// 预编译合约的 gas 价格

	EcrecoverGas        uint64 = 3000 // Elliptic curve sender recovery gas price
	Sha256BaseGas       uint64 = 60   // Base price for a SHA256 operation
	Sha256PerWordGas    uint64 = 12   // Per-word price for a SHA256 operation
	Ripemd160BaseGas    uint64 = 600  // Base price for a RIPEMD160 operation
	Ripemd160PerWordGas uint64 = 120  // Per-word price for a RIPEMD160 operation
	IdentityBaseGas     uint64 = 15   // Base price for a data copy operation
	IdentityPerWordGas  uint64 = 3    // Per-work price for a data copy operation
	ModExpMinGas        uint64 = 200  // Floor of the EIP-2565 modular exponentiation price
	ModExpQuadCoeffDiv  uint64 = 3    // Divisor for the EIP-2565 modexp complexity

	// The Refund Quotient is the cap on how much of the used gas can be refunded. Prior to
	// EIP-3529, refunds were capped to gasUsed / 2. After EIP-3529, it is gasUsed / 5.
	// 退款上限：EIP-3529 之后，最多可退还已用 gas 的 1/5。
	RefundQuotientEIP3529 uint64 = 5

	InitialBaseFee = 1000000000 // Initial base fee for EIP-1559 blocks.

	BlobTxBlobGasPerBlob             = 1 << 17 // Gas consumption of a single data blob (== blob byte size)
	BlobTxMinBlobGasprice            = 1       // Minimum gas price for data blobs
	BlobTxBlobGaspriceUpdateFraction = 3338477 // Controls the maximum rate of change for blob gas price
	BlobTxHashVersion                = 0x01    // Version byte of the commitment hash

	// MemoryLimit is the default cap on the byte length of the memory shared
	// by all frames of one execution. It is the largest word-aligned size whose
	// word count still fits the memory gas formula without overflow.
	// MemoryLimit 是一次执行中所有帧共享内存字节长度的默认上限。
	MemoryLimit uint64 = 0x1FFFFFFFE0
)
