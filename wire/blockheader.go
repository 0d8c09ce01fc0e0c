package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
)

// BlockHeaderLen is the number of bytes in a serialized Botcoin block
// header: version(4) || prev(32) || merkle(32) || time(4) || bits(4) ||
// nonce(4).
const BlockHeaderLen = 80

// blockHeaderNonceOffset is the byte offset of the nonce field within a
// serialized header. Mining workers overwrite only these four bytes on
// each hash attempt instead of re-serializing the whole header.
const blockHeaderNonceOffset = 76

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) message.
type BlockHeader struct {
	// Version of the block.  This is not the same as the protocol version.
	Version int32

	// Hash of the previous block header in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created.  Stored on the wire as a uint32 count of
	// seconds since the Unix epoch.
	Timestamp uint32

	// Difficulty target for the block, in compact form.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// BtcDecode decodes r using the bitcoin protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) error {
	var buf [BlockHeaderLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	h.Decode(buf[:])
	return nil
}

// BtcEncode encodes the receiver to w using the bitcoin protocol encoding.
// This is part of the Message interface implementation.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) error {
	var buf [BlockHeaderLen]byte
	h.Encode(buf[:])
	_, err := w.Write(buf[:])
	return err
}

// Encode serializes the header in the canonical little-endian field order
// into dst, which must be at least BlockHeaderLen bytes long.
func (h *BlockHeader) Encode(dst []byte) {
	_ = dst[BlockHeaderLen-1] // bounds check hint
	binary.LittleEndian.PutUint32(dst[0:4], uint32(h.Version))
	copy(dst[4:36], h.PrevBlock[:])
	copy(dst[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(dst[68:72], h.Timestamp)
	binary.LittleEndian.PutUint32(dst[72:76], h.Bits)
	binary.LittleEndian.PutUint32(dst[76:80], h.Nonce)
}

// Decode populates the header from src, which must be at least
// BlockHeaderLen bytes long.
func (h *BlockHeader) Decode(src []byte) {
	_ = src[BlockHeaderLen-1]
	h.Version = int32(binary.LittleEndian.Uint32(src[0:4]))
	copy(h.PrevBlock[:], src[4:36])
	copy(h.MerkleRoot[:], src[36:68])
	h.Timestamp = binary.LittleEndian.Uint32(src[68:72])
	h.Bits = binary.LittleEndian.Uint32(src[72:76])
	h.Nonce = binary.LittleEndian.Uint32(src[76:80])
}

// Serialize returns the BlockHeaderLen-byte canonical serialization of the
// header, the same bytes BtcEncode writes. It takes no protocol version:
// the 80-byte form is what the PoW layer hashes.
func (h *BlockHeader) Serialize() []byte {
	buf := make([]byte, BlockHeaderLen)
	h.Encode(buf)
	return buf
}

// PutNonce overwrites only the nonce field of an already-serialized header
// buffer produced by Serialize/Encode. Callers in hot mining loops use this
// to avoid re-serializing the other 76 bytes on every attempt.
func PutNonce(serialized []byte, nonce uint32) {
	binary.LittleEndian.PutUint32(serialized[blockHeaderNonceOffset:blockHeaderNonceOffset+4], nonce)
}

// BlockHash computes the block identifier hash for this header. Botcoin,
// like its ancestor, identifies blocks by the double-SHA256 of the header;
// the RandomX digest used for proof-of-work is a distinct value computed
// separately by the pow package.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := h.Serialize()
	return chainhash.DoubleHashH(buf)
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (h *BlockHeader) Command() string {
	return "blockheader"
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (h *BlockHeader) MaxPayloadLength(pver uint32) uint32 {
	return BlockHeaderLen
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, difficulty bits, and nonce used
// to generate the block with defaults for the remaining fields.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash,
	bits uint32, nonce uint32) *BlockHeader {

	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Bits:       bits,
		Nonce:      nonce,
	}
}

func init() {
	// Sanity-checked at package init rather than on every call: the
	// nonce offset must line up with BlockHeaderLen-4 for PutNonce to be
	// correct regardless of future field reordering mistakes.
	if blockHeaderNonceOffset+4 != BlockHeaderLen {
		panic(fmt.Sprintf("wire: blockHeaderNonceOffset misconfigured: %d+4 != %d",
			blockHeaderNonceOffset, BlockHeaderLen))
	}
}
