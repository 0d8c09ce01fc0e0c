package wire

import (
	"encoding/binary"
	"io"

	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
)

// TxVersion is the current latest supported transaction version.
const TxVersion = 1

// MaxBlockPayload is the maximum bytes a block message is allowed to be,
// used as the upper bound a lone transaction's payload could occupy.
const MaxBlockPayload = 4_000_000

// defaultTxInOutAlloc bounds the initial capacity Deserialize
// preallocates for a transaction's inputs/outputs, avoiding reallocation
// for the common single-input coinbase case without trusting an
// attacker-controlled count for the allocation size itself.
// maxTxInOutCount is the largest input or output count Deserialize
// accepts.
const (
	defaultTxInOutAlloc = 1
	maxTxInOutCount     = 1_000_000
)

// OutPoint defines a bitcoin data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new bitcoin transaction outpoint point with the
// provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// NewTxIn returns a new bitcoin transaction input with the provided
// previous outpoint and signature script, defaulting to the maximum
// sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// MaxTxInSequenceNum is the default, non-locktime-enabling sequence
// number for a transaction input.
const MaxTxInSequenceNum uint32 = 0xffffffff

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new bitcoin transaction output with the provided
// value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// MsgTx implements the Message interface and represents a bitcoin
// transaction message. Botcoin's scope is limited to coinbase
// transactions carried in a block template (spec §1 Non-goals: general
// transaction relay, script execution, and a mempool are out of scope),
// but the wire shape is the ordinary single-version Bitcoin transaction
// format so a coinbase built here round-trips through any Bitcoin-family
// tooling that might inspect it.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new bitcoin transaction message with the given
// version, no inputs or outputs, and a zero lock time.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// IsCoinBase reports whether msg is a coinbase transaction: exactly one
// input with a null previous outpoint (zero hash, max index).
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}
	prevOut := &msg.TxIn[0].PreviousOutPoint
	return prevOut.Index == 0xffffffff && prevOut.Hash == chainhash.Hash{}
}

// TxHash computes the double-SHA256 hash of the serialized transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	return chainhash.DoubleHashH(msg.serialize())
}

// Command returns the protocol command string for the message. This is
// part of the Message interface implementation.
func (msg *MsgTx) Command() string {
	return "tx"
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver. This is part of the Message interface implementation.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return MaxBlockPayload
}

// BtcEncode encodes the receiver to w using the bitcoin protocol
// encoding. This is part of the Message interface implementation.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) error {
	_, err := w.Write(msg.serialize())
	return err
}

// BtcDecode decodes r using the bitcoin protocol encoding into the
// receiver. This is part of the Message interface implementation.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) error {
	return msg.Deserialize(r)
}

// Serialize returns the canonical wire-format serialization of the
// transaction.
func (msg *MsgTx) Serialize() []byte {
	return msg.serialize()
}

func (msg *MsgTx) serialize() []byte {
	var buf []byte
	var scratch [8]byte

	binary.LittleEndian.PutUint32(scratch[:4], uint32(msg.Version))
	buf = append(buf, scratch[:4]...)

	buf = appendVarInt(buf, uint64(len(msg.TxIn)))
	for _, ti := range msg.TxIn {
		buf = append(buf, ti.PreviousOutPoint.Hash[:]...)
		binary.LittleEndian.PutUint32(scratch[:4], ti.PreviousOutPoint.Index)
		buf = append(buf, scratch[:4]...)
		buf = appendVarInt(buf, uint64(len(ti.SignatureScript)))
		buf = append(buf, ti.SignatureScript...)
		binary.LittleEndian.PutUint32(scratch[:4], ti.Sequence)
		buf = append(buf, scratch[:4]...)
	}

	buf = appendVarInt(buf, uint64(len(msg.TxOut)))
	for _, to := range msg.TxOut {
		binary.LittleEndian.PutUint64(scratch[:8], uint64(to.Value))
		buf = append(buf, scratch[:8]...)
		buf = appendVarInt(buf, uint64(len(to.PkScript)))
		buf = append(buf, to.PkScript...)
	}

	binary.LittleEndian.PutUint32(scratch[:4], msg.LockTime)
	buf = append(buf, scratch[:4]...)

	return buf
}

// Deserialize decodes r as a wire-format transaction into the receiver.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var scratch [8]byte

	if _, err := io.ReadFull(r, scratch[:4]); err != nil {
		return err
	}
	msg.Version = int32(binary.LittleEndian.Uint32(scratch[:4]))

	inCount, err := readVarInt(r)
	if err != nil {
		return err
	}
	if inCount > maxTxInOutCount {
		return io.ErrUnexpectedEOF
	}
	msg.TxIn = make([]*TxIn, 0, minInt(int(inCount), defaultTxInOutAlloc))
	for i := uint64(0); i < inCount; i++ {
		ti := &TxIn{}
		if _, err := io.ReadFull(r, ti.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, scratch[:4]); err != nil {
			return err
		}
		ti.PreviousOutPoint.Index = binary.LittleEndian.Uint32(scratch[:4])

		scriptLen, err := readVarInt(r)
		if err != nil {
			return err
		}
		ti.SignatureScript = make([]byte, scriptLen)
		if _, err := io.ReadFull(r, ti.SignatureScript); err != nil {
			return err
		}

		if _, err := io.ReadFull(r, scratch[:4]); err != nil {
			return err
		}
		ti.Sequence = binary.LittleEndian.Uint32(scratch[:4])
		msg.TxIn = append(msg.TxIn, ti)
	}

	outCount, err := readVarInt(r)
	if err != nil {
		return err
	}
	if outCount > maxTxInOutCount {
		return io.ErrUnexpectedEOF
	}
	msg.TxOut = make([]*TxOut, 0, minInt(int(outCount), defaultTxInOutAlloc))
	for i := uint64(0); i < outCount; i++ {
		if _, err := io.ReadFull(r, scratch[:8]); err != nil {
			return err
		}
		value := int64(binary.LittleEndian.Uint64(scratch[:8]))

		scriptLen, err := readVarInt(r)
		if err != nil {
			return err
		}
		pkScript := make([]byte, scriptLen)
		if _, err := io.ReadFull(r, pkScript); err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, &TxOut{Value: value, PkScript: pkScript})
	}

	if _, err := io.ReadFull(r, scratch[:4]); err != nil {
		return err
	}
	msg.LockTime = binary.LittleEndian.Uint32(scratch[:4])
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// appendVarInt appends val to buf using Bitcoin's variable-length integer
// encoding.
func appendVarInt(buf []byte, val uint64) []byte {
	switch {
	case val < 0xfd:
		return append(buf, byte(val))
	case val <= 0xffff:
		var scratch [2]byte
		binary.LittleEndian.PutUint16(scratch[:], uint16(val))
		return append(append(buf, 0xfd), scratch[:]...)
	case val <= 0xffffffff:
		var scratch [4]byte
		binary.LittleEndian.PutUint32(scratch[:], uint32(val))
		return append(append(buf, 0xfe), scratch[:]...)
	default:
		var scratch [8]byte
		binary.LittleEndian.PutUint64(scratch[:], val)
		return append(append(buf, 0xff), scratch[:]...)
	}
}

// readVarInt reads a Bitcoin variable-length integer from r.
func readVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	switch prefix[0] {
	case 0xff:
		var scratch [8]byte
		if _, err := io.ReadFull(r, scratch[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(scratch[:]), nil
	case 0xfe:
		var scratch [4]byte
		if _, err := io.ReadFull(r, scratch[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(scratch[:])), nil
	case 0xfd:
		var scratch [2]byte
		if _, err := io.ReadFull(r, scratch[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(scratch[:])), nil
	default:
		return uint64(prefix[0]), nil
	}
}
