package sighash

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/zcash-owsig/pkg/coin"
	"github.com/suffix-labs/zcash-owsig/pkg/script"
)

// Sapling mainnet version group ID, used by the fixtures.
const saplingVersionGroupID = 0x892F2085

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, by := range b {
		out[len(b)-1-i] = by
	}
	return out
}

// blakePersonal hashes data with BLAKE2b-256 under the given
// personalization, independently of the HashWriter under test.
func blakePersonal(t *testing.T, personalization, data []byte) []byte {
	t.Helper()
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: personalization})
	require.NoError(t, err)
	h.Write(data)
	return h.Sum(nil)
}

func le32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func le64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

type fixture struct {
	tx         *TxHeader
	inputs     []*TxInput
	outputs    []*TxOutput
	pubKeyHash []byte
}

func newFixture(t *testing.T, version uint32) *fixture {
	t.Helper()

	pubKeyHash := hexBytes(t, "79b000887626b294a914501a4cd226b58b235983")
	scriptA, err := script.BuildP2PKH(pubKeyHash)
	require.NoError(t, err)
	scriptB, err := script.BuildP2PKH(hexBytes(t, "ba27f99e007c7f605a8305e318c1abde3cd220ac"))
	require.NoError(t, err)

	return &fixture{
		tx: &TxHeader{
			Version:        version,
			VersionGroupID: saplingVersionGroupID,
			LockTime:       1540000000,
			Expiry:         400000,
		},
		inputs: []*TxInput{
			{
				PrevHash:   hexBytes(t, "4f6b0d4c0b0f2d1a9898aad57bcbffeb6b1a4a7f24b66e69a12e06dd2c474a9b"),
				PrevIndex:  0,
				Sequence:   0xFFFFFFFE,
				Amount:     100000000,
				ScriptType: SpendAddress,
			},
			{
				PrevHash:   hexBytes(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
				PrevIndex:  3,
				Sequence:   0xFFFFFFFF,
				Amount:     250000,
				ScriptType: SpendAddress,
			},
		},
		outputs: []*TxOutput{
			{Amount: 90000000, ScriptPubKey: scriptA},
			{Amount: 9990000, ScriptPubKey: scriptB},
		},
		pubKeyHash: pubKeyHash,
	}
}

// feed runs pass one of the signing flow over the fixture.
func (f *fixture) feed(h SigHasher) {
	for _, txi := range f.inputs {
		h.AddPrevout(txi.PrevHash, txi.PrevIndex)
		h.AddSequence(txi.Sequence)
	}
	for _, txo := range f.outputs {
		h.AddOutput(txo.Serialize())
	}
}

// commitmentHashes assembles the three commitment digests field by field,
// independently of the accumulators under test.
func (f *fixture) commitmentHashes(t *testing.T) (prevouts, sequence, outputs []byte) {
	t.Helper()

	prevoutData := new(bytes.Buffer)
	sequenceData := new(bytes.Buffer)
	for _, txi := range f.inputs {
		prevoutData.Write(reversed(txi.PrevHash))
		prevoutData.Write(le32(txi.PrevIndex))
		sequenceData.Write(le32(txi.Sequence))
	}

	outputData := new(bytes.Buffer)
	for _, txo := range f.outputs {
		outputData.Write(le64(txo.Amount))
		outputData.WriteByte(byte(len(txo.ScriptPubKey)))
		outputData.Write(txo.ScriptPubKey)
	}

	prevouts = blakePersonal(t, []byte("ZcashPrevoutHash"), prevoutData.Bytes())
	sequence = blakePersonal(t, []byte("ZcashSequencHash"), sequenceData.Bytes())
	outputs = blakePersonal(t, []byte("ZcashOutputsHash"), outputData.Bytes())
	return prevouts, sequence, outputs
}

func sigHashPersonalization(branchID uint32) []byte {
	return append([]byte("ZcashSigHash"), le32(branchID)...)
}

// TestZip143PreimageLayout cross-checks the v3 preimage against a field-by-
// field serialization written out independently here, per ZIP 143.
func TestZip143PreimageLayout(t *testing.T) {
	f := newFixture(t, 3)
	f.tx.VersionGroupID = 0x03C48270 // Overwinter version group ID
	branchID := uint32(0x5BA81B19)

	z := NewZip143(branchID)
	f.feed(z)

	got, err := z.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	require.NoError(t, err)

	prevouts, sequence, outputs := f.commitmentHashes(t)
	scriptCode, err := script.BuildP2PKH(f.pubKeyHash)
	require.NoError(t, err)

	preimage := new(bytes.Buffer)
	preimage.Write(le32(3 | 0x80000000))      // 1. nVersion | fOverwintered
	preimage.Write(le32(f.tx.VersionGroupID)) // 2. nVersionGroupId
	preimage.Write(prevouts)                  // 3. hashPrevouts
	preimage.Write(sequence)                  // 4. hashSequence
	preimage.Write(outputs)                   // 5. hashOutputs
	preimage.Write(make([]byte, 32))          // 6. hashJoinSplits
	preimage.Write(le32(f.tx.LockTime))       // 7. nLockTime
	preimage.Write(le32(f.tx.Expiry))         // 8. expiryHeight
	preimage.Write(le32(SighashAll))          // 9. nHashType
	preimage.Write(reversed(f.inputs[0].PrevHash))
	preimage.Write(le32(f.inputs[0].PrevIndex))
	preimage.WriteByte(byte(len(scriptCode)))
	preimage.Write(scriptCode)
	preimage.Write(le64(f.inputs[0].Amount))
	preimage.Write(le32(f.inputs[0].Sequence))

	want := blakePersonal(t, sigHashPersonalization(branchID), preimage.Bytes())
	assert.Equal(t, want, got[:])
}

// TestZip243PreimageLayout does the same for the v4 preimage, per ZIP 243.
func TestZip243PreimageLayout(t *testing.T) {
	f := newFixture(t, 4)
	branchID := uint32(0x76B809BB)

	z := NewZip243(branchID)
	f.feed(z)

	got, err := z.PreimageHash(coin.Zcash, f.tx, f.inputs[1], f.pubKeyHash, SighashAll)
	require.NoError(t, err)

	prevouts, sequence, outputs := f.commitmentHashes(t)
	scriptCode, err := script.BuildP2PKH(f.pubKeyHash)
	require.NoError(t, err)

	preimage := new(bytes.Buffer)
	preimage.Write(le32(4 | 0x80000000))      // 1. nVersion | fOverwintered
	preimage.Write(le32(f.tx.VersionGroupID)) // 2. nVersionGroupId
	preimage.Write(prevouts)                  // 3. hashPrevouts
	preimage.Write(sequence)                  // 4. hashSequence
	preimage.Write(outputs)                   // 5. hashOutputs
	preimage.Write(make([]byte, 32))          // 6. hashJoinSplits
	preimage.Write(make([]byte, 32))          // 7. hashShieldedSpends
	preimage.Write(make([]byte, 32))          // 8. hashShieldedOutputs
	preimage.Write(le32(f.tx.LockTime))       // 9. nLockTime
	preimage.Write(le32(f.tx.Expiry))         // 10. expiryHeight
	preimage.Write(le64(0))                   // 11. valueBalance
	preimage.Write(le32(SighashAll))          // 12. nHashType
	preimage.Write(reversed(f.inputs[1].PrevHash))
	preimage.Write(le32(f.inputs[1].PrevIndex))
	preimage.WriteByte(byte(len(scriptCode)))
	preimage.Write(scriptCode)
	preimage.Write(le64(f.inputs[1].Amount))
	preimage.Write(le32(f.inputs[1].Sequence))

	want := blakePersonal(t, sigHashPersonalization(branchID), preimage.Bytes())
	assert.Equal(t, want, got[:])
}

func TestPreimageHashDeterministic(t *testing.T) {
	f := newFixture(t, 4)

	z := NewZip243(0x76B809BB)
	f.feed(z)

	first, err := z.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	require.NoError(t, err)
	second, err := z.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A fresh strategy over the same records agrees as well.
	z2 := NewZip243(0x76B809BB)
	f.feed(z2)
	third, err := z2.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestPreimageHashCommitsToAllOutputs(t *testing.T) {
	f := newFixture(t, 4)
	z := NewZip243(0x76B809BB)
	f.feed(z)
	base, err := z.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	require.NoError(t, err)

	// Change only the second output's amount: input 0's sighash must move,
	// because the outputs hash covers every output.
	modified := newFixture(t, 4)
	modified.outputs[1].Amount++
	z2 := NewZip243(0x76B809BB)
	modified.feed(z2)
	changed, err := z2.PreimageHash(coin.Zcash, modified.tx, modified.inputs[0],
		modified.pubKeyHash, SighashAll)
	require.NoError(t, err)

	assert.NotEqual(t, base, changed)
}

func TestPreimageHashVersionGating(t *testing.T) {
	f := newFixture(t, 4)

	z143 := NewZip143(0x5BA81B19)
	f.feed(z143)
	require.Panics(t, func() {
		z143.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	})

	f3 := newFixture(t, 3)
	z243 := NewZip243(0x76B809BB)
	f3.feed(z243)
	require.Panics(t, func() {
		z243.PreimageHash(coin.Zcash, f3.tx, f3.inputs[0], f3.pubKeyHash, SighashAll)
	})
}

func TestPreimageHashRequiresOverwinteredCoin(t *testing.T) {
	f := newFixture(t, 4)
	z := NewZip243(0x76B809BB)
	f.feed(z)

	plain := &coin.Params{Name: "bitcoin", Overwintered: false}
	require.Panics(t, func() {
		z.PreimageHash(plain, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	})
}

func TestPreimageHashUnsupportedScriptType(t *testing.T) {
	f := newFixture(t, 4)
	z := NewZip243(0x76B809BB)
	f.feed(z)

	f.inputs[0].ScriptType = ScriptType(99)
	_, err := z.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	require.Error(t, err)

	var scriptErr *UnsupportedScriptTypeError
	assert.ErrorAs(t, err, &scriptErr)
}

func TestDeriveScriptCode(t *testing.T) {
	pubKeyHash := hexBytes(t, "79b000887626b294a914501a4cd226b58b235983")

	t.Run("p2pkh", func(t *testing.T) {
		got, err := deriveScriptCode(&TxInput{ScriptType: SpendAddress}, pubKeyHash)
		require.NoError(t, err)
		want, err := script.BuildP2PKH(pubKeyHash)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("multisig", func(t *testing.T) {
		keyA := bytes.Repeat([]byte{0x02}, 33)
		keyB := bytes.Repeat([]byte{0x03}, 33)
		keyC := bytes.Repeat([]byte{0x04}, 33)
		txi := &TxInput{
			ScriptType: SpendMultisig,
			Multisig:   &MultisigDescriptor{PubKeys: [][]byte{keyA, keyB, keyC}, M: 2},
		}

		got, err := deriveScriptCode(txi, nil)
		require.NoError(t, err)
		want, err := script.BuildMultisig([][]byte{keyA, keyB, keyC}, 2)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := deriveScriptCode(&TxInput{ScriptType: ScriptType(7)}, pubKeyHash)
		var scriptErr *UnsupportedScriptTypeError
		require.ErrorAs(t, err, &scriptErr)
		assert.Equal(t, ScriptType(7), scriptErr.ScriptType)
	})
}

func TestAddAfterPreimageHashPanics(t *testing.T) {
	f := newFixture(t, 4)
	z := NewZip243(0x76B809BB)
	f.feed(z)

	_, err := z.PreimageHash(coin.Zcash, f.tx, f.inputs[0], f.pubKeyHash, SighashAll)
	require.NoError(t, err)

	// The commitment hashes are finalized; a late add is a flow bug.
	require.Panics(t, func() {
		z.AddOutput(f.outputs[0].Serialize())
	})
}
