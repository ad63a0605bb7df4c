package protocol

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
	"github.com/ZippelLabs/ZP1/internal/circlestark/merkle"
)

// proofVersion is embedded in the proof so a verifier can reject proofs
// from an incompatible AIR or wire-format version before doing any field
// arithmetic. It is not absorbed into the transcript.
const proofVersion uint32 = 1

// QueryOpening is everything the verifier needs to check one query
// index against the trace, LogUp, and composition commitments, plus the
// per-layer FRI openings that same index threads through.
type QueryOpening struct {
	Index int

	TraceValues []field.M31
	TracePath   merkle.Path

	// NextTraceValues/NextTracePath open the trace row at the adjacent
	// LDE-domain index, the "next row" air.EvaluateRow's transition
	// constraints read across; the verifier needs it to re-run the AIR
	// at this query point (§4.11).
	NextTraceValues []field.M31
	NextTracePath   merkle.Path

	LogUpValues []field.M31
	LogUpPath   merkle.Path

	CompositionValue field.QM31
	CompositionPath  merkle.Path

	FRIValues [][2]field.QM31
	FRIPaths  [][2]merkle.Path
}

// Proof is the self-describing structure a prover emits and a verifier
// consumes: commitment roots, out-of-domain openings, FRI layer roots
// and final values, and one QueryOpening per sampled query index.
type Proof struct {
	Version uint32

	TraceRoot       [32]byte
	LogUpRoot       [32]byte
	CompositionRoot [32]byte

	ColumnsAtZ  []field.QM31
	ColumnsAtZG []field.QM31
	CompAtZ     field.QM31

	FRI FRIProof

	Queries []QueryOpening
}

// Encode serializes the proof as a length-delimited sequence of byte
// strings, per the external-interface contract: every variable-length
// field is prefixed with its length as a fixed little-endian uint32.
func (p *Proof) Encode() []byte {
	var buf []byte
	buf = appendU32(buf, p.Version)
	buf = appendBytes(buf, p.TraceRoot[:])
	buf = appendBytes(buf, p.LogUpRoot[:])
	buf = appendBytes(buf, p.CompositionRoot[:])
	buf = appendQM31Slice(buf, p.ColumnsAtZ)
	buf = appendQM31Slice(buf, p.ColumnsAtZG)
	buf = appendBytes(buf, qm31ToBytes(p.CompAtZ))

	buf = appendU32(buf, uint32(len(p.FRI.LayerRoots)))
	for _, r := range p.FRI.LayerRoots {
		buf = appendBytes(buf, r[:])
	}
	buf = appendQM31Slice(buf, p.FRI.Challenges)
	buf = appendQM31Slice(buf, p.FRI.FinalValues)

	buf = appendU32(buf, uint32(len(p.Queries)))
	for _, q := range p.Queries {
		buf = appendU32(buf, uint32(q.Index))
		buf = appendM31Slice(buf, q.TraceValues)
		buf = appendPath(buf, q.TracePath)
		buf = appendM31Slice(buf, q.NextTraceValues)
		buf = appendPath(buf, q.NextTracePath)
		buf = appendM31Slice(buf, q.LogUpValues)
		buf = appendPath(buf, q.LogUpPath)
		buf = appendBytes(buf, qm31ToBytes(q.CompositionValue))
		buf = appendPath(buf, q.CompositionPath)

		buf = appendU32(buf, uint32(len(q.FRIValues)))
		for i, pair := range q.FRIValues {
			buf = appendBytes(buf, qm31ToBytes(pair[0]))
			buf = appendBytes(buf, qm31ToBytes(pair[1]))
			buf = appendPath(buf, q.FRIPaths[i][0])
			buf = appendPath(buf, q.FRIPaths[i][1])
		}
	}
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendBytes(buf []byte, data []byte) []byte {
	buf = appendU32(buf, uint32(len(data)))
	return append(buf, data...)
}

func appendM31Slice(buf []byte, vs []field.M31) []byte {
	buf = appendU32(buf, uint32(len(vs)))
	for _, v := range vs {
		b := v.Bytes()
		buf = append(buf, b[:]...)
	}
	return buf
}

func appendQM31Slice(buf []byte, vs []field.QM31) []byte {
	buf = appendU32(buf, uint32(len(vs)))
	for _, v := range vs {
		buf = append(buf, qm31ToBytes(v)...)
	}
	return buf
}

func appendPath(buf []byte, p merkle.Path) []byte {
	buf = appendU32(buf, uint32(len(p.Siblings)))
	for _, s := range p.Siblings {
		buf = append(buf, s.Hash[:]...)
		if s.IsRight {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

// decoder reads the length-delimited fields Encode wrote, in the same
// order, erroring on truncated input rather than panicking.
type decoder struct {
	buf []byte
}

func (d *decoder) u32() (uint32, error) {
	if len(d.buf) < 4 {
		return 0, errors.New("protocol: truncated proof while reading uint32")
	}
	v := binary.LittleEndian.Uint32(d.buf[:4])
	d.buf = d.buf[4:]
	return v, nil
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if uint32(len(d.buf)) < n {
		return nil, errors.New("protocol: truncated proof while reading byte string")
	}
	out := d.buf[:n]
	d.buf = d.buf[n:]
	return out, nil
}

func (d *decoder) fixedBytes(n int) ([32]byte, error) {
	var out [32]byte
	b, err := d.bytes32(n)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func (d *decoder) bytes32(n int) ([]byte, error) {
	if len(d.buf) < n {
		return nil, errors.New("protocol: truncated proof while reading fixed field")
	}
	out := d.buf[:n]
	d.buf = d.buf[n:]
	return out, nil
}

func (d *decoder) m31Slice() ([]field.M31, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	out := make([]field.M31, n)
	for i := range out {
		b, err := d.bytes32(4)
		if err != nil {
			return nil, err
		}
		var arr [4]byte
		copy(arr[:], b)
		out[i] = field.FromBytes(arr)
	}
	return out, nil
}

func (d *decoder) qm31Slice() ([]field.QM31, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	out := make([]field.QM31, n)
	for i := range out {
		v, err := d.qm31()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) qm31() (field.QM31, error) {
	b, err := d.bytes32(16)
	if err != nil {
		return field.QM31Zero, err
	}
	var arr [16]byte
	copy(arr[:], b)
	return field.QM31FromBytes(arr), nil
}

func (d *decoder) path() (merkle.Path, error) {
	n, err := d.u32()
	if err != nil {
		return merkle.Path{}, err
	}
	siblings := make([]merkle.Sibling, n)
	for i := range siblings {
		h, err := d.bytes32(32)
		if err != nil {
			return merkle.Path{}, err
		}
		flag, err := d.bytes32(1)
		if err != nil {
			return merkle.Path{}, err
		}
		var hash [32]byte
		copy(hash[:], h)
		siblings[i] = merkle.Sibling{Hash: hash, IsRight: flag[0] == 1}
	}
	return merkle.Path{Siblings: siblings}, nil
}

// Decode parses the byte string Encode produced back into a Proof.
func Decode(data []byte) (*Proof, error) {
	d := &decoder{buf: data}
	p := &Proof{}

	var err error
	if p.Version, err = d.u32(); err != nil {
		return nil, err
	}
	if p.Version != proofVersion {
		return nil, newVerifyError(KindVersionMismatch, "proof version does not match this AIR")
	}
	if p.TraceRoot, err = readRootField(d); err != nil {
		return nil, err
	}
	if p.LogUpRoot, err = readRootField(d); err != nil {
		return nil, err
	}
	if p.CompositionRoot, err = readRootField(d); err != nil {
		return nil, err
	}
	if p.ColumnsAtZ, err = d.qm31Slice(); err != nil {
		return nil, err
	}
	if p.ColumnsAtZG, err = d.qm31Slice(); err != nil {
		return nil, err
	}
	if p.CompAtZ, err = d.qm31(); err != nil {
		return nil, err
	}

	numLayers, err := d.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < numLayers; i++ {
		root, err := readRootField(d)
		if err != nil {
			return nil, err
		}
		p.FRI.LayerRoots = append(p.FRI.LayerRoots, root)
	}
	if p.FRI.Challenges, err = d.qm31Slice(); err != nil {
		return nil, err
	}
	if p.FRI.FinalValues, err = d.qm31Slice(); err != nil {
		return nil, err
	}

	numQueries, err := d.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < numQueries; i++ {
		q, err := decodeQuery(d)
		if err != nil {
			return nil, err
		}
		p.Queries = append(p.Queries, q)
	}
	return p, nil
}

func readRootField(d *decoder) ([32]byte, error) {
	n, err := d.u32()
	if err != nil {
		return [32]byte{}, err
	}
	return d.fixedBytes(int(n))
}

func decodeQuery(d *decoder) (QueryOpening, error) {
	var q QueryOpening
	idx, err := d.u32()
	if err != nil {
		return q, err
	}
	q.Index = int(idx)

	if q.TraceValues, err = d.m31Slice(); err != nil {
		return q, err
	}
	if q.TracePath, err = d.path(); err != nil {
		return q, err
	}
	if q.NextTraceValues, err = d.m31Slice(); err != nil {
		return q, err
	}
	if q.NextTracePath, err = d.path(); err != nil {
		return q, err
	}
	if q.LogUpValues, err = d.m31Slice(); err != nil {
		return q, err
	}
	if q.LogUpPath, err = d.path(); err != nil {
		return q, err
	}
	if q.CompositionValue, err = d.qm31(); err != nil {
		return q, err
	}
	if q.CompositionPath, err = d.path(); err != nil {
		return q, err
	}

	numFRI, err := d.u32()
	if err != nil {
		return q, err
	}
	for i := uint32(0); i < numFRI; i++ {
		a, err := d.qm31()
		if err != nil {
			return q, err
		}
		b, err := d.qm31()
		if err != nil {
			return q, err
		}
		pa, err := d.path()
		if err != nil {
			return q, err
		}
		pb, err := d.path()
		if err != nil {
			return q, err
		}
		q.FRIValues = append(q.FRIValues, [2]field.QM31{a, b})
		q.FRIPaths = append(q.FRIPaths, [2]merkle.Path{pa, pb})
	}
	return q, nil
}
