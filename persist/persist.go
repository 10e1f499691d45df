// Package persist serializes a graph.Graph and its source list to an
// opaque, versioned snapshot and restores it exactly: node attributes
// (including component pairing and precompiled status), edges (with line
// numbers and removability), and the source list round-trip unchanged
// (spec.md §6/§8).
package persist

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"

	"github.com/viant/includeguardian/graph"
)

// FormatVersion is the semver tag stamped into every snapshot this build
// writes. Load rejects a snapshot whose major version differs, since the
// gob schema below is not guaranteed field-compatible across majors.
const FormatVersion = "v1.0.0"

// checksumKey mirrors the teacher's inspector/graph/hash.go fixed-key
// highwayhash usage — the checksum here guards against truncation and bit
// rot, not against a malicious tamperer, so a fixed, non-secret key is
// appropriate.
var checksumKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// ErrSerialization is the "Builder failure" of spec.md §7: returned when a
// snapshot's format version is incompatible with FormatVersion, or when
// its checksum does not match its payload.
var ErrSerialization = errors.New("persist: serialization mismatch")

// envelope is the outer, versioned frame around the gob-encoded payload.
// It is itself gob-encoded so Save/Load need only one stream format.
type envelope struct {
	Version  string
	Checksum uint64
	Payload  []byte
}

// snapshot is the gob-friendly mirror of a graph.Graph plus its sources.
// graph.Graph's fields are unexported, so the builder and loader translate
// to and from this shape explicitly.
type snapshot struct {
	Nodes   []nodeSnapshot
	Edges   []graph.Edge
	Sources []graph.Handle
}

type nodeSnapshot struct {
	Path             string
	IsExternal       bool
	IsPrecompiled    bool
	Tokens           int64
	Bytes            float64
	InternalIncoming int
	HasComponent     bool
	ComponentPeer    graph.Handle
}

// Save encodes g and sources into w as a versioned, checksummed snapshot.
func Save(w io.Writer, g *graph.Graph, sources []graph.Handle) error {
	snap := toSnapshot(g, sources)

	var payloadBuf bytes.Buffer
	if err := gob.NewEncoder(&payloadBuf).Encode(snap); err != nil {
		return errors.Wrap(err, "persist: encoding graph snapshot")
	}
	payload := payloadBuf.Bytes()

	sum, err := checksum(payload)
	if err != nil {
		return errors.Wrap(err, "persist: computing checksum")
	}

	env := envelope{Version: FormatVersion, Checksum: sum, Payload: payload}
	if err := gob.NewEncoder(w).Encode(env); err != nil {
		return errors.Wrap(err, "persist: encoding envelope")
	}
	return nil
}

// Load decodes a snapshot written by Save, verifying its format version is
// semver-compatible with FormatVersion and that its checksum matches
// before reconstructing the graph.
func Load(r io.Reader) (*graph.Graph, []graph.Handle, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, nil, errors.Wrap(ErrSerialization, err.Error())
	}

	if !semver.IsValid(env.Version) || semver.Major(env.Version) != semver.Major(FormatVersion) {
		return nil, nil, errors.Wrapf(ErrSerialization, "incompatible format version %q (expected %s)", env.Version, semver.Major(FormatVersion))
	}

	sum, err := checksum(env.Payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, "persist: computing checksum")
	}
	if sum != env.Checksum {
		return nil, nil, errors.Wrap(ErrSerialization, "checksum mismatch, payload is corrupt or truncated")
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(&snap); err != nil {
		return nil, nil, errors.Wrap(ErrSerialization, err.Error())
	}

	return fromSnapshot(snap)
}

func checksum(payload []byte) (uint64, error) {
	h, err := highwayhash.New64(checksumKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(payload); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func toSnapshot(g *graph.Graph, sources []graph.Handle) snapshot {
	snap := snapshot{
		Edges:   append([]graph.Edge(nil), g.Edges()...),
		Sources: append([]graph.Handle(nil), sources...),
	}
	for h := 0; h < g.Len(); h++ {
		n := g.Node(graph.Handle(h))
		ns := nodeSnapshot{
			Path:             n.Path,
			IsExternal:       n.IsExternal,
			IsPrecompiled:    n.IsPrecompiled,
			Tokens:           n.UnderlyingCost.Tokens,
			Bytes:            n.UnderlyingCost.Bytes,
			InternalIncoming: n.InternalIncoming,
		}
		if n.Component.Valid() {
			ns.HasComponent = true
			ns.ComponentPeer = n.Component.Peer
		}
		snap.Nodes = append(snap.Nodes, ns)
	}
	return snap
}

func fromSnapshot(snap snapshot) (*graph.Graph, []graph.Handle, error) {
	g := graph.New()
	for _, ns := range snap.Nodes {
		node := graph.Node{
			Path:             ns.Path,
			IsExternal:       ns.IsExternal,
			IsPrecompiled:    ns.IsPrecompiled,
			InternalIncoming: ns.InternalIncoming,
		}
		node.UnderlyingCost.Tokens = ns.Tokens
		node.UnderlyingCost.Bytes = ns.Bytes
		if ns.HasComponent {
			node.Component = graph.NewComponent(ns.ComponentPeer)
		}
		g.AddNode(node)
	}
	for _, e := range snap.Edges {
		g.AddEdge(e.From, e.To, graph.Edge{Code: e.Code, LineNumber: e.LineNumber, IsRemovable: e.IsRemovable})
	}
	return g, snap.Sources, nil
}
