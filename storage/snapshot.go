package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/semschema/rdf"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// BucketClosure is the default KV bucket for closed schema snapshots.
const BucketClosure = "SEMSCHEMA_CLOSURE"

// KeyValue is the subset of a KV bucket that snapshots need.
type KeyValue interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Keys(ctx context.Context) ([]string, error)
}

// OpenBucket returns the named JetStream KV bucket, creating it if needed.
func OpenBucket(ctx context.Context, js jetstream.JetStream, name string) (KeyValue, error) {
	kv, err := getOrCreateBucket(ctx, js, name)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", name, err)
	}
	return &bucket{kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semschema %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

type bucket struct {
	kv jetstream.KeyValue
}

func (b *bucket) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	return b.kv.Put(ctx, key, value)
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := b.kv.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value(), nil
}

func (b *bucket) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, err
	}
	return keys, nil
}

// SnapshotTerm is the JSON form of a term.
type SnapshotTerm struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

// SnapshotEdge is one predicate/object pair of a subject.
type SnapshotEdge struct {
	Predicate SnapshotTerm `json:"p"`
	Object    SnapshotTerm `json:"o"`
}

// SnapshotRecord holds every statement about one subject.
type SnapshotRecord struct {
	Subject   SnapshotTerm   `json:"subject"`
	Edges     []SnapshotEdge `json:"edges"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SubjectKey returns the KV key for a subject. Keys are name-based UUIDs so
// arbitrary IRIs map onto the KV key alphabet.
func SubjectKey(subject rdf.Term) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(subject.Key())).String()
}

// SaveSnapshot writes the store contents to kv, one record per subject, and
// returns the number of records written.
func SaveSnapshot(ctx context.Context, kv KeyValue, r Reader) (int, error) {
	records := make(map[rdf.Term]*SnapshotRecord)
	var order []rdf.Term
	now := time.Now()

	for _, st := range r.Match(rdf.Term{}, rdf.Term{}, rdf.Term{}) {
		rec, ok := records[st.Subject]
		if !ok {
			rec = &SnapshotRecord{Subject: toSnapshotTerm(st.Subject), UpdatedAt: now}
			records[st.Subject] = rec
			order = append(order, st.Subject)
		}
		rec.Edges = append(rec.Edges, SnapshotEdge{
			Predicate: toSnapshotTerm(st.Predicate),
			Object:    toSnapshotTerm(st.Object),
		})
	}

	for i, subject := range order {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		data, err := json.Marshal(records[subject])
		if err != nil {
			return i, fmt.Errorf("marshal snapshot record: %w", err)
		}
		if _, err := kv.Put(ctx, SubjectKey(subject), data); err != nil {
			return i, fmt.Errorf("store snapshot record: %w", err)
		}
	}
	return len(order), nil
}

// LoadSnapshot reads every record from kv into w and returns the number of
// statements added.
func LoadSnapshot(ctx context.Context, kv KeyValue, w Writer) (int, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list snapshot keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, ErrNotFound
	}

	added := 0
	for _, key := range keys {
		data, err := kv.Get(ctx, key)
		if err != nil {
			return added, fmt.Errorf("get snapshot record %s: %w", key, err)
		}
		var rec SnapshotRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return added, fmt.Errorf("unmarshal snapshot record %s: %w", key, err)
		}
		subject, err := fromSnapshotTerm(rec.Subject)
		if err != nil {
			return added, err
		}
		for _, e := range rec.Edges {
			p, err := fromSnapshotTerm(e.Predicate)
			if err != nil {
				return added, err
			}
			o, err := fromSnapshotTerm(e.Object)
			if err != nil {
				return added, err
			}
			added += w.Add(rdf.Statement{Subject: subject, Predicate: p, Object: o})
		}
	}
	return added, nil
}

func toSnapshotTerm(t rdf.Term) SnapshotTerm {
	return SnapshotTerm{Kind: t.Kind.String(), Value: t.Value, Datatype: t.Datatype, Lang: t.Lang}
}

func fromSnapshotTerm(st SnapshotTerm) (rdf.Term, error) {
	switch st.Kind {
	case "iri":
		return rdf.IRI(st.Value), nil
	case "blank":
		return rdf.Blank(st.Value), nil
	case "literal":
		return rdf.Literal(st.Value, st.Datatype, st.Lang), nil
	default:
		return rdf.Term{}, fmt.Errorf("unknown term kind %q", st.Kind)
	}
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}
