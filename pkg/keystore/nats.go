package keystore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// KeyValue is the subset of jetstream.KeyValue the NATS store uses.
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Create(ctx context.Context, key string, value []byte, opts ...jetstream.KVCreateOpt) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
}

// NATSStore keeps keys in a JetStream key-value bucket so that several
// processes can resume each other's calls.
type NATSStore struct {
	kv   KeyValue
	conn *nats.Conn
}

// NewNATSStore wraps an existing bucket. Close does not close the bucket's
// connection.
func NewNATSStore(kv KeyValue) *NATSStore {
	return &NATSStore{kv: kv}
}

// DialNATSStore connects to url and opens (or creates) bucket.
func DialNATSStore(ctx context.Context, url, bucket string) (*NATSStore, error) {
	conn, err := nats.Connect(url, nats.Name("stripe-client keystore"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Stripe idempotency keys by logical call name",
		History:     1,
	})
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening key-value bucket %s: %w", bucket, err)
	}

	return &NATSStore{kv: kv, conn: conn}, nil
}

// Close drains the connection opened by DialNATSStore.
func (s *NATSStore) Close() error {
	if s.conn == nil {
		return nil
	}

	return s.conn.Drain()
}

// Get implements Store.
func (s *NATSStore) Get(ctx context.Context, name string) (string, error) {
	entry, err := s.kv.Get(ctx, natsKey(name))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return "", ErrNotFound
		}

		return "", err
	}

	return string(entry.Value()), nil
}

// PutIfAbsent implements Store.
func (s *NATSStore) PutIfAbsent(ctx context.Context, name, key string) (string, error) {
	err := validateName(name)
	if err != nil {
		return "", err
	}

	_, err = s.kv.Create(ctx, natsKey(name), []byte(key))

	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, jetstream.ErrKeyExists):
		return s.Get(ctx, name)
	default:
		return "", err
	}
}

// Delete implements Store.
func (s *NATSStore) Delete(ctx context.Context, name string) error {
	err := s.kv.Delete(ctx, natsKey(name))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}

	return err
}

// natsKey maps an arbitrary name onto the bucket's key alphabet.
func natsKey(name string) string {
	sum := sha256.Sum256([]byte(name))

	return hex.EncodeToString(sum[:])
}
