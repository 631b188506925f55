// Package storage persists users, chats, and messages as id-addressed
// tables in badger. Relations are plain id references resolved through
// explicit lookups; no entity embeds another.
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/talkbase/chat-service/config"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

const seqBandwidth = 64

type Store struct {
	db  *badger.DB
	log *slog.Logger

	userSeq *badger.Sequence
	chatSeq *badger.Sequence
	msgSeq  *badger.Sequence
}

// Open initializes the database at cfg.Storage.Path. An empty path opens an
// in-memory instance, used by tests and dev runs.
func Open(cfg *config.Config, log *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Storage.Path).WithLogger(nil)
	if cfg.Storage.Path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", cfg.Storage.Path, err)
	}

	s := &Store{db: db, log: log}
	for _, seq := range []struct {
		key string
		dst **badger.Sequence
	}{
		{"seq:user", &s.userSeq},
		{"seq:chat", &s.chatSeq},
		{"seq:msg", &s.msgSeq},
	} {
		sq, err := db.GetSequence([]byte(seq.key), seqBandwidth)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage: sequence %s: %w", seq.key, err)
		}
		*seq.dst = sq
	}
	return s, nil
}

func (s *Store) Close() error {
	for _, seq := range []*badger.Sequence{s.userSeq, s.chatSeq, s.msgSeq} {
		if seq != nil {
			_ = seq.Release()
		}
	}
	return s.db.Close()
}

// nextID reserves the next id from a sequence. Sequences start at 0 but
// entity ids start at 1, matching auto-increment semantics.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

func userKey(id int64) []byte        { return fmt.Appendf(nil, "user:%020d", id) }
func usernameKey(name string) []byte { return fmt.Appendf(nil, "uname:%s", name) }
func chatKey(id int64) []byte        { return fmt.Appendf(nil, "chat:%020d", id) }
func msgKey(chatID, id int64) []byte {
	return fmt.Appendf(nil, "msg:%020d:%020d", chatID, id)
}
func msgRefKey(id int64) []byte { return fmt.Appendf(nil, "msgref:%020d", id) }

// getValue fetches one key within txn; notFound is returned verbatim for
// missing keys so each table keeps its own sentinel.
func getValue(txn *badger.Txn, key []byte, notFound error) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
