package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gomodule/redigo/redis"

	"gostablebridge/bridge"
	"gostablebridge/config"
	"gostablebridge/types"
)

var pool *redis.Pool

func timeoutDialOptions() []redis.DialOption {
	return []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}
}

func Init() {
	redisAddr := fmt.Sprintf("%s:%d", config.Config.Server.RedisHost, config.Config.Server.RedisPort)
	pool = &redis.Pool{
		MaxIdle: 5,
		Dial:    func() (redis.Conn, error) { return redis.Dial("tcp", redisAddr, timeoutDialOptions()...) },
	}
}

// Backend implements the engine's cache port. Best-effort: a miss and a
// failure both leave the caller without a value, and the caller decides what
// that means.
type Backend struct{}

var _ bridge.Cache = Backend{}

func (Backend) Get(key string) ([]byte, error) {
	conn := pool.Get()
	defer conn.Close()

	body, err := redis.Bytes(conn.Do("GET", key))
	if err == nil {
		return body, nil
	}
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}

	log.Printf("error Redis GET: %s", err.Error())
	return nil, err
}

func (Backend) Set(key string, value []byte, ttl time.Duration) error {
	conn := pool.Get()
	defer conn.Close()

	var err error
	if ttl > 0 {
		_, err = conn.Do("SET", key, value, "EX", int(ttl.Seconds()))
	} else {
		_, err = conn.Do("SET", key, value)
	}
	if err != nil {
		log.Printf("error Redis SET: %s", err.Error())
		return err
	}
	return nil
}

func (Backend) Del(key string) error {
	conn := pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", key)
	if err != nil {
		log.Printf("error Redis DEL: %s", err.Error())
		return err
	}
	return nil
}

// Store is the durable transaction store. Each transaction is a JSON record
// under bridgetx:<status>:<id>, with its key mirrored into the status set so
// status-scoped listings avoid a full keyspace scan.
// Note that multiple sets must never contain one transaction.
type Store struct{}

var _ bridge.TransactionStore = Store{}

func recordKey(status types.TxStatus, id string) string {
	return fmt.Sprintf("bridgetx:%s:%s", status, id)
}

func (Store) Create(ctx context.Context, tx *types.BridgeTransaction) error {
	if tx == nil {
		return errors.New("null transaction to store")
	}
	if tx.ID == "" {
		return errors.New("bridge transaction cannot have empty id")
	}
	if tx.Status == "" {
		return errors.New("bridge transaction cannot have empty status")
	}

	conn := pool.Get()
	defer conn.Close()

	body, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("cannot marshal bridge transaction to JSON: %s", err.Error())
	}

	key := recordKey(tx.Status, tx.ID)
	if _, err = conn.Do("SET", key, body); err != nil {
		log.Printf("error Redis SET: %s", err.Error())
		return err
	}
	if _, err = conn.Do("SADD", config.RedisStatusSets[tx.Status], key); err != nil {
		log.Printf("error Redis SADD: %s", err.Error())
		return err
	}
	return nil
}

// Update persists tx under its current status, moving the record out of the
// set it held under prev.
func (Store) Update(ctx context.Context, tx *types.BridgeTransaction, prev types.TxStatus) error {
	if tx == nil {
		return errors.New("null transaction to store")
	}
	if tx.Status == "" {
		return errors.New("bridge transaction cannot have empty status")
	}

	conn := pool.Get()
	defer conn.Close()

	body, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("cannot marshal bridge transaction to JSON: %s", err.Error())
	}

	prevKey := recordKey(prev, tx.ID)
	key := recordKey(tx.Status, tx.ID)

	if prev != tx.Status {
		if _, err = conn.Do("SREM", config.RedisStatusSets[prev], prevKey); err != nil {
			log.Printf("error Redis SREM: %s", err.Error())
			return err
		}
		if _, err = conn.Do("DEL", prevKey); err != nil {
			log.Printf("error Redis DEL: %s", err.Error())
			return err
		}
	}

	if _, err = conn.Do("SET", key, body); err != nil {
		log.Printf("error Redis SET: %s", err.Error())
		return err
	}
	if _, err = conn.Do("SADD", config.RedisStatusSets[tx.Status], key); err != nil {
		log.Printf("error Redis SADD: %s", err.Error())
		return err
	}
	return nil
}

// Find scans the status sets for the transaction id. Returns (nil, nil) when
// no record exists.
func (Store) Find(ctx context.Context, id string) (*types.BridgeTransaction, error) {
	conn := pool.Get()
	defer conn.Close()

	for _, status := range types.AllStatuses {
		body, err := redis.Bytes(conn.Do("GET", recordKey(status, id)))
		if errors.Is(err, redis.ErrNil) {
			continue
		}
		if err != nil {
			log.Printf("error Redis GET: %s", err.Error())
			return nil, err
		}

		var tx types.BridgeTransaction
		if err := json.Unmarshal(body, &tx); err != nil {
			return nil, err
		}
		return &tx, nil
	}
	return nil, nil
}

func (Store) List(ctx context.Context, filter bridge.TxFilter) ([]*types.BridgeTransaction, error) {
	conn := pool.Get()
	defer conn.Close()

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = types.AllStatuses
	}

	txs := make([]*types.BridgeTransaction, 0)
	for _, status := range statuses {
		setKey, ok := config.RedisStatusSets[status]
		if !ok {
			return nil, errors.New("redis key not found for status")
		}

		// SSCAN the whole status set
		var cursor int64
		for {
			values, err := redis.Values(conn.Do("SSCAN", setKey, cursor))
			if err != nil {
				return nil, err
			}

			var keys []string
			if _, err = redis.Scan(values, &cursor, &keys); err != nil {
				return nil, err
			}

			for _, key := range keys {
				body, err := redis.Bytes(conn.Do("GET", key))
				if errors.Is(err, redis.ErrNil) {
					// record expired or moved between SSCAN and GET
					continue
				}
				if err != nil {
					log.Printf("error Redis GET: %s", err.Error())
					return nil, err
				}

				var tx types.BridgeTransaction
				if err := json.Unmarshal(body, &tx); err != nil {
					return nil, err
				}
				if !filter.Since.IsZero() && tx.CreatedAt.Before(filter.Since) {
					continue
				}
				txs = append(txs, &tx)
			}

			if cursor == 0 {
				break
			}
		}
	}
	return txs, nil
}
