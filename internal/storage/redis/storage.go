package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// SETNX enforces the unique-name constraint (case-sensitive)
	created, err := s.client.SetNX(ctx, playerKey(player.Name), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrDuplicateName
	}

	return s.client.SAdd(ctx, playerIndexKey(), string(player.Name)).Err()
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.Name), data, 0)
	pipe.SAdd(ctx, playerIndexKey(), string(player.Name))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, name model.PlayerName) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	names, err := s.client.SMembers(ctx, playerIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	players := make([]*model.Player, 0, len(names))
	for _, name := range names {
		player, err := s.GetPlayer(ctx, model.PlayerName(name))
		if errors.Is(err, model.ErrPlayerNotFound) {
			// Index entry outlived the record; skip
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, name model.PlayerName) (bool, error) {
	// Inventory and ledger keys are left in place as audit history
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, playerKey(name))
	pipe.SRem(ctx, playerIndexKey(), string(name))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return del.Val() > 0, nil
}

// Catalog operations

func (s *Storage) SaveItem(ctx context.Context, item *model.ShopItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, itemKey(item.Name), data, 0)
	pipe.SAdd(ctx, itemIndexKey(), string(item.Name))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetItem(ctx context.Context, name model.ItemName) (*model.ShopItem, error) {
	data, err := s.client.Get(ctx, itemKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}

	var item model.ShopItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Storage) ListItems(ctx context.Context) ([]*model.ShopItem, error) {
	return s.listItems(ctx, func(*model.ShopItem) bool { return true })
}

func (s *Storage) ListItemsByCategory(ctx context.Context, category string) ([]*model.ShopItem, error) {
	return s.listItems(ctx, func(item *model.ShopItem) bool { return item.Category == category })
}

func (s *Storage) listItems(ctx context.Context, keep func(*model.ShopItem) bool) ([]*model.ShopItem, error) {
	names, err := s.client.SMembers(ctx, itemIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	items := make([]*model.ShopItem, 0, len(names))
	for _, name := range names {
		item, err := s.GetItem(ctx, model.ItemName(name))
		if errors.Is(err, model.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if keep(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

// Inventory and ledger reads

func (s *Storage) GetInventory(ctx context.Context, name model.PlayerName) ([]*model.InventoryEntry, error) {
	fields, err := s.client.HGetAll(ctx, inventoryKey(name)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.InventoryEntry, 0, len(fields))
	for item, qty := range fields {
		quantity, err := strconv.Atoi(qty)
		if err != nil {
			return nil, fmt.Errorf("corrupt inventory quantity for %s/%s: %w", name, item, err)
		}
		entries = append(entries, &model.InventoryEntry{
			Player:   name,
			Item:     model.ItemName(item),
			Quantity: quantity,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Item < entries[j].Item
	})
	return entries, nil
}

func (s *Storage) GetTransactions(ctx context.Context, name model.PlayerName) ([]*model.Transaction, error) {
	rows, err := s.client.LRange(ctx, ledgerKey(name), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	txns := make([]*model.Transaction, 0, len(rows))
	for _, row := range rows {
		var txn model.Transaction
		if err := json.Unmarshal([]byte(row), &txn); err != nil {
			return nil, err
		}
		txns = append(txns, &txn)
	}
	return txns, nil
}

// ApplyPurchase runs the read-decide-write sequence under WATCH on the
// player key. If another writer touches the player between the read and
// the MULTI/EXEC, the transaction fails and is retried with a fresh
// snapshot, so two concurrent purchases cannot spend the same balance.
func (s *Storage) ApplyPurchase(ctx context.Context, name model.PlayerName, item model.ItemName, decide storage.PurchaseFunc) (*model.Transaction, error) {
	var result *model.Transaction

	txf := func(tx *redis.Tx) error {
		playerData, err := tx.Get(ctx, playerKey(name)).Bytes()
		if errors.Is(err, redis.Nil) {
			return model.ErrPlayerNotFound
		}
		if err != nil {
			return err
		}
		var player model.Player
		if err := json.Unmarshal(playerData, &player); err != nil {
			return err
		}

		itemData, err := tx.Get(ctx, itemKey(item)).Bytes()
		if errors.Is(err, redis.Nil) {
			return model.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		var shopItem model.ShopItem
		if err := json.Unmarshal(itemData, &shopItem); err != nil {
			return err
		}

		txn, err := decide(&player, &shopItem)
		if err != nil {
			return err
		}

		player.RequisitionPoints = txn.NewBalance
		newPlayerData, err := json.Marshal(&player)
		if err != nil {
			return err
		}
		ledgerRow, err := json.Marshal(txn)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(name), newPlayerData, 0)
			pipe.HIncrBy(ctx, inventoryKey(name), string(item), int64(txn.Quantity))
			pipe.RPush(ctx, ledgerKey(name), ledgerRow)
			return nil
		})
		if err != nil {
			return err
		}

		result = txn
		return nil
	}

	retries := s.cfg.PurchaseRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 0; attempt < retries; attempt++ {
		err := s.client.Watch(ctx, txf, playerKey(name))
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("purchase for %s contended %d times: %w", name, retries, redis.TxFailedErr)
}
