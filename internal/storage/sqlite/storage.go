package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS players (
	name               TEXT PRIMARY KEY,
	roller_info        TEXT NOT NULL DEFAULT '{}',
	shop_info          TEXT NOT NULL DEFAULT '{}',
	tab_info           TEXT NOT NULL DEFAULT '{}',
	pw_hash            TEXT NOT NULL DEFAULT '',
	requisition_points INTEGER NOT NULL DEFAULT 0,
	renown_level       TEXT NOT NULL DEFAULT 'None'
);

CREATE TABLE IF NOT EXISTS shop_items (
	name               TEXT PRIMARY KEY,
	category           TEXT NOT NULL DEFAULT '',
	cost               INTEGER NOT NULL DEFAULT 0,
	renown_requirement TEXT NOT NULL DEFAULT 'None',
	stats              TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS player_inventory (
	player_name TEXT NOT NULL,
	item_name   TEXT NOT NULL,
	quantity    INTEGER NOT NULL,
	PRIMARY KEY (player_name, item_name)
);

CREATE TABLE IF NOT EXISTS transactions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	player_name      TEXT NOT NULL,
	item_name        TEXT NOT NULL,
	unit_cost        INTEGER NOT NULL,
	quantity         INTEGER NOT NULL,
	previous_balance INTEGER NOT NULL,
	new_balance      INTEGER NOT NULL,
	created_at       TEXT NOT NULL
);
`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (and migrates) a SQLite database at the given path.
// Use ":memory:" or a temp file for tests.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and a single
	// pooled connection makes every BeginTx a true serialization point
	// for the read-decide-write purchase sequence.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	cols, err := playerColumns(player)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (name, roller_info, shop_info, tab_info, pw_hash, requisition_points, renown_level)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(player.Name), cols.rollerInfo, cols.shopInfo, cols.tabInfo,
		player.PwHash, player.RequisitionPoints, player.RenownLevel)
	if isUniqueViolation(err) {
		return model.ErrDuplicateName
	}
	return err
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	cols, err := playerColumns(player)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (name, roller_info, shop_info, tab_info, pw_hash, requisition_points, renown_level)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			roller_info = excluded.roller_info,
			shop_info = excluded.shop_info,
			tab_info = excluded.tab_info,
			pw_hash = excluded.pw_hash,
			requisition_points = excluded.requisition_points,
			renown_level = excluded.renown_level`,
		string(player.Name), cols.rollerInfo, cols.shopInfo, cols.tabInfo,
		player.PwHash, player.RequisitionPoints, player.RenownLevel)
	return err
}

const playerSelect = `
	SELECT name, roller_info, shop_info, tab_info, pw_hash, requisition_points, renown_level
	FROM players`

func (s *Storage) GetPlayer(ctx context.Context, name model.PlayerName) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, playerSelect+" WHERE name = ?", string(name))
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	return player, err
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, playerSelect+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (s *Storage) DeletePlayer(ctx context.Context, name model.PlayerName) (bool, error) {
	// No cascade: inventory and ledger rows stay behind as audit history
	res, err := s.db.ExecContext(ctx, "DELETE FROM players WHERE name = ?", string(name))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Catalog operations

func (s *Storage) SaveItem(ctx context.Context, item *model.ShopItem) error {
	stats, err := marshalJSON(item.Stats)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shop_items (name, category, cost, renown_requirement, stats)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			cost = excluded.cost,
			renown_requirement = excluded.renown_requirement,
			stats = excluded.stats`,
		string(item.Name), item.Category, item.Cost, item.RenownRequirement, stats)
	return err
}

const itemSelect = `
	SELECT name, category, cost, renown_requirement, stats
	FROM shop_items`

func (s *Storage) GetItem(ctx context.Context, name model.ItemName) (*model.ShopItem, error) {
	row := s.db.QueryRowContext(ctx, itemSelect+" WHERE name = ?", string(name))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrItemNotFound
	}
	return item, err
}

func (s *Storage) ListItems(ctx context.Context) ([]*model.ShopItem, error) {
	return s.queryItems(ctx, itemSelect+" ORDER BY name")
}

func (s *Storage) ListItemsByCategory(ctx context.Context, category string) ([]*model.ShopItem, error) {
	return s.queryItems(ctx, itemSelect+" WHERE category = ? ORDER BY name", category)
}

func (s *Storage) queryItems(ctx context.Context, query string, args ...any) ([]*model.ShopItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.ShopItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Inventory and ledger reads

func (s *Storage) GetInventory(ctx context.Context, name model.PlayerName) ([]*model.InventoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_name, item_name, quantity
		FROM player_inventory
		WHERE player_name = ?
		ORDER BY item_name`, string(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.InventoryEntry
	for rows.Next() {
		var entry model.InventoryEntry
		var player, item string
		if err := rows.Scan(&player, &item, &entry.Quantity); err != nil {
			return nil, err
		}
		entry.Player = model.PlayerName(player)
		entry.Item = model.ItemName(item)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (s *Storage) GetTransactions(ctx context.Context, name model.PlayerName) ([]*model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_name, item_name, unit_cost, quantity, previous_balance, new_balance, created_at
		FROM transactions
		WHERE player_name = ?
		ORDER BY id`, string(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var player, item, createdAt string
		if err := rows.Scan(&player, &item, &txn.UnitCost, &txn.Quantity,
			&txn.PreviousBalance, &txn.NewBalance, &createdAt); err != nil {
			return nil, err
		}
		txn.Player = model.PlayerName(player)
		txn.Item = model.ItemName(item)
		txn.TotalCost = txn.UnitCost * txn.Quantity
		if txn.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("corrupt ledger timestamp %q: %w", createdAt, err)
		}
		txns = append(txns, &txn)
	}
	return txns, rows.Err()
}

// ApplyPurchase runs the read-decide-write sequence inside one SQL
// transaction. With the single-connection pool the transaction owns the
// database for its duration, so concurrent purchases serialize and a
// rollback leaves no partial state.
func (s *Storage) ApplyPurchase(ctx context.Context, name model.PlayerName, item model.ItemName, decide storage.PurchaseFunc) (*model.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, playerSelect+" WHERE name = ?", string(name))
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	row = tx.QueryRowContext(ctx, itemSelect+" WHERE name = ?", string(item))
	shopItem, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	txn, err := decide(player, shopItem)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE players SET requisition_points = ? WHERE name = ?",
		txn.NewBalance, string(name)); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO player_inventory (player_name, item_name, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(player_name, item_name) DO UPDATE SET
			quantity = quantity + excluded.quantity`,
		string(name), string(item), txn.Quantity); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (player_name, item_name, unit_cost, quantity, previous_balance, new_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(name), string(item), txn.UnitCost, txn.Quantity,
		txn.PreviousBalance, txn.NewBalance, txn.CreatedAt.Format(timeFormat)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return txn, nil
}

// Row helpers

type playerJSON struct {
	rollerInfo string
	shopInfo   string
	tabInfo    string
}

func playerColumns(p *model.Player) (playerJSON, error) {
	rollerInfo, err := marshalJSON(p.RollerInfo)
	if err != nil {
		return playerJSON{}, err
	}
	shopInfo, err := marshalJSON(p.ShopInfo)
	if err != nil {
		return playerJSON{}, err
	}
	tabInfo, err := json.Marshal(p.Tab)
	if err != nil {
		return playerJSON{}, err
	}
	return playerJSON{rollerInfo: rollerInfo, shopInfo: shopInfo, tabInfo: string(tabInfo)}, nil
}

func marshalJSON(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPlayer(row scannable) (*model.Player, error) {
	var p model.Player
	var name, rollerInfo, shopInfo, tabInfo string
	if err := row.Scan(&name, &rollerInfo, &shopInfo, &tabInfo,
		&p.PwHash, &p.RequisitionPoints, &p.RenownLevel); err != nil {
		return nil, err
	}
	p.Name = model.PlayerName(name)
	if err := unmarshalColumn(rollerInfo, &p.RollerInfo); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(shopInfo, &p.ShopInfo); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tabInfo), &p.Tab); err != nil {
		return nil, fmt.Errorf("corrupt tab_info for %s: %w", name, err)
	}
	return &p, nil
}

func unmarshalColumn(data string, target *map[string]any) error {
	if data == "" || data == "{}" {
		return nil
	}
	return json.Unmarshal([]byte(data), target)
}

func scanItem(row scannable) (*model.ShopItem, error) {
	var item model.ShopItem
	var name, stats string
	if err := row.Scan(&name, &item.Category, &item.Cost, &item.RenownRequirement, &stats); err != nil {
		return nil, err
	}
	item.Name = model.ItemName(name)
	if stats != "" && stats != "{}" {
		if err := json.Unmarshal([]byte(stats), &item.Stats); err != nil {
			return nil, fmt.Errorf("corrupt stats for %s: %w", name, err)
		}
	}
	return &item, nil
}
