// Package sqlite provides the SQLite-backed couplet storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/couplehq/couplet/internal/catalog"
	"github.com/couplehq/couplet/internal/directory"
	"github.com/couplehq/couplet/internal/invite"
	"github.com/couplehq/couplet/internal/order"
	"github.com/couplehq/couplet/internal/platform/storage/sqlitemigrate"
	"github.com/couplehq/couplet/internal/storage"
	"github.com/couplehq/couplet/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists couplet state in SQLite. It implements every store
// interface in the storage package.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite couplet store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutUser inserts one user record.
func (s *Store) PutUser(ctx context.Context, user directory.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(user.ChatID) == "" {
		return fmt.Errorf("chat id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (id, chat_id, display_name, pair_id, kiss_balance, hug_balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.ChatID,
		user.DisplayName,
		nullableString(user.PairID),
		user.KissBalance,
		user.HugBalance,
		toMillis(user.CreatedAt),
		toMillis(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("put user: %w", storage.ErrConflict)
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

const userColumns = `id, chat_id, display_name, pair_id, kiss_balance, hug_balance, created_at, updated_at`

// GetUser returns one user by internal ID.
func (s *Store) GetUser(ctx context.Context, userID string) (directory.User, error) {
	if err := s.ready(ctx); err != nil {
		return directory.User{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return directory.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

// GetUserByChatID returns one user by external chat ID.
func (s *Store) GetUserByChatID(ctx context.Context, chatID string) (directory.User, error) {
	if err := s.ready(ctx); err != nil {
		return directory.User{}, err
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return directory.User{}, fmt.Errorf("chat id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE chat_id = ?`, chatID)
	return scanUser(row)
}

// AddBalances atomically adjusts one user's kiss and hug balances.
func (s *Store) AddBalances(ctx context.Context, userID string, kissDelta, hugDelta int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE users
		 SET kiss_balance = kiss_balance + ?, hug_balance = hug_balance + ?, updated_at = ?
		 WHERE id = ?`,
		kissDelta,
		hugDelta,
		toMillis(time.Now()),
		userID,
	)
	if err != nil {
		return fmt.Errorf("add balances: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add balances: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("add balances: %w", storage.ErrNotFound)
	}
	return nil
}

// CreatePair inserts the pair row and both members' pair references as
// one transaction. A member that is missing or already paired aborts
// the whole transaction, so partial pairing cannot be observed.
func (s *Store) CreatePair(ctx context.Context, pair directory.Pair) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(pair.ID) == "" {
		return fmt.Errorf("pair id is required")
	}
	if strings.TrimSpace(pair.UserAID) == "" || strings.TrimSpace(pair.UserBID) == "" {
		return fmt.Errorf("pair members are required")
	}
	if pair.UserAID == pair.UserBID {
		return fmt.Errorf("pair members must be distinct")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create pair: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO pairs (id, user_a_id, user_b_id, created_at) VALUES (?, ?, ?, ?)`,
		pair.ID,
		pair.UserAID,
		pair.UserBID,
		toMillis(pair.CreatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert pair: %w", storage.ErrConflict)
		}
		return fmt.Errorf("insert pair: %w", err)
	}

	now := toMillis(time.Now())
	for _, memberID := range []string{pair.UserAID, pair.UserBID} {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE users SET pair_id = ?, updated_at = ? WHERE id = ? AND pair_id IS NULL`,
			pair.ID,
			now,
			memberID,
		)
		if err != nil {
			return fmt.Errorf("set pair reference for %s: %w", memberID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("set pair reference for %s: %w", memberID, err)
		}
		if affected == 0 {
			return fmt.Errorf("set pair reference for %s: %w", memberID, storage.ErrConflict)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create pair: %w", err)
	}
	return nil
}

// GetPair returns one pair by ID.
func (s *Store) GetPair(ctx context.Context, pairID string) (directory.Pair, error) {
	if err := s.ready(ctx); err != nil {
		return directory.Pair{}, err
	}
	pairID = strings.TrimSpace(pairID)
	if pairID == "" {
		return directory.Pair{}, fmt.Errorf("pair id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, user_a_id, user_b_id, created_at FROM pairs WHERE id = ?`,
		pairID,
	)

	var pair directory.Pair
	var createdAt int64
	if err := row.Scan(&pair.ID, &pair.UserAID, &pair.UserBID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.Pair{}, storage.ErrNotFound
		}
		return directory.Pair{}, fmt.Errorf("get pair: %w", err)
	}
	pair.CreatedAt = fromMillis(createdAt)
	return pair, nil
}

// DeletePair clears both members' pair references and removes the pair
// row as one transaction.
func (s *Store) DeletePair(ctx context.Context, pairID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	pairID = strings.TrimSpace(pairID)
	if pairID == "" {
		return fmt.Errorf("pair id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete pair: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE users SET pair_id = NULL, updated_at = ? WHERE pair_id = ?`,
		toMillis(time.Now()),
		pairID,
	); err != nil {
		return fmt.Errorf("clear pair references: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM pairs WHERE id = ?`, pairID)
	if err != nil {
		return fmt.Errorf("delete pair: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pair: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete pair: %w", storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete pair: %w", err)
	}
	return nil
}

// PutInvite inserts one invitation token record.
func (s *Store) PutInvite(ctx context.Context, inv invite.Invite) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(inv.Token) == "" {
		return fmt.Errorf("invite token is required")
	}
	if strings.TrimSpace(inv.CreatorID) == "" {
		return fmt.Errorf("invite creator id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO invites (token, creator_id, used, created_at) VALUES (?, ?, ?, ?)`,
		inv.Token,
		inv.CreatorID,
		boolToInt(inv.Used),
		toMillis(inv.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("put invite: %w", storage.ErrConflict)
		}
		return fmt.Errorf("put invite: %w", err)
	}
	return nil
}

// GetInvite returns one invite by token.
func (s *Store) GetInvite(ctx context.Context, token string) (invite.Invite, error) {
	if err := s.ready(ctx); err != nil {
		return invite.Invite{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return invite.Invite{}, fmt.Errorf("invite token is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT token, creator_id, used, created_at FROM invites WHERE token = ?`,
		token,
	)

	var inv invite.Invite
	var used int
	var createdAt int64
	if err := row.Scan(&inv.Token, &inv.CreatorID, &used, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invite.Invite{}, storage.ErrNotFound
		}
		return invite.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	inv.Used = used != 0
	inv.CreatedAt = fromMillis(createdAt)
	return inv, nil
}

// MarkInviteUsed flips the used flag exactly once. The conditional
// update admits a single winner under concurrent redemption.
func (s *Store) MarkInviteUsed(ctx context.Context, token string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("invite token is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE invites SET used = 1 WHERE token = ? AND used = 0`,
		token,
	)
	if err != nil {
		return fmt.Errorf("mark invite used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invite used: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark invite used: %w", storage.ErrNotFound)
	}
	return nil
}

// PutItem appends one catalog item at the end of its owner's list.
func (s *Store) PutItem(ctx context.Context, item catalog.Item) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(item.OwnerID) == "" {
		return fmt.Errorf("item owner id is required")
	}
	if strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("item title is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO catalog_items (id, owner_id, title, position, created_at)
		 SELECT ?, ?, ?, COALESCE(MAX(position) + 1, 0), ?
		 FROM catalog_items WHERE owner_id = ?`,
		item.ID,
		item.OwnerID,
		item.Title,
		toMillis(item.CreatedAt),
		item.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("put item: %w", storage.ErrConflict)
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// GetItem returns one catalog item by ID.
func (s *Store) GetItem(ctx context.Context, itemID string) (catalog.Item, error) {
	if err := s.ready(ctx); err != nil {
		return catalog.Item{}, err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return catalog.Item{}, fmt.Errorf("item id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, owner_id, title, created_at FROM catalog_items WHERE id = ?`,
		itemID,
	)

	var item catalog.Item
	var createdAt int64
	if err := row.Scan(&item.ID, &item.OwnerID, &item.Title, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Item{}, storage.ErrNotFound
		}
		return catalog.Item{}, fmt.Errorf("get item: %w", err)
	}
	item.CreatedAt = fromMillis(createdAt)
	return item, nil
}

// RenameItem updates one catalog item title.
func (s *Store) RenameItem(ctx context.Context, itemID string, title string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return fmt.Errorf("item id is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("item title is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE catalog_items SET title = ? WHERE id = ?`,
		title,
		itemID,
	)
	if err != nil {
		return fmt.Errorf("rename item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rename item: %w", storage.ErrNotFound)
	}
	return nil
}

// DeleteItem removes one catalog item.
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return fmt.Errorf("item id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM catalog_items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete item: %w", storage.ErrNotFound)
	}
	return nil
}

// ListItemsByOwner returns all of an owner's items in insertion order.
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]catalog.Item, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, owner_id, title, created_at
		 FROM catalog_items WHERE owner_id = ? ORDER BY position ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []catalog.Item
	for rows.Next() {
		var item catalog.Item
		var createdAt int64
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.CreatedAt = fromMillis(createdAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// PutOrder inserts one order record.
func (s *Store) PutOrder(ctx context.Context, o order.Order) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("order id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO orders (id, requester_id, fulfiller_id, item_id, currency, deadline, status, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.RequesterID,
		o.FulfillerID,
		o.ItemID,
		string(o.Currency),
		o.Deadline,
		order.StatusLabel(o.Status),
		nullableString(o.Message),
		toMillis(o.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("put order: %w", storage.ErrConflict)
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

const orderColumns = `id, requester_id, fulfiller_id, item_id, currency, deadline, status, message, created_at`

// GetOrder returns one order by ID.
func (s *Store) GetOrder(ctx context.Context, orderID string) (order.Order, error) {
	if err := s.ready(ctx); err != nil {
		return order.Order{}, err
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return order.Order{}, fmt.Errorf("order id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)
	return scanOrder(row)
}

// UpdateOrderStatus applies the from-to transition as a compare-and-set.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, from, to order.Status) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("order id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		order.StatusLabel(to),
		orderID,
		order.StatusLabel(from),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update order status: %w", storage.ErrNotFound)
	}
	return nil
}

// AttachOrderMessage sets the message field exactly once on a completed
// message-currency order.
func (s *Store) AttachOrderMessage(ctx context.Context, orderID string, text string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("order id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE orders SET message = ?
		 WHERE id = ? AND currency = ? AND status = ? AND message IS NULL`,
		text,
		orderID,
		string(order.CurrencyMessage),
		order.StatusLabel(order.StatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("attach order message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach order message: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.GetOrder(ctx, orderID); getErr == nil {
			return fmt.Errorf("attach order message: %w", storage.ErrConflict)
		}
		return fmt.Errorf("attach order message: %w", storage.ErrNotFound)
	}
	return nil
}

// ListOrdersByParticipant returns the user's most recent orders, newest
// first, capped at limit.
func (s *Store) ListOrdersByParticipant(ctx context.Context, userID string, limit int) ([]order.Order, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE requester_id = ? OR fulfiller_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []order.Order
	for rows.Next() {
		scanned, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, scanned)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (directory.User, error) {
	var user directory.User
	var pairID sql.NullString
	var createdAt, updatedAt int64
	if err := row.Scan(
		&user.ID,
		&user.ChatID,
		&user.DisplayName,
		&pairID,
		&user.KissBalance,
		&user.HugBalance,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.User{}, storage.ErrNotFound
		}
		return directory.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.PairID = pairID.String
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

func scanOrder(row rowScanner) (order.Order, error) {
	scanned, err := scanOrderRows(row)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, storage.ErrNotFound
	}
	return scanned, err
}

func scanOrderRows(row rowScanner) (order.Order, error) {
	var o order.Order
	var currency, status string
	var message sql.NullString
	var createdAt int64
	if err := row.Scan(
		&o.ID,
		&o.RequesterID,
		&o.FulfillerID,
		&o.ItemID,
		&currency,
		&o.Deadline,
		&status,
		&message,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order.Order{}, sql.ErrNoRows
		}
		return order.Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.Currency = order.Currency(currency)
	o.Status = order.StatusFromLabel(status)
	o.Message = message.String
	o.CreatedAt = fromMillis(createdAt)
	return o, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint") || strings.Contains(value, "constraint failed")
}
