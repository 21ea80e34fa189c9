package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

const mysqlErrDuplicateEntry = 1062

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, description, price, category, image, popular, available, created_at
		FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var it domain.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category,
			&it.Image, &it.Popular, &it.Available, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	var it domain.MenuItem
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, category, image, popular, available, created_at
		FROM menu_items WHERE id = ?`, id,
	).Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category,
		&it.Image, &it.Popular, &it.Available, &it.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query menu item: %w", err)
	}
	return &it, nil
}

// CreateOrder writes the order and its lines in one transaction.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (customer_name, email, phone, address, total, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.CustomerName, order.Email, order.Phone, order.Address,
		order.Total, order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}

	for i, item := range order.Items {
		customizations := item.Customizations
		if customizations == nil {
			customizations = []string{}
		}
		raw, err := json.Marshal(customizations)
		if err != nil {
			return fmt.Errorf("encode customizations: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, menu_item_id, name, price, quantity, customizations)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, item.MenuItemID, item.Name, item.Price, item.Quantity, raw,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	order.ID = id
	return nil
}

func (m *MySQLAdapter) ListReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, rating, comment, created_at
		FROM reviews ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.Name, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (m *MySQLAdapter) CreateReview(ctx context.Context, review *domain.Review) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO reviews (name, rating, comment, created_at) VALUES (?, ?, ?, ?)`,
		review.Name, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	review.ID, err = result.LastInsertId()
	return err
}

func (m *MySQLAdapter) CreateMessage(ctx context.Context, msg *domain.Message) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO messages (name, email, message, created_at) VALUES (?, ?, ?, ?)`,
		msg.Name, msg.Email, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID, err = result.LastInsertId()
	return err
}

func (m *MySQLAdapter) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt,
	)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return m.scanUser(m.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (m *MySQLAdapter) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.scanUser(m.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (m *MySQLAdapter) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
