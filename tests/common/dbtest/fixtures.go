//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func CreateTestUser(t *testing.T, db DBLike, name string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(),
		"INSERT INTO users (name) VALUES ($1) RETURNING id", name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestUserWithBalance creates a user holding amount.
func CreateTestUserWithBalance(t *testing.T, db DBLike, name string, amount int64) int64 {
	t.Helper()

	id := CreateTestUser(t, db, name)
	_, err := db.Exec(context.Background(),
		"INSERT INTO balances (user_id, amount) VALUES ($1, $2)", id, decimal.NewFromInt(amount),
	)
	require.NoError(t, err)
	return id
}

func CreateTestProduct(t *testing.T, db DBLike, name string, price int64, stock int) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(),
		"INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id",
		name, decimal.NewFromInt(price), stock,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestCoupon creates an active fixed-amount coupon without a validity window.
func CreateTestCoupon(t *testing.T, db DBLike, name string, discount int64, quantity int) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(), `
		INSERT INTO coupons (name, discount_type, discount_value, total_quantity, remaining_quantity)
		VALUES ($1, 'FIXED', $2, $3, $3) RETURNING id`,
		name, decimal.NewFromInt(discount), quantity,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func CountRows(t *testing.T, db DBLike, table, where string, args ...any) int {
	t.Helper()

	var n int
	query := "SELECT count(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and restarts identities
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
