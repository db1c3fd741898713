package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryItemColumns = `id, name, category, unit, cost, price, vendor, created_at, updated_at`

func scanInventoryItem(row pgx.Row) (InventoryItem, error) {
	var i InventoryItem
	err := row.Scan(&i.ID, &i.Name, &i.Category, &i.Unit, &i.Cost, &i.Price,
		&i.Vendor, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func (q *Queries) ListInventoryItems(ctx context.Context) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InventoryItem
	for rows.Next() {
		i, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (q *Queries) GetInventoryItem(ctx context.Context, id uuid.UUID) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items WHERE id = $1`, id))
}

type CreateInventoryItemParams struct {
	Name     string
	Category string
	Unit     string
	Cost     pgtype.Numeric
	Price    pgtype.Numeric
	Vendor   pgtype.Text
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, `
		INSERT INTO inventory_items (name, category, unit, cost, price, vendor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+inventoryItemColumns,
		arg.Name, arg.Category, arg.Unit, arg.Cost, arg.Price, arg.Vendor))
}

type UpdateInventoryItemParams struct {
	ID       uuid.UUID
	Name     string
	Category string
	Unit     string
	Cost     pgtype.Numeric
	Price    pgtype.Numeric
	Vendor   pgtype.Text
}

func (q *Queries) UpdateInventoryItem(ctx context.Context, arg UpdateInventoryItemParams) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, `
		UPDATE inventory_items
		SET name = $2, category = $3, unit = $4, cost = $5, price = $6,
			vendor = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+inventoryItemColumns,
		arg.ID, arg.Name, arg.Category, arg.Unit, arg.Cost, arg.Price, arg.Vendor))
}

func (q *Queries) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	return err
}

const inventoryBatchColumns = `id, item_id, quantity, expiration_date, received_at`

func scanInventoryBatch(row pgx.Row) (InventoryBatch, error) {
	var b InventoryBatch
	err := row.Scan(&b.ID, &b.ItemID, &b.Quantity, &b.ExpirationDate, &b.ReceivedAt)
	return b, err
}

func (q *Queries) ListInventoryBatchesByItem(ctx context.Context, itemID uuid.UUID) ([]InventoryBatch, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+inventoryBatchColumns+`
		FROM inventory_batches
		WHERE item_id = $1
		ORDER BY received_at`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InventoryBatch
	for rows.Next() {
		b, err := scanInventoryBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type CreateInventoryBatchParams struct {
	ItemID         uuid.UUID
	Quantity       int32
	ExpirationDate pgtype.Date
}

func (q *Queries) CreateInventoryBatch(ctx context.Context, arg CreateInventoryBatchParams) (InventoryBatch, error) {
	return scanInventoryBatch(q.db.QueryRow(ctx, `
		INSERT INTO inventory_batches (item_id, quantity, expiration_date)
		VALUES ($1, $2, $3)
		RETURNING `+inventoryBatchColumns,
		arg.ItemID, arg.Quantity, arg.ExpirationDate))
}

type UpdateInventoryBatchQuantityParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) UpdateInventoryBatchQuantity(ctx context.Context, arg UpdateInventoryBatchQuantityParams) (InventoryBatch, error) {
	return scanInventoryBatch(q.db.QueryRow(ctx, `
		UPDATE inventory_batches SET quantity = $2 WHERE id = $1
		RETURNING `+inventoryBatchColumns,
		arg.ID, arg.Quantity))
}

func (q *Queries) DeleteInventoryBatch(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM inventory_batches WHERE id = $1`, id)
	return err
}
