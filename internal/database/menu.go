package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, category, sub_category, description, image_url,
	is_available, created_at, updated_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.SubCategory, &m.Description,
		&m.ImageURL, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `SELECT `+menuItemColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
}

// GetMenuItemForOrder only returns items currently offered.
func (q *Queries) GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1 AND is_available`, id))
}

type CreateMenuItemParams struct {
	Name        string
	Category    string
	SubCategory pgtype.Text
	Description pgtype.Text
	ImageURL    pgtype.Text
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, `
		INSERT INTO menu_items (name, category, sub_category, description, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+menuItemColumns,
		arg.Name, arg.Category, arg.SubCategory, arg.Description, arg.ImageURL))
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        string
	Category    string
	SubCategory pgtype.Text
	Description pgtype.Text
	ImageURL    pgtype.Text
	IsAvailable bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, category = $3, sub_category = $4, description = $5,
			image_url = $6, is_available = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+menuItemColumns,
		arg.ID, arg.Name, arg.Category, arg.SubCategory, arg.Description,
		arg.ImageURL, arg.IsAvailable))
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM menu_items WHERE id = $1 RETURNING id`, id).Scan(&out)
	return out, err
}

// --- Prices ---

func (q *Queries) ListMenuPricesByItem(ctx context.Context, itemID uuid.UUID) ([]MenuPrice, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, item_id, size_label, price, position
		FROM menu_prices WHERE item_id = $1 ORDER BY position`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuPrice
	for rows.Next() {
		var p MenuPrice
		if err := rows.Scan(&p.ID, &p.ItemID, &p.SizeLabel, &p.Price, &p.Position); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type CreateMenuPriceParams struct {
	ItemID    uuid.UUID
	SizeLabel string
	Price     pgtype.Numeric
	Position  int32
}

func (q *Queries) CreateMenuPrice(ctx context.Context, arg CreateMenuPriceParams) (MenuPrice, error) {
	var p MenuPrice
	err := q.db.QueryRow(ctx, `
		INSERT INTO menu_prices (item_id, size_label, price, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, item_id, size_label, price, position`,
		arg.ItemID, arg.SizeLabel, arg.Price, arg.Position).
		Scan(&p.ID, &p.ItemID, &p.SizeLabel, &p.Price, &p.Position)
	return p, err
}

func (q *Queries) DeleteMenuPricesByItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM menu_prices WHERE item_id = $1`, itemID)
	return err
}

// --- Modifiers ---

func (q *Queries) ListMenuModifiersByItem(ctx context.Context, itemID uuid.UUID) ([]MenuModifier, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, item_id, name, price_delta
		FROM menu_modifiers WHERE item_id = $1 ORDER BY name`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuModifier
	for rows.Next() {
		var m MenuModifier
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Name, &m.PriceDelta); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type CreateMenuModifierParams struct {
	ItemID     uuid.UUID
	Name       string
	PriceDelta pgtype.Numeric
}

func (q *Queries) CreateMenuModifier(ctx context.Context, arg CreateMenuModifierParams) (MenuModifier, error) {
	var m MenuModifier
	err := q.db.QueryRow(ctx, `
		INSERT INTO menu_modifiers (item_id, name, price_delta)
		VALUES ($1, $2, $3)
		RETURNING id, item_id, name, price_delta`,
		arg.ItemID, arg.Name, arg.PriceDelta).
		Scan(&m.ID, &m.ItemID, &m.Name, &m.PriceDelta)
	return m, err
}

func (q *Queries) DeleteMenuModifiersByItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM menu_modifiers WHERE item_id = $1`, itemID)
	return err
}
