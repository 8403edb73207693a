package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaun-stanley/fairsplit/internal/models"
	"github.com/shaun-stanley/fairsplit/internal/storage"
)

// CreateGroup persists a new group aggregate.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	for i := range group.Members {
		if group.Members[i].ID == "" {
			group.Members[i].ID = uuid.New().String()
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, currency_code, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CurrencyCode, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := insertChildren(ctx, tx, group); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveGroup replaces the stored aggregate with the given one. Children are
// deleted and reinserted in one transaction; cheap at realistic group sizes
// and immune to diffing bugs.
func (s *SQLiteStore) SaveGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE groups SET name = ?, currency_code = ? WHERE id = ?",
		group.Name, group.CurrencyCode, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}

	for _, table := range []string{"members", "expenses", "settlements"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE group_id = ?", group.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertChildren(ctx, tx, group); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteGroup removes a group and everything it owns.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

// ListGroups returns all groups without their child collections.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, currency_code, created_at FROM groups ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.CurrencyCode, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetGroup loads a full group aggregate.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, currency_code, created_at FROM groups WHERE id = ?", groupID,
	).Scan(&group.ID, &group.Name, &group.CurrencyCode, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if group.Members, err = s.loadMembers(ctx, groupID); err != nil {
		return nil, err
	}
	if group.Expenses, err = s.loadExpenses(ctx, groupID); err != nil {
		return nil, err
	}
	if group.Settlements, err = s.loadSettlements(ctx, groupID); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM members WHERE group_id = ? ORDER BY position", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *SQLiteStore) loadExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount, currency_code, fx_rate, payer_id, tax, tip,
		        surcharge_mode, date, category, note
		 FROM expenses WHERE group_id = ? ORDER BY position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var (
			e                             models.Expense
			amount, tax, tip              string
			fxRate, payer, category, note sql.NullString
			mode                          string
		)
		if err := rows.Scan(&e.ID, &e.Title, &amount, &e.CurrencyCode, &fxRate, &payer,
			&tax, &tip, &mode, &e.Date, &category, &note); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.GroupID = groupID
		e.SurchargeMode = models.Allocation(mode)
		e.PayerID = payer.String
		e.Category = category.String
		e.Note = note.String
		if e.Amount, err = decimalColumn(amount); err != nil {
			return nil, err
		}
		if e.Tax, err = decimalColumn(tax); err != nil {
			return nil, err
		}
		if e.Tip, err = decimalColumn(tip); err != nil {
			return nil, err
		}
		if fxRate.Valid {
			rate, err := decimalColumn(fxRate.String)
			if err != nil {
				return nil, err
			}
			e.FxRate = &rate
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expenses {
		e := &expenses[i]
		var err error
		if e.Participants, err = s.loadIDList(ctx,
			"SELECT member_id FROM expense_participants WHERE expense_id = ? ORDER BY position", e.ID); err != nil {
			return nil, err
		}
		if e.Shares, err = s.loadShares(ctx, e.ID); err != nil {
			return nil, err
		}
		if e.Items, err = s.loadItems(ctx, e.ID); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *SQLiteStore) loadShares(ctx context.Context, expenseID string) ([]models.Share, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, weight FROM expense_shares WHERE expense_id = ? ORDER BY position", expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load shares: %w", err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var sh models.Share
		if err := rows.Scan(&sh.MemberID, &sh.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

func (s *SQLiteStore) loadItems(ctx context.Context, expenseID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, amount FROM items WHERE expense_id = ? ORDER BY position", expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var (
			item   models.Item
			amount string
		)
		if err := rows.Scan(&item.ID, &item.Title, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if item.Amount, err = decimalColumn(amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		var err error
		if items[i].Participants, err = s.loadIDList(ctx,
			"SELECT member_id FROM item_participants WHERE item_id = ? ORDER BY position", items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *SQLiteStore) loadSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_id, to_id, amount, date, paid, note, receipt_path
		 FROM settlements WHERE group_id = ? ORDER BY position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var (
			st            models.Settlement
			amount        string
			note, receipt sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.FromID, &st.ToID, &amount, &st.Date, &st.Paid, &note, &receipt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.GroupID = groupID
		st.Note = note.String
		st.ReceiptPath = receipt.String
		if st.Amount, err = decimalColumn(amount); err != nil {
			return nil, err
		}
		settlements = append(settlements, st)
	}
	return settlements, rows.Err()
}

func (s *SQLiteStore) loadIDList(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to load id list: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// insertChildren writes a group's members, expenses, and settlements inside
// the given transaction, generating IDs where missing.
func insertChildren(ctx context.Context, tx *sql.Tx, group *models.Group) error {
	for i, m := range group.Members {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO members (id, group_id, name, position) VALUES (?, ?, ?, ?)",
			m.ID, group.ID, m.Name, i,
		); err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	for i := range group.Expenses {
		if err := insertExpense(ctx, tx, group.ID, &group.Expenses[i], i); err != nil {
			return err
		}
	}

	for i := range group.Settlements {
		st := &group.Settlements[i]
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, group_id, from_id, to_id, amount, date, paid, note, receipt_path, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, group.ID, st.FromID, st.ToID, decimalText(st.Amount),
			st.Date, st.Paid, nullable(st.Note), nullable(st.ReceiptPath), i,
		); err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}
	return nil
}

func insertExpense(ctx context.Context, tx *sql.Tx, groupID string, e *models.Expense, position int) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.SurchargeMode == "" {
		e.SurchargeMode = models.AllocationProportional
	}
	e.GroupID = groupID

	var fxRate interface{}
	if e.FxRate != nil {
		fxRate = decimalText(*e.FxRate)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, title, amount, currency_code, fx_rate, payer_id,
		                       tax, tip, surcharge_mode, date, category, note, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, groupID, e.Title, decimalText(e.Amount), e.CurrencyCode, fxRate,
		nullable(e.PayerID), decimalText(e.Tax), decimalText(e.Tip), string(e.SurchargeMode),
		e.Date, nullable(e.Category), nullable(e.Note), position,
	); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, memberID := range e.Participants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, member_id, position) VALUES (?, ?, ?)",
			e.ID, memberID, i,
		); err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}

	for i, sh := range e.Shares {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member_id, weight, position) VALUES (?, ?, ?, ?)",
			e.ID, sh.MemberID, sh.Weight, i,
		); err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	for i := range e.Items {
		item := &e.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, expense_id, title, amount, position) VALUES (?, ?, ?, ?, ?)",
			item.ID, e.ID, item.Title, decimalText(item.Amount), i,
		); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		for j, memberID := range item.Participants {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO item_participants (item_id, member_id, position) VALUES (?, ?, ?)",
				item.ID, memberID, j,
			); err != nil {
				return fmt.Errorf("failed to insert item participant: %w", err)
			}
		}
	}
	return nil
}

// nullable maps an empty string to NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
