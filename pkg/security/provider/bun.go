package provider

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleList stores a role set as a JSON array so the schema works on both
// SQLite and PostgreSQL.
type RoleList []string

// Scan implements sql.Scanner for reading from the database.
func (rl *RoleList) Scan(value any) error {
	if value == nil {
		*rl = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan RoleList: expected []byte or string, got %T", value)
	}
	return json.Unmarshal(raw, rl)
}

// Value implements driver.Valuer for writing to the database.
func (rl RoleList) Value() (driver.Value, error) {
	if rl == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(rl)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// UserRow is the persisted shape of a user account.
type UserRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Username     string    `bun:"username,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Salt         string    `bun:"salt"`
	Roles        RoleList  `bun:"roles"`
	Type         string    `bun:"type,notnull,default:'user'"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Bun serves user records from a relational database through Bun.
type Bun struct {
	db *bun.DB
}

// NewBun builds a database-backed provider.
func NewBun(db *bun.DB) *Bun {
	return &Bun{db: db}
}

// CreateTable creates the users table if it does not exist yet.
func (p *Bun) CreateTable(ctx context.Context) error {
	_, err := p.db.NewCreateTable().
		Model((*UserRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Create inserts a new user row. The caller supplies an already-encoded hash.
func (p *Bun) Create(ctx context.Context, username, passwordHash, salt string, roles []string, userType security.UserType) (*UserRow, error) {
	if userType == "" {
		userType = security.UserTypeDefault
	}
	row := &UserRow{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Salt:         salt,
		Roles:        RoleList(roles),
		Type:         string(userType),
		CreatedAt:    time.Now(),
	}
	if _, err := p.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return row, nil
}

// GetUser returns the record for the username, or nil when missing. Rows
// without a password hash are unusable and treated as absent.
func (p *Bun) GetUser(ctx context.Context, username string) (*security.User, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}

	row := new(UserRow)
	err := p.db.NewSelect().
		Model(row).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if row.PasswordHash == "" {
		return nil, nil
	}

	user := security.NewUser(row.Username, row.PasswordHash, row.Salt, []string(row.Roles))
	if row.Type != "" {
		user.Type = security.UserType(row.Type)
	}
	return user, nil
}
