package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/iliyamo/mentor-marketplace/internal/database"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/utils"
)

const userColumns = "id,email,password_hash,role,name,bio,skills,hourly_rate_cents,profile_complete,is_active,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes password and inserts a new account, returning its ID.
// Mentee accounts with a name are complete from the start.
func (r *UserRepo) Create(ctx context.Context, email, password, role, name string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	complete := model.Account{Role: role, Name: name}.IsProfileComplete()
	now := nowUTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, name, skills, profile_complete, is_active, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		email, hash, role, name, "[]", complete, true, now, now)
	if err != nil {
		if database.IsDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	a, err := scanAccount(row)
	return a, notFound(err, "account")
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	a, err := scanAccount(row)
	return a, notFound(err, "account")
}

// ProfileUpdate carries the editable profile fields.  Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Name            *string
	Bio             *string
	Skills          []string
	SkillsSet       bool
	HourlyRateCents *uint32
}

// UpdateProfile applies p to the account and recomputes profile_complete.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) (model.Account, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Account{}, err
	}
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Bio != nil {
		a.Bio = strings.TrimSpace(*p.Bio)
	}
	if p.SkillsSet {
		a.Skills = normalizeSkills(p.Skills)
	}
	if p.HourlyRateCents != nil && a.Role == model.RoleMentor {
		a.HourlyRateCents = *p.HourlyRateCents
	}
	a.ProfileComplete = a.IsProfileComplete()
	a.UpdatedAt = nowUTC()
	skills, err := json.Marshal(a.Skills)
	if err != nil {
		return model.Account{}, err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, bio=?, skills=?, hourly_rate_cents=?, profile_complete=?, updated_at=? WHERE id=?",
		a.Name, a.Bio, string(skills), a.HourlyRateCents, a.ProfileComplete, a.UpdatedAt, id)
	if err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// ListMentors returns active mentors with complete profiles ordered by id.
// When skill is non-empty only mentors listing that skill are returned.
func (r *UserRepo) ListMentors(ctx context.Context, skill string, limit, offset int) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? AND profile_complete=? AND is_active=? ORDER BY id",
		model.RoleMentor, true, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	skill = strings.ToLower(strings.TrimSpace(skill))
	out := make([]model.Account, 0)
	skipped := 0
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		if skill != "" && !hasSkill(a.Skills, skill) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetMentor returns a single mentor with a complete profile.
func (r *UserRepo) GetMentor(ctx context.Context, id uint64) (model.Account, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Account{}, notFound(err, "mentor")
	}
	if a.Role != model.RoleMentor || !a.ProfileComplete || !a.IsActive {
		return model.Account{}, notFound(sql.ErrNoRows, "mentor")
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (model.Account, error) {
	var (
		a      model.Account
		bio    sql.NullString
		skills sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.Name, &bio, &skills,
		&a.HourlyRateCents, &a.ProfileComplete, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.Account{}, err
	}
	a.Bio = bio.String
	a.Skills = []string{}
	if skills.Valid && skills.String != "" {
		if err := json.Unmarshal([]byte(skills.String), &a.Skills); err != nil {
			return model.Account{}, err
		}
	}
	return a, nil
}

func normalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func hasSkill(skills []string, want string) bool {
	for _, s := range skills {
		if strings.ToLower(s) == want {
			return true
		}
	}
	return false
}
