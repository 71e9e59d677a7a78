package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joonsp/bankcore/internal/domain"
)

const memberColumns = `id, email, name, password_hash, grade, created_at`

type MemberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id,
	)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return m, nil
}

// GetGrade is the only member attribute the movement engine consults; it
// feeds the fee discount and nothing else.
func (r *MemberRepository) GetGrade(ctx context.Context, id int64) (domain.Grade, error) {
	var grade domain.Grade
	err := r.db.QueryRowContext(ctx,
		`SELECT grade FROM members WHERE id = $1`, id,
	).Scan(&grade)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("GetGrade: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("GetGrade: %w", err)
	}
	return grade, nil
}

func scanMember(s scanner) (*domain.Member, error) {
	var m domain.Member
	err := s.Scan(
		&m.ID, &m.Email, &m.Name, &m.PasswordHash, &m.Grade, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
