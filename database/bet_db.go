package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// builderFor returns a statement builder using the placeholder style of the
// connected dialect.
func builderFor(db *gorm.DB) sq.StatementBuilderType {
	if db.Dialector.Name() == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// InsertBetIfUnderQuota inserts a bet in a single statement that only fires
// while the player holds fewer than quota bets for the season, and that does
// nothing when the same pick already exists. inserted is false when either
// condition stopped the insert.
func InsertBetIfUnderQuota(ctx context.Context, db *gorm.DB, playerID string, candidateID uint, season, quota int) (id uint, inserted bool, err error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	values := sq.Select().
		Column("CAST(? AS VARCHAR(36))", playerID).
		Column("CAST(? AS INTEGER)", candidateID).
		Column("CAST(? AS INTEGER)", season).
		Column(sq.Expr("CURRENT_TIMESTAMP")).
		Where("(SELECT COUNT(*) FROM bets WHERE player_id = ? AND season = ?) < ?", playerID, season, quota)

	queryBuilder := builderFor(db).Insert("bets").
		Columns("player_id", "candidate_id", "season", "created_at").
		Select(values).
		Suffix("ON CONFLICT (player_id, candidate_id, season) DO NOTHING").
		Suffix("RETURNING id")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build SQL for InsertBetIfUnderQuota: %w", err)
	}

	var betID int64
	err = sqlDB.QueryRowContext(ctx, sqlStr, args...).Scan(&betID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to insert bet for player %s on candidate %d: %w", playerID, candidateID, err)
	}
	return uint(betID), true, nil
}

// CountBetsBySeason returns how many bets were placed in each season.
func CountBetsBySeason(ctx context.Context, db *gorm.DB) (map[int]int, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	queryBuilder := builderFor(db).Select("season", "COUNT(*)").
		From("bets").
		GroupBy("season").
		OrderBy("season DESC")
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for CountBetsBySeason: %w", err)
	}

	rows, err := sqlDB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var season, n int
		if err := rows.Scan(&season, &n); err != nil {
			return nil, fmt.Errorf("failed to scan bet count: %w", err)
		}
		counts[season] = n
	}
	return counts, rows.Err()
}
