// Package archive keeps the final scores of every round that ended in a
// confirmed reset. The live board never reads from it.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
	pub "github.com/DoyleJ11/batalla-naval/pkg/types"
)

const DefaultLimit = 20

type Round struct {
	ID        uint   `gorm:"primaryKey"`
	LobbyCode string `gorm:"size:16;index"`
	Epoch     int
	Scores    []RoundScore `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

type RoundScore struct {
	ID       uint `gorm:"primaryKey"`
	RoundID  uint `gorm:"index"`
	Position int
	Team     string `gorm:"size:64"`
	Score    int
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to postgres and migrates the schema.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	return New(db, log)
}

func New(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Round{}, &RoundScore{}); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}, nil
}

// NewRound captures ended's scores in roster order.
func NewRound(code string, ended engine.State) Round {
	r := Round{
		LobbyCode: code,
		Epoch:     ended.Epoch,
		Scores:    make([]RoundScore, 0, len(ended.Roster)),
	}
	for i, team := range ended.Roster {
		r.Scores = append(r.Scores, RoundScore{Position: i, Team: string(team), Score: ended.Scores[team]})
	}
	return r
}

func (s *Store) RecordRound(ctx context.Context, code string, ended engine.State) error {
	r := NewRound(code, ended)
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return fmt.Errorf("archive: record round: %w", err)
	}
	s.log.Info("round archived", zap.String("lobby", code), zap.Uint("round", r.ID), zap.Int("epoch", r.Epoch))
	return nil
}

// Rounds lists the most recent rounds of a lobby first.
func (s *Store) Rounds(ctx context.Context, code string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var rounds []Round
	err := s.db.WithContext(ctx).
		Preload("Scores", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("lobby_code = ?", code).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("archive: list rounds: %w", err)
	}
	return rounds, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ToView(r Round) pub.Round {
	v := pub.Round{
		Epoch:     r.Epoch,
		Scores:    make([]pub.TeamScore, 0, len(r.Scores)),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, sc := range r.Scores {
		v.Scores = append(v.Scores, pub.TeamScore{Team: sc.Team, Score: sc.Score})
	}
	return v
}
