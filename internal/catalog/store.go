package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

var ErrNotFound = errors.New("game not found")

// GameRecord stores one definition as JSON next to its listing columns.
type GameRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	Name       string `gorm:"not null"`
	Mode       string `gorm:"size:16;not null"`
	Definition string `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (GameRecord) TableName() string { return "quiz_games" }

type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mode      quiz.Mode `json:"mode"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&GameRecord{})
}

// Save validates and upserts a definition, assigning an id when missing.
func (s *Store) Save(ctx context.Context, def quiz.Definition) (quiz.Definition, error) {
	Normalize(&def)
	if err := Validate(def); err != nil {
		return quiz.Definition{}, err
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	body, err := json.Marshal(def)
	if err != nil {
		return quiz.Definition{}, err
	}

	rec := GameRecord{ID: def.ID, Name: def.Name, Mode: string(def.Mode), Definition: string(body)}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return quiz.Definition{}, err
	}
	return def, nil
}

func (s *Store) Get(ctx context.Context, id string) (quiz.Definition, error) {
	var rec GameRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quiz.Definition{}, ErrNotFound
	}
	if err != nil {
		return quiz.Definition{}, err
	}

	var def quiz.Definition
	if err := json.Unmarshal([]byte(rec.Definition), &def); err != nil {
		return quiz.Definition{}, err
	}
	return def, nil
}

func (s *Store) List(ctx context.Context) ([]Summary, error) {
	var recs []GameRecord
	if err := s.db.WithContext(ctx).Order("updated_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, Summary{ID: r.ID, Name: r.Name, Mode: quiz.Mode(r.Mode), UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&GameRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
