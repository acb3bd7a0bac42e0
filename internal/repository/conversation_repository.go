package repository

import (
	"fmt"

	"gorm.io/gorm"

	"policyqa/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(record *model.ConversationRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create conversation record failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListByUserID(userID uint) ([]model.ConversationRecord, error) {
	var records []model.ConversationRecord
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list conversation records failed: %w", err)
	}
	return records, nil
}
