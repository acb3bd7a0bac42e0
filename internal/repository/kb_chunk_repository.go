package repository

import (
	"fmt"

	"gorm.io/gorm"

	"policyqa/internal/model"
)

type KBChunkRepository struct {
	db *gorm.DB
}

func NewKBChunkRepository(db *gorm.DB) *KBChunkRepository {
	return &KBChunkRepository{db: db}
}

func (r *KBChunkRepository) CreateBatch(chunks []model.KBChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.Create(&chunks).Error; err != nil {
		return fmt.Errorf("create kb chunks batch failed: %w", err)
	}
	return nil
}

// ListAll returns every indexed chunk. The knowledge base is small enough to
// score in memory; revisit if the corpus outgrows a single scan.
func (r *KBChunkRepository) ListAll() ([]model.KBChunk, error) {
	var chunks []model.KBChunk
	if err := r.db.Order("source_file, position").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list kb chunks failed: %w", err)
	}
	return chunks, nil
}

// DeleteBySourceFile removes all chunks indexed from one source file so the
// indexer can re-index it without duplicates.
func (r *KBChunkRepository) DeleteBySourceFile(sourceFile string) error {
	if err := r.db.Where("source_file = ?", sourceFile).Delete(&model.KBChunk{}).Error; err != nil {
		return fmt.Errorf("delete kb chunks by source file failed: %w", err)
	}
	return nil
}

func (r *KBChunkRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.KBChunk{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count kb chunks failed: %w", err)
	}
	return n, nil
}
