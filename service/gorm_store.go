package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avirshuk-alt/Contract-Management/config"
	"github.com/avirshuk-alt/Contract-Management/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// GormStore is the database-backed Store, over sqlite or postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(cfg *config.DatabaseConfig) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Contract{},
		&model.ContractDocument{},
		&model.DocumentVersion{},
		&model.Clause{},
		&model.Obligation{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

// NewGormStoreFromDB wraps an already-open connection; used by tests.
func NewGormStoreFromDB(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateContract(ctx context.Context, contract *model.Contract) error {
	if err := s.db.WithContext(ctx).Create(contract).Error; err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

func (s *GormStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	err := s.db.WithContext(ctx).
		Preload("Documents").
		Preload("Documents.Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number ASC")
		}).
		First(&contract, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return &contract, nil
}

func (s *GormStore) ListContracts(ctx context.Context, tenant string) ([]*model.Contract, error) {
	var contracts []*model.Contract
	err := s.db.WithContext(ctx).
		Where("tenant = ?", tenant).
		Order("created_at DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

func (s *GormStore) DeleteContract(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var docIDs []string
		if err := tx.Model(&model.ContractDocument{}).Where("contract_id = ?", id).Pluck("id", &docIDs).Error; err != nil {
			return err
		}
		if len(docIDs) > 0 {
			var versionIDs []string
			if err := tx.Model(&model.DocumentVersion{}).Where("document_id IN ?", docIDs).Pluck("id", &versionIDs).Error; err != nil {
				return err
			}
			if len(versionIDs) > 0 {
				if err := tx.Where("version_id IN ?", versionIDs).Delete(&model.Clause{}).Error; err != nil {
					return err
				}
				if err := tx.Where("version_id IN ?", versionIDs).Delete(&model.Obligation{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", versionIDs).Delete(&model.DocumentVersion{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("contract_id = ?", id).Delete(&model.ContractDocument{}).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&model.Contract{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) CreateDocument(ctx context.Context, doc *model.ContractDocument) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (s *GormStore) GetDocument(ctx context.Context, id string) (*model.ContractDocument, error) {
	var doc model.ContractDocument
	err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *GormStore) CreateVersion(ctx context.Context, version *model.DocumentVersion) error {
	if version.Status == "" {
		version.Status = model.StatusPending
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max int
		err := tx.Model(&model.DocumentVersion{}).
			Where("document_id = ?", version.DocumentID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&max).Error
		if err != nil {
			return fmt.Errorf("failed to read version number: %w", err)
		}
		version.VersionNumber = max + 1
		if err := tx.Create(version).Error; err != nil {
			return fmt.Errorf("failed to create version: %w", err)
		}
		return nil
	})
}

func (s *GormStore) GetVersion(ctx context.Context, id string) (*model.DocumentVersion, error) {
	var version model.DocumentVersion
	err := s.db.WithContext(ctx).First(&version, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &version, nil
}

func (s *GormStore) LatestVersion(ctx context.Context, contractID string) (*model.DocumentVersion, error) {
	var version model.DocumentVersion
	err := s.db.WithContext(ctx).
		Joins("JOIN contract_documents ON contract_documents.id = document_versions.document_id").
		Where("contract_documents.contract_id = ?", contractID).
		Order("document_versions.created_at DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}
	return &version, nil
}

func (s *GormStore) UpdateVersionStatus(ctx context.Context, versionID, status, errMsg string) error {
	res := s.db.WithContext(ctx).Model(&model.DocumentVersion{}).
		Where("id = ?", versionID).
		Updates(map[string]any{
			"status":     status,
			"error_msg":  errMsg,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveExtraction commits text, derived fields and the replaced clause and
// obligation sets in one transaction so readers never observe a partial
// replacement.
func (s *GormStore) SaveExtraction(ctx context.Context, versionID string, data *ExtractionData) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Struct update with an explicit Select so the json serializer runs
		// on Derived and zero values still overwrite.
		res := tx.Model(&model.DocumentVersion{}).
			Where("id = ?", versionID).
			Select("ExtractedText", "PageCount", "Derived", "Status", "ErrorMsg", "UpdatedAt").
			Updates(&model.DocumentVersion{
				ExtractedText: data.Text,
				PageCount:     data.PageCount,
				Derived:       data.Derived,
				Status:        model.StatusDone,
				ErrorMsg:      "",
				UpdatedAt:     time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update version: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Where("version_id = ?", versionID).Delete(&model.Clause{}).Error; err != nil {
			return fmt.Errorf("failed to delete clauses: %w", err)
		}
		if err := tx.Where("version_id = ?", versionID).Delete(&model.Obligation{}).Error; err != nil {
			return fmt.Errorf("failed to delete obligations: %w", err)
		}

		for _, clause := range data.Clauses {
			clause.VersionID = versionID
			if err := tx.Create(clause).Error; err != nil {
				return fmt.Errorf("failed to create clause: %w", err)
			}
		}
		for _, ob := range data.Obligations {
			ob.VersionID = versionID
			if err := tx.Create(ob).Error; err != nil {
				return fmt.Errorf("failed to create obligation: %w", err)
			}
		}
		return nil
	})
}

func (s *GormStore) ListClauses(ctx context.Context, versionID string) ([]*model.Clause, error) {
	var clauses []*model.Clause
	err := s.db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("sort_order ASC").
		Find(&clauses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clauses: %w", err)
	}
	return clauses, nil
}

func (s *GormStore) ListObligations(ctx context.Context, versionID string) ([]*model.Obligation, error) {
	var obligations []*model.Obligation
	err := s.db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("sort_order ASC").
		Find(&obligations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	return obligations, nil
}
