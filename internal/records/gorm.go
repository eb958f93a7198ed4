package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errDBUnavailable = errors.New("records database unavailable")

// recordModel is the records table row
type recordModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Kind        string `gorm:"size:32;not null;index:idx_records_owner_kind,priority:2"`
	OwnerUserID int64  `gorm:"column:user_id;not null;index:idx_records_owner_kind,priority:1"`
	Title       string `gorm:"size:255"`
	Body        string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (recordModel) TableName() string {
	return "records"
}

// OpenPostgres connects to dsn with gorm logging silenced; callers log errors themselves
func OpenPostgres(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return gdb, nil
}

// GormRepository stores records in a relational database through gorm
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the records table
func (r *GormRepository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).AutoMigrate(&recordModel{})
}

func (r *GormRepository) Create(ctx context.Context, rec *Record) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := toModel(rec)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	*rec = fromModel(model)
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id int64) (*Record, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model recordModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec := fromModel(model)
	return &rec, nil
}

func (r *GormRepository) Update(ctx context.Context, rec *Record) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Model(&recordModel{ID: rec.ID}).Updates(map[string]any{
		"kind":  rec.Kind,
		"title": rec.Title,
		"body":  rec.Body,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	updated, err := r.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	*rec = *updated
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Delete(&recordModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) ListByOwner(ctx context.Context, ownerUserID int64, kind string) ([]*Record, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerUserID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var models []recordModel
	if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(models))
	for _, model := range models {
		rec := fromModel(model)
		out = append(out, &rec)
	}
	return out, nil
}

func (r *GormRepository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var model recordModel
	err := r.db.WithContext(ctx).Select("user_id").First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return model.OwnerUserID, nil
}

func toModel(rec *Record) recordModel {
	return recordModel{
		ID:          rec.ID,
		Kind:        rec.Kind,
		OwnerUserID: rec.OwnerUserID,
		Title:       rec.Title,
		Body:        rec.Body,
	}
}

func fromModel(model recordModel) Record {
	return Record{
		ID:          model.ID,
		Kind:        model.Kind,
		OwnerUserID: model.OwnerUserID,
		Title:       model.Title,
		Body:        model.Body,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
