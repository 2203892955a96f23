package persistent

import (
	"context"
	"errors"
	"time"

	"premier-open-group/services/portal/internal/content"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// ContentRepository stores every content type through its schema. Table and
// column names always come from the schema table, never from callers.
type ContentRepository interface {
	List(ctx context.Context, schema *content.Schema, filter content.Filter) ([]content.Record, error)
	Get(ctx context.Context, schema *content.Schema, id string) (content.Record, error)
	GetBy(ctx context.Context, schema *content.Schema, column, value string) (content.Record, error)
	Create(ctx context.Context, schema *content.Schema, record content.Record) (content.Record, error)
	CreateBatch(ctx context.Context, schema *content.Schema, records []content.Record) ([]content.Record, error)
	Update(ctx context.Context, schema *content.Schema, id string, changes content.Record) (content.Record, error)
	Delete(ctx context.Context, schema *content.Schema, id string) error
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) List(ctx context.Context, schema *content.Schema, filter content.Filter) ([]content.Record, error) {
	query := r.db.WithContext(ctx).Table(schema.Table)
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if filter.Category != "" && schema.CanFilter("category") {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []map[string]interface{}
	if err := query.Order(schema.OrderBy).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]content.Record, len(rows))
	for i, row := range rows {
		records[i] = content.Record(row)
	}
	return records, nil
}

func (r *contentRepository) Get(ctx context.Context, schema *content.Schema, id string) (content.Record, error) {
	return r.GetBy(ctx, schema, "id", id)
}

func (r *contentRepository) GetBy(ctx context.Context, schema *content.Schema, column, value string) (content.Record, error) {
	if column != "id" && column != "slug" {
		return nil, errors.New("unsupported lookup column " + column)
	}

	var rows []map[string]interface{}
	err := r.db.WithContext(ctx).
		Table(schema.Table).
		Where(column+" = ?", value).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return content.Record(rows[0]), nil
}

func (r *contentRepository) Create(ctx context.Context, schema *content.Schema, record content.Record) (content.Record, error) {
	stamped := stamp(record, time.Now().UTC())
	if err := r.db.WithContext(ctx).Table(schema.Table).Create(map[string]interface{}(stamped)).Error; err != nil {
		return nil, err
	}
	return stamped, nil
}

// CreateBatch inserts all records in one statement, or none of them.
func (r *contentRepository) CreateBatch(ctx context.Context, schema *content.Schema, records []content.Record) ([]content.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	rows := make([]map[string]interface{}, len(records))
	out := make([]content.Record, len(records))
	for i, rec := range records {
		out[i] = stamp(rec, now)
		rows[i] = out[i]
	}

	if err := r.db.WithContext(ctx).Table(schema.Table).Create(rows).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepository) Update(ctx context.Context, schema *content.Schema, id string, changes content.Record) (content.Record, error) {
	if len(changes) > 0 {
		updates := make(map[string]interface{}, len(changes)+1)
		for k, v := range changes {
			updates[k] = v
		}
		updates["updated_at"] = time.Now().UTC()

		result := r.db.WithContext(ctx).Table(schema.Table).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.Get(ctx, schema, id)
}

func (r *contentRepository) Delete(ctx context.Context, schema *content.Schema, id string) error {
	result := r.db.WithContext(ctx).Exec("DELETE FROM "+schema.Table+" WHERE id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func stamp(record content.Record, now time.Time) content.Record {
	out := make(content.Record, len(record)+3)
	for k, v := range record {
		out[k] = v
	}
	if out.String("id") == "" {
		out["id"] = uuid.New().String()
	}
	out["created_at"] = now
	out["updated_at"] = now
	return out
}
