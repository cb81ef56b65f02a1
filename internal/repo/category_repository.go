package repo

import (
	"context"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/records"
)

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int) (models.Category, error)
	Create(ctx context.Context, c models.Category) (models.Category, error)
	Update(ctx context.Context, id int, patch CategoryPatch) (models.Category, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type CategoryPatch struct {
	Name      *string
	Icon      *string
	ItemCount *int
}

type RecordsCategoryRepository struct {
	client   records.RecordClient
	notifier notice.Notifier
	table    string
}

func NewRecordsCategoryRepository(client records.RecordClient, n notice.Notifier) *RecordsCategoryRepository {
	return &RecordsCategoryRepository{client: client, notifier: notifierOrDiscard(n), table: records.TableCategories}
}

func (r *RecordsCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	recs, err := r.client.FetchRecords(ctx, r.table, records.Query{})
	if err != nil {
		return nil, fail(ctx, r.notifier, err, "fetch categories")
	}
	cats, err := decodeAll(r.table, recs, decodeCategory, categoryRecord.model)
	if err != nil {
		return nil, fail(ctx, r.notifier, err, "fetch categories")
	}
	return cats, nil
}

func (r *RecordsCategoryRepository) GetByID(ctx context.Context, id int) (models.Category, error) {
	return r.write(ctx, "fetch category", func() (records.Record, error) {
		return r.client.GetRecordByID(ctx, r.table, id)
	})
}

// Create stores a new category with an item count of zero. Names are the key
// items refer to, so a name already in use is rejected.
func (r *RecordsCategoryRepository) Create(ctx context.Context, c models.Category) (models.Category, error) {
	if err := r.checkName(ctx, c.Name, 0); err != nil {
		return models.Category{}, fail(ctx, r.notifier, err, "create category")
	}
	fields := records.Record{fieldName: c.Name, fieldIcon: c.Icon, fieldItemCount: 0}
	return r.write(ctx, "create category", func() (records.Record, error) {
		return r.client.CreateRecord(ctx, r.table, fields)
	})
}

func (r *RecordsCategoryRepository) Update(ctx context.Context, id int, patch CategoryPatch) (models.Category, error) {
	if patch.Name != nil {
		if err := r.checkName(ctx, *patch.Name, id); err != nil {
			return models.Category{}, fail(ctx, r.notifier, err, "update category")
		}
	}
	fields := records.Record{}
	setString(fields, fieldName, patch.Name)
	setString(fields, fieldIcon, patch.Icon)
	setInt(fields, fieldItemCount, patch.ItemCount)
	return r.write(ctx, "update category", func() (records.Record, error) {
		return r.client.UpdateRecord(ctx, r.table, id, fields)
	})
}

func (r *RecordsCategoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	if err := r.client.DeleteRecord(ctx, r.table, id); err != nil {
		return false, fail(ctx, r.notifier, err, "delete category %d", id)
	}
	return true, nil
}

// checkName fails when another category than except already uses name.
func (r *RecordsCategoryRepository) checkName(ctx context.Context, name string, except int) error {
	recs, err := r.client.FetchRecords(ctx, r.table, records.Query{Where: []records.Condition{
		{FieldName: fieldName, Operator: records.OpExactMatch, Value: name},
	}})
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ID() != except {
			return &records.ValidationError{Table: r.table, Fields: []records.FieldError{
				{Field: "name", Message: "category " + name + " already exists"},
			}}
		}
	}
	return nil
}

func (r *RecordsCategoryRepository) write(ctx context.Context, action string, call func() (records.Record, error)) (models.Category, error) {
	rec, err := call()
	if err != nil {
		return models.Category{}, fail(ctx, r.notifier, err, "%s", action)
	}
	dto, err := decodeCategory(r.table, rec)
	if err != nil {
		return models.Category{}, fail(ctx, r.notifier, err, "%s", action)
	}
	return dto.model(), nil
}
