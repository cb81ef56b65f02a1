package repo

import (
	"context"
	"errors"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/records"
)

// InventoryRepository defines the interface for inventory item operations.
type InventoryRepository interface {
	GetAll(ctx context.Context) ([]models.InventoryItem, error)
	GetByID(ctx context.Context, id int) (models.InventoryItem, error)
	Lookup(ctx context.Context, id int) (models.InventoryItem, bool, error)
	Create(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error)
	Update(ctx context.Context, id int, patch InventoryPatch) (models.InventoryItem, error)
	Delete(ctx context.Context, id int) (bool, error)
	GetLowStock(ctx context.Context) ([]models.InventoryItem, error)
	GetByCategory(ctx context.Context, category string) ([]models.InventoryItem, error)
}

// InventoryPatch holds the fields of a partial update. Nil fields are left untouched.
type InventoryPatch struct {
	Name     *string
	Category *string
	Quantity *int
	MinStock *int
	Unit     *string
	Location *string
	Tags     *string
	Owner    *string
}

func (p InventoryPatch) fields(now time.Time) records.Record {
	r := records.Record{fieldLastUpdated: formatTime(now)}
	setString(r, fieldName, p.Name)
	setString(r, fieldCategory, p.Category)
	setString(r, fieldUnit, p.Unit)
	setString(r, fieldLocation, p.Location)
	setString(r, fieldTags, p.Tags)
	setString(r, fieldOwner, p.Owner)
	setInt(r, fieldQuantity, p.Quantity)
	setInt(r, fieldMinStock, p.MinStock)
	return r
}

func setString(r records.Record, key string, v *string) {
	if v != nil {
		r[key] = *v
	}
}

func setInt(r records.Record, key string, v *int) {
	if v != nil {
		r[key] = *v
	}
}

// RecordsInventoryRepository maps inventory items onto the "inventory" record table.
type RecordsInventoryRepository struct {
	client   records.RecordClient
	notifier notice.Notifier
	table    string
	now      func() time.Time
}

func NewRecordsInventoryRepository(client records.RecordClient, n notice.Notifier) *RecordsInventoryRepository {
	return &RecordsInventoryRepository{
		client:   client,
		notifier: notifierOrDiscard(n),
		table:    records.TableInventory,
		now:      time.Now,
	}
}

func (r *RecordsInventoryRepository) GetAll(ctx context.Context) ([]models.InventoryItem, error) {
	return r.fetch(ctx, records.Query{}, "fetch inventory")
}

func (r *RecordsInventoryRepository) GetByID(ctx context.Context, id int) (models.InventoryItem, error) {
	rec, err := r.client.GetRecordByID(ctx, r.table, id)
	if err != nil {
		return models.InventoryItem{}, fail(ctx, r.notifier, err, "fetch item %d", id)
	}
	dto, err := decodeInventory(r.table, rec)
	if err != nil {
		return models.InventoryItem{}, fail(ctx, r.notifier, err, "fetch item %d", id)
	}
	return dto.model(), nil
}

// Lookup is GetByID for references that may dangle. A missing item reports
// found as false and raises no notice; other failures are reported as usual.
func (r *RecordsInventoryRepository) Lookup(ctx context.Context, id int) (models.InventoryItem, bool, error) {
	rec, err := r.client.GetRecordByID(ctx, r.table, id)
	if errors.Is(err, records.ErrNotFound) {
		return models.InventoryItem{}, false, nil
	}
	if err != nil {
		return models.InventoryItem{}, false, fail(ctx, r.notifier, err, "fetch item %d", id)
	}
	dto, err := decodeInventory(r.table, rec)
	if err != nil {
		return models.InventoryItem{}, false, fail(ctx, r.notifier, err, "fetch item %d", id)
	}
	return dto.model(), true, nil
}

func (r *RecordsInventoryRepository) Create(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	fields := records.Record{
		fieldName:        item.Name,
		fieldTags:        item.Tags,
		fieldOwner:       item.Owner,
		fieldCategory:    item.Category,
		fieldQuantity:    item.Quantity,
		fieldMinStock:    item.MinStock,
		fieldLocation:    item.Location,
		fieldUnit:        item.Unit,
		fieldLastUpdated: formatTime(r.now()),
	}
	return r.write(ctx, "create item", func() (records.Record, error) {
		return r.client.CreateRecord(ctx, r.table, fields)
	})
}

// Update merges the patch into the stored item and stamps last_updated.
func (r *RecordsInventoryRepository) Update(ctx context.Context, id int, patch InventoryPatch) (models.InventoryItem, error) {
	return r.write(ctx, "update item", func() (records.Record, error) {
		return r.client.UpdateRecord(ctx, r.table, id, patch.fields(r.now()))
	})
}

func (r *RecordsInventoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	if err := r.client.DeleteRecord(ctx, r.table, id); err != nil {
		return false, fail(ctx, r.notifier, err, "delete item %d", id)
	}
	return true, nil
}

// GetLowStock returns the items whose quantity is at or below their minimum stock.
func (r *RecordsInventoryRepository) GetLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	q := records.Query{Where: []records.Condition{
		{FieldName: fieldQuantity, Operator: records.OpLessThanOrEqualTo, ValueField: fieldMinStock},
	}}
	return r.fetch(ctx, q, "fetch low stock items")
}

func (r *RecordsInventoryRepository) GetByCategory(ctx context.Context, category string) ([]models.InventoryItem, error) {
	q := records.Query{Where: []records.Condition{
		{FieldName: fieldCategory, Operator: records.OpExactMatch, Value: category},
	}}
	return r.fetch(ctx, q, "fetch items in category "+category)
}

func (r *RecordsInventoryRepository) fetch(ctx context.Context, q records.Query, action string) ([]models.InventoryItem, error) {
	recs, err := r.client.FetchRecords(ctx, r.table, q)
	if err != nil {
		return nil, fail(ctx, r.notifier, err, "%s", action)
	}
	items, err := decodeAll(r.table, recs, decodeInventory, inventoryRecord.model)
	if err != nil {
		return nil, fail(ctx, r.notifier, err, "%s", action)
	}
	return items, nil
}

func (r *RecordsInventoryRepository) write(ctx context.Context, action string, call func() (records.Record, error)) (models.InventoryItem, error) {
	rec, err := call()
	if err != nil {
		return models.InventoryItem{}, fail(ctx, r.notifier, err, "%s", action)
	}
	dto, err := decodeInventory(r.table, rec)
	if err != nil {
		return models.InventoryItem{}, fail(ctx, r.notifier, err, "%s", action)
	}
	return dto.model(), nil
}
