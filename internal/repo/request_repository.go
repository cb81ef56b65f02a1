package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/records"
)

type RequestRepository interface {
	GetAll(ctx context.Context) ([]models.Request, error)
	GetByID(ctx context.Context, id int) (models.Request, error)
	Create(ctx context.Context, req models.Request) (models.Request, error)
	Update(ctx context.Context, id int, patch RequestPatch) (models.Request, error)
	Delete(ctx context.Context, id int) (bool, error)
	GetByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error)
}

type RequestPatch struct {
	ItemID     *int
	Quantity   *int
	Requester  *string
	Department *string
	Notes      *string
	Status     *models.RequestStatus
}

func (p RequestPatch) fields() records.Record {
	r := records.Record{}
	setInt(r, fieldItemID, p.ItemID)
	setInt(r, fieldQuantity, p.Quantity)
	setString(r, fieldRequester, p.Requester)
	setString(r, fieldDepartment, p.Department)
	setString(r, fieldNotes, p.Notes)
	if p.Status != nil {
		r[fieldStatus] = string(*p.Status)
	}
	return r
}

// RecordsRequestRepository maps supply requests onto the "requests" record table.
type RecordsRequestRepository struct {
	client   records.RecordClient
	notifier notice.Notifier
	table    string
	now      func() time.Time
}

func NewRecordsRequestRepository(client records.RecordClient, n notice.Notifier) *RecordsRequestRepository {
	return &RecordsRequestRepository{
		client:   client,
		notifier: notifierOrDiscard(n),
		table:    records.TableRequests,
		now:      time.Now,
	}
}

func (r *RecordsRequestRepository) GetAll(ctx context.Context) ([]models.Request, error) {
	return r.fetch(ctx, records.Query{}, "fetch requests")
}

func (r *RecordsRequestRepository) GetByID(ctx context.Context, id int) (models.Request, error) {
	return r.write(ctx, "fetch request", func() (records.Record, error) {
		return r.client.GetRecordByID(ctx, r.table, id)
	})
}

// Create submits a new request. Every request starts pending and is dated now,
// whatever the caller set.
func (r *RecordsRequestRepository) Create(ctx context.Context, req models.Request) (models.Request, error) {
	fields := records.Record{
		fieldItemID:      req.ItemID,
		fieldQuantity:    req.Quantity,
		fieldRequester:   req.Requester,
		fieldDepartment:  req.Department,
		fieldNotes:       req.Notes,
		fieldStatus:      string(models.StatusPending),
		fieldRequestDate: formatTime(r.now()),
	}
	return r.write(ctx, "submit request", func() (records.Record, error) {
		return r.client.CreateRecord(ctx, r.table, fields)
	})
}

func (r *RecordsRequestRepository) Update(ctx context.Context, id int, patch RequestPatch) (models.Request, error) {
	return r.write(ctx, "update request", func() (records.Record, error) {
		return r.client.UpdateRecord(ctx, r.table, id, patch.fields())
	})
}

func (r *RecordsRequestRepository) Delete(ctx context.Context, id int) (bool, error) {
	if err := r.client.DeleteRecord(ctx, r.table, id); err != nil {
		return false, fail(ctx, r.notifier, err, "delete request %d", id)
	}
	return true, nil
}

func (r *RecordsRequestRepository) GetByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error) {
	q := records.Query{Where: []records.Condition{
		{FieldName: fieldStatus, Operator: records.OpExactMatch, Value: string(status)},
	}}
	return r.fetch(ctx, q, "fetch "+string(status)+" requests")
}

func (r *RecordsRequestRepository) fetch(ctx context.Context, q records.Query, action string) ([]models.Request, error) {
	recs, err := r.client.FetchRecords(ctx, r.table, q)
	if err != nil {
		return nil, fail(ctx, r.notifier, err, "%s", action)
	}
	reqs, err := decodeAll(r.table, recs, decodeRequest, requestRecord.model)
	if err != nil {
		return nil, fail(ctx, r.notifier, err, "%s", action)
	}
	return reqs, nil
}

func (r *RecordsRequestRepository) write(ctx context.Context, action string, call func() (records.Record, error)) (models.Request, error) {
	rec, err := call()
	if err != nil {
		return models.Request{}, fail(ctx, r.notifier, err, "%s", action)
	}
	dto, err := decodeRequest(r.table, rec)
	if err != nil {
		return models.Request{}, fail(ctx, r.notifier, err, "%s", action)
	}
	return dto.model(), nil
}
