package repo

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/records"
)

// Remote field names of the record tables.
const (
	fieldName        = "Name"
	fieldTags        = "Tags"
	fieldOwner       = "Owner"
	fieldCategory    = "category"
	fieldQuantity    = "quantity"
	fieldMinStock    = "min_stock"
	fieldLocation    = "location"
	fieldUnit        = "unit"
	fieldLastUpdated = "last_updated"

	fieldItemID      = "item_id"
	fieldRequester   = "requester"
	fieldDepartment  = "department"
	fieldNotes       = "notes"
	fieldStatus      = "status"
	fieldRequestDate = "request_date"

	fieldIcon      = "icon"
	fieldItemCount = "item_count"
)

type inventoryRecord struct {
	ID          int       `mapstructure:"Id"`
	Name        string    `mapstructure:"Name"`
	Tags        string    `mapstructure:"Tags"`
	Owner       string    `mapstructure:"Owner"`
	Category    string    `mapstructure:"category"`
	Quantity    int       `mapstructure:"quantity"`
	MinStock    int       `mapstructure:"min_stock"`
	Location    string    `mapstructure:"location"`
	Unit        string    `mapstructure:"unit"`
	LastUpdated time.Time `mapstructure:"last_updated"`
}

type requestRecord struct {
	ID          int       `mapstructure:"Id"`
	ItemID      int       `mapstructure:"item_id"`
	Quantity    int       `mapstructure:"quantity"`
	Requester   string    `mapstructure:"requester"`
	Department  string    `mapstructure:"department"`
	Notes       string    `mapstructure:"notes"`
	Status      string    `mapstructure:"status"`
	RequestDate time.Time `mapstructure:"request_date"`
}

type categoryRecord struct {
	ID        int    `mapstructure:"Id"`
	Name      string `mapstructure:"Name"`
	Icon      string `mapstructure:"icon"`
	ItemCount int    `mapstructure:"item_count"`
}

var (
	inventoryInts = []string{records.IDField, fieldQuantity, fieldMinStock}
	requestInts   = []string{records.IDField, fieldItemID, fieldQuantity}
	categoryInts  = []string{records.IDField, fieldItemCount}
)

// timeLayouts are tried in order when a record carries a timestamp as text.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", s)
}

// decodeRecord maps a remote record onto a typed DTO. Integer fields are
// coerced first so the platform may send them as numbers or numeric text;
// anything else that does not fit the DTO is reported as a ValidationError.
func decodeRecord[T any](table string, rec records.Record, ints []string, required ...string) (T, error) {
	var out T
	var problems []records.FieldError

	for _, key := range required {
		if v, ok := rec[key]; !ok || v == nil {
			problems = append(problems, records.FieldError{Field: key, Message: "is required"})
		}
	}

	input := rec.Clone()
	for _, key := range ints {
		v, ok := input[key]
		if !ok || v == nil {
			continue
		}
		n, err := records.ToInt(v)
		if err != nil {
			problems = append(problems, records.FieldError{Field: key, Message: err.Error()})
			continue
		}
		input[key] = n
	}
	if len(problems) > 0 {
		return out, &records.ValidationError{Table: table, Fields: problems}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToTimeHook,
		Result:     &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(map[string]any(input)); err != nil {
		return out, &records.ValidationError{
			Table:  table,
			Fields: []records.FieldError{{Field: "record", Message: err.Error()}},
		}
	}
	return out, nil
}

func decodeAll[T any, M any](table string, recs []records.Record, decode func(string, records.Record) (T, error), convert func(T) M) ([]M, error) {
	out := make([]M, 0, len(recs))
	for _, rec := range recs {
		dto, err := decode(table, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, convert(dto))
	}
	return out, nil
}

func decodeInventory(table string, rec records.Record) (inventoryRecord, error) {
	return decodeRecord[inventoryRecord](table, rec, inventoryInts, records.IDField, fieldName)
}

func decodeRequest(table string, rec records.Record) (requestRecord, error) {
	r, err := decodeRecord[requestRecord](table, rec, requestInts, records.IDField, fieldItemID)
	if err != nil {
		return r, err
	}
	if !models.RequestStatus(r.Status).Valid() {
		return r, &records.ValidationError{
			Table:  table,
			Fields: []records.FieldError{{Field: fieldStatus, Message: fmt.Sprintf("unknown status %q", r.Status)}},
		}
	}
	return r, nil
}

func decodeCategory(table string, rec records.Record) (categoryRecord, error) {
	return decodeRecord[categoryRecord](table, rec, categoryInts, records.IDField, fieldName)
}

func (r inventoryRecord) model() models.InventoryItem {
	return models.InventoryItem{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Quantity:    r.Quantity,
		MinStock:    r.MinStock,
		Unit:        r.Unit,
		Location:    r.Location,
		LastUpdated: r.LastUpdated,
		Tags:        r.Tags,
		Owner:       r.Owner,
	}
}

func (r requestRecord) model() models.Request {
	return models.Request{
		ID:          r.ID,
		ItemID:      r.ItemID,
		Quantity:    r.Quantity,
		Requester:   r.Requester,
		Department:  r.Department,
		Notes:       r.Notes,
		Status:      models.RequestStatus(r.Status),
		RequestDate: r.RequestDate,
	}
}

func (r categoryRecord) model() models.Category {
	return models.Category{ID: r.ID, Name: r.Name, Icon: r.Icon, ItemCount: r.ItemCount}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
