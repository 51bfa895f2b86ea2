package stripe

import (
	"encoding/json"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Event types this service reacts to.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
)

// Products carried in payment metadata.
const (
	ProductModuleLicense     = "module-license"
	ProductCollectionType    = "collection-type"
	ProductCollectionUpgrade = "collection-upgrade"
)

// Event is the decoded webhook notification. Only the fields this
// service dispatches on are modeled; everything else in the provider
// payload is ignored.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

type EventObject struct {
	ID       string   `json:"id"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Metadata Metadata `json:"metadata"`
}

// Metadata is the strongly typed view of the provider's free-form
// metadata map. Which fields are required depends on the product; the
// per-product rules live in Validate.
type Metadata struct {
	Product      string `json:"product"`
	ModuleID     string `json:"module_id"`
	Suffix       string `json:"suffix"`
	DOI          string `json:"doi"`
	Description  string `json:"description"`
	CollectionID string `json:"collectionId"`
	WorkspaceID  string `json:"workspaceId"`
	// ID names the purchased item: the license for module purchases,
	// the target collection type for upgrades.
	ID string `json:"id"`
}

// ParseEvent decodes a verified webhook payload.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("event payload missing id or type")
	}
	return &event, nil
}

// Validate enforces the metadata fields each product needs before any
// handler runs. Unknown products fail here, not deep inside a handler.
func (m Metadata) Validate() error {
	switch m.Product {
	case ProductModuleLicense:
		return validation.ValidateStruct(&m,
			validation.Field(&m.ModuleID, validation.Required, is.Digit),
			validation.Field(&m.Suffix, validation.Required),
		)
	case ProductCollectionType:
		return validation.ValidateStruct(&m,
			validation.Field(&m.Suffix, validation.Required),
			validation.Field(&m.CollectionID, validation.Required, is.Digit),
			validation.Field(&m.WorkspaceID, validation.Required, is.Digit),
		)
	case ProductCollectionUpgrade:
		return validation.ValidateStruct(&m,
			validation.Field(&m.CollectionID, validation.Required, is.Digit),
			validation.Field(&m.ID, validation.Required, is.Digit),
		)
	default:
		return fmt.Errorf("unknown product %q", m.Product)
	}
}

// ModuleIDInt64 parses the target module identifier.
func (m Metadata) ModuleIDInt64() (int64, error) {
	return strconv.ParseInt(m.ModuleID, 10, 64)
}

// CollectionIDInt64 parses the target collection identifier.
func (m Metadata) CollectionIDInt64() (int64, error) {
	return strconv.ParseInt(m.CollectionID, 10, 64)
}

// WorkspaceIDInt64 parses the purchasing workspace identifier.
func (m Metadata) WorkspaceIDInt64() (int64, error) {
	return strconv.ParseInt(m.WorkspaceID, 10, 64)
}

// TierIDInt64 parses the collection-type identifier carried in ID for
// upgrade purchases.
func (m Metadata) TierIDInt64() (int64, error) {
	return strconv.ParseInt(m.ID, 10, 64)
}
