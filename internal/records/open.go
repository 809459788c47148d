package records

import (
	"fmt"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/config"
	"storeroom_backend/platform/logger"
	"storeroom_backend/platform/recordstore"
	"storeroom_backend/platform/recordstore/memstore"
)

// Tables holds one repository per entity.
type Tables struct {
	Store     recordstore.Store
	Customers *Repository[domain.Customer]
	Items     *Repository[domain.Item]
	Visits    *Repository[domain.Visit]
	Tasks     *Repository[domain.OperationalTask]
}

// Open connects the configured record store driver and builds the
// repositories over it. The memory driver keeps nothing across restarts.
func Open(cfg config.RecordStoreConfig, log *logger.Logger) (*Tables, error) {
	var store recordstore.Store
	switch cfg.GetRecordStoreDriver() {
	case "airtable":
		store = recordstore.NewClient(cfg, log)
	case "memory":
		log.Warn("using in-memory record store; data is lost on restart")
		store = memstore.New()
	default:
		return nil, fmt.Errorf("unsupported record store driver %q", cfg.GetRecordStoreDriver())
	}

	return &Tables{
		Store:     store,
		Customers: New(store, schema.Customers, "customer", log),
		Items:     New(store, schema.Items, "item", log),
		Visits:    New(store, schema.Visits, "visit", log),
		Tasks:     New(store, schema.Tasks, "task", log),
	}, nil
}
