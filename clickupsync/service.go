package clickupsync

import (
	"os"
	"strings"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("kundportal-clickup-sync")

const defaultPageDelay = 1 * time.Second

// Service wires the sync engine together: the store, the ClickUp client, the
// status registry, the technician directory and the commission policy. Both
// entry points (webhook ingress, batch importer) run through the same mapper
// so the business rules execute identically on every path.
type Service struct {
	store     caseStore
	api       taskAPI
	registry  *StatusRegistry
	directory TechnicianDirectory
	policy    CommissionPolicy

	privateListId  string
	businessListId string
	webhookSecret  string

	pageDelay time.Duration
	now       func() time.Time
	logger    *logrus.Logger
}

// NewService builds the production service from the environment. The status
// registry is loaded once by the caller (main) before requests are served.
func NewService(registry *StatusRegistry) (*Service, error) {
	client, err := newClickupClient(strings.TrimSpace(os.Getenv("CLICKUP_API_TOKEN")))
	if err != nil {
		return nil, err
	}

	return &Service{
		store:          newGormStore(),
		api:            client,
		registry:       registry,
		directory:      NewTechnicianDirectory(),
		policy:         CommissionPolicyFromEnv(),
		privateListId:  strings.TrimSpace(os.Getenv("CLICKUP_PRIVATE_LIST_ID")),
		businessListId: strings.TrimSpace(os.Getenv("CLICKUP_BUSINESS_LIST_ID")),
		webhookSecret:  strings.TrimSpace(os.Getenv("CLICKUP_WEBHOOK_SECRET")),
		pageDelay:      defaultPageDelay,
		now:            time.Now,
		logger:         config.GetLogger(),
	}, nil
}
