package appconfig

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/swaplock/swapd/internal/core/application"
	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/swaplock/swapd/internal/core/ports"
	"github.com/swaplock/swapd/internal/infrastructure/db"
	inmemoryledger "github.com/swaplock/swapd/internal/infrastructure/ledger/inmemory"
	staticregistry "github.com/swaplock/swapd/internal/infrastructure/registry/static"
	timescheduler "github.com/swaplock/swapd/internal/infrastructure/scheduler/gocron"
)

var (
	supportedDbs = supportedType{
		"badger":   {},
		"inmemory": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
)

type Config struct {
	DbType        string
	DbDir         string
	SchedulerType string

	HomeChainId         uint64
	SafetyDepositAsset  string
	SafetyDepositAmount uint64
	Resolvers           []string

	SourceDurations      domain.PhaseDurations
	DestinationDurations domain.PhaseDurations

	repo      ports.RepoManager
	svc       application.Service
	ledger    ports.AssetLedger
	registry  ports.ResolverRegistry
	scheduler ports.SchedulerService
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.ledgerService(); err != nil {
		return err
	}
	if err := c.registryService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.appService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) AppService() application.Service {
	return c.svc
}

func (c *Config) repoManager() error {
	var dbDir string
	if c.DbType == "badger" {
		dbDir = c.DbDir
	}
	logger := log.New()
	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType: c.DbType,
		DataStoreType:  c.DbType,

		EventStoreConfig: []interface{}{dbDir, logger},
		DataStoreConfig:  []interface{}{dbDir, logger},
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerService() error {
	c.ledger = inmemoryledger.NewAssetLedger()
	return nil
}

func (c *Config) registryService() error {
	svc, err := staticregistry.NewResolverRegistry(c.Resolvers)
	if err != nil {
		return err
	}

	c.registry = svc
	return nil
}

func (c *Config) schedulerService() error {
	switch c.SchedulerType {
	case "gocron":
		c.scheduler = timescheduler.NewScheduler()
	default:
		return fmt.Errorf("unknown scheduler type")
	}
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		application.Config{
			HomeChainId:          c.HomeChainId,
			SafetyDepositAsset:   c.SafetyDepositAsset,
			SafetyDepositAmount:  c.SafetyDepositAmount,
			SourceDurations:      c.SourceDurations,
			DestinationDurations: c.DestinationDurations,
		},
		c.ledger, c.registry, c.repo, c.scheduler,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
