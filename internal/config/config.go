package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/swaplock/swapd/internal/core/domain"
)

type Config struct {
	BaseDirectory string
	LogLevel      int
	DbType        string
	SchedulerType string

	HomeChainId         uint64
	SafetyDepositAsset  string
	SafetyDepositAmount uint64
	Resolvers           []string

	SourceDurations      domain.PhaseDurations
	DestinationDurations domain.PhaseDurations
}

var (
	Datadir             = "DATADIR"
	LogLevel            = "LOG_LEVEL"
	DbType              = "DB_TYPE"
	SchedulerType       = "SCHEDULER_TYPE"
	HomeChainId         = "HOME_CHAIN_ID"
	SafetyDepositAsset  = "SAFETY_DEPOSIT_ASSET"
	SafetyDepositAmount = "SAFETY_DEPOSIT_AMOUNT"
	Resolvers           = "RESOLVERS"

	SrcFinalityDuration         = "SRC_FINALITY_DURATION"
	SrcWithdrawalDuration       = "SRC_WITHDRAWAL_DURATION"
	SrcPublicWithdrawalDuration = "SRC_PUBLIC_WITHDRAWAL_DURATION"
	SrcCancellationDuration     = "SRC_CANCELLATION_DURATION"
	DstFinalityDuration         = "DST_FINALITY_DURATION"
	DstWithdrawalDuration       = "DST_WITHDRAWAL_DURATION"
	DstPublicWithdrawalDuration = "DST_PUBLIC_WITHDRAWAL_DURATION"

	defaultDatadir             = appDataDir("swapd")
	defaultLogLevel            = 4 // info
	defaultDbType              = "badger"
	defaultSchedulerType       = "gocron"
	defaultSafetyDepositAmount = 1000
	defaultSafetyDepositAsset  = "native"

	defaultFinality            = 0
	defaultSrcWithdrawal       = 120
	defaultSrcPublicWithdrawal = 300
	defaultSrcCancellation     = 300
	defaultDstWithdrawal       = 120
	defaultDstPublicWithdrawal = 300
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("SWAPD")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(SchedulerType, defaultSchedulerType)
	viper.SetDefault(SafetyDepositAmount, defaultSafetyDepositAmount)
	viper.SetDefault(SafetyDepositAsset, defaultSafetyDepositAsset)
	viper.SetDefault(SrcFinalityDuration, defaultFinality)
	viper.SetDefault(DstFinalityDuration, defaultFinality)
	viper.SetDefault(SrcWithdrawalDuration, defaultSrcWithdrawal)
	viper.SetDefault(SrcPublicWithdrawalDuration, defaultSrcPublicWithdrawal)
	viper.SetDefault(SrcCancellationDuration, defaultSrcCancellation)
	viper.SetDefault(DstWithdrawalDuration, defaultDstWithdrawal)
	viper.SetDefault(DstPublicWithdrawalDuration, defaultDstPublicWithdrawal)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	cfg := &Config{
		BaseDirectory:       viper.GetString(Datadir),
		LogLevel:            viper.GetInt(LogLevel),
		DbType:              viper.GetString(DbType),
		SchedulerType:       viper.GetString(SchedulerType),
		HomeChainId:         viper.GetUint64(HomeChainId),
		SafetyDepositAsset:  viper.GetString(SafetyDepositAsset),
		SafetyDepositAmount: viper.GetUint64(SafetyDepositAmount),
		Resolvers:           viper.GetStringSlice(Resolvers),
		SourceDurations: domain.PhaseDurations{
			FinalityLock:     viper.GetInt64(SrcFinalityDuration),
			Withdrawal:       viper.GetInt64(SrcWithdrawalDuration),
			PublicWithdrawal: viper.GetInt64(SrcPublicWithdrawalDuration),
			Cancellation:     viper.GetInt64(SrcCancellationDuration),
		},
		DestinationDurations: domain.PhaseDurations{
			FinalityLock:     viper.GetInt64(DstFinalityDuration),
			Withdrawal:       viper.GetInt64(DstWithdrawalDuration),
			PublicWithdrawal: viper.GetInt64(DstPublicWithdrawalDuration),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SafetyDepositAmount == 0 {
		return fmt.Errorf("safety deposit amount must be greater than zero")
	}
	if len(c.SafetyDepositAsset) <= 0 {
		return fmt.Errorf("missing safety deposit asset")
	}
	if len(c.Resolvers) <= 0 {
		return fmt.Errorf("missing resolver allow-list")
	}
	if c.SourceDurations.FinalityLock < 0 || c.DestinationDurations.FinalityLock < 0 {
		return fmt.Errorf("finality lock durations must not be negative")
	}
	if c.SourceDurations.Withdrawal <= 0 ||
		c.SourceDurations.PublicWithdrawal <= 0 ||
		c.SourceDurations.Cancellation <= 0 {
		return fmt.Errorf("source phase durations must be greater than zero")
	}
	if c.DestinationDurations.Withdrawal <= 0 ||
		c.DestinationDurations.PublicWithdrawal <= 0 {
		return fmt.Errorf("destination phase durations must be greater than zero")
	}
	return nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, "."+appName)
}
