package system

import (
	"log/slog"

	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/system"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	"github.com/frahmantamala/timekeeper/pkg/logger"
)

// Service owns the persisted log switches and keeps the live logger in
// step with them.
type Service struct {
	db     *persistence.Database
	roles  *auth.RolesChecker
	sw     *logger.Switch
	logger *slog.Logger
}

func NewService(db *persistence.Database, roles *auth.RolesChecker, sw *logger.Switch, lg *slog.Logger) *Service {
	return &Service{db: db, roles: roles, sw: sw, logger: lg}
}

func toSwitch(s datamodel.LogSettings) logger.Settings {
	return logger.Settings{Audit: s.Audit, Warn: s.Warn, Debug: s.Debug, Trace: s.Trace}
}

func fromSwitch(s logger.Settings) datamodel.LogSettings {
	return datamodel.LogSettings{Audit: s.Audit, Warn: s.Warn, Debug: s.Debug, Trace: s.Trace}
}

func (s *Service) stored() (datamodel.SystemConfiguration, bool) {
	all := s.db.SystemConfigurations().GetAll()
	if len(all) == 0 {
		return datamodel.SystemConfiguration{}, false
	}
	return all[0], true
}

// GetLogSettings returns the persisted settings, or the live ones when
// nothing has been saved yet.
func (s *Service) GetLogSettings() datamodel.LogSettings {
	if cfg, ok := s.stored(); ok {
		return cfg.LogSettings
	}
	return fromSwitch(s.sw.Get())
}

func (s *Service) SetLogSettings(cu user.CurrentUser, settings datamodel.LogSettings) error {
	if err := s.roles.CheckAllowed(cu, auth.OpChangeLogSettings); err != nil {
		return err
	}

	err := s.db.SystemConfigurations().ActOn(func(configs *persistence.ChangeTrackingSet[datamodel.SystemConfiguration]) error {
		existing := configs.ToList()
		if len(existing) == 0 {
			cfg, err := datamodel.NewSystemConfiguration(datamodel.ConfigurationID(configs.NextIndex()), settings)
			if err != nil {
				return err
			}
			configs.Add(cfg)
			return nil
		}
		for _, extra := range existing[1:] {
			configs.Remove(extra)
		}
		updated := existing[0]
		updated.LogSettings = settings
		configs.Replace(existing[0], updated)
		return nil
	})
	if err != nil {
		return err
	}

	s.sw.Set(toSwitch(settings))
	logger.Audit(s.logger, "log settings changed",
		"by", cu.Name,
		"audit", settings.Audit,
		"warn", settings.Warn,
		"debug", settings.Debug,
		"trace", settings.Trace)
	return nil
}

// ApplyPersisted pushes saved settings into the live logger. It reports
// false when there is nothing saved.
func (s *Service) ApplyPersisted() bool {
	cfg, ok := s.stored()
	if !ok {
		return false
	}
	s.sw.Set(toSwitch(cfg.LogSettings))
	return true
}
