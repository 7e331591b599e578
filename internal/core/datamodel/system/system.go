package system

import (
	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
)

const SystemConfigDirectory = "systemconfig"

type LogSettings struct {
	Audit bool
	Warn  bool
	Debug bool
	Trace bool
}

type ConfigurationID int64

// SystemConfiguration is kept as a single row; updates replace it.
type SystemConfiguration struct {
	ID          ConfigurationID
	LogSettings LogSettings
}

func NewSystemConfiguration(id ConfigurationID, settings LogSettings) (SystemConfiguration, error) {
	if id < 1 {
		return SystemConfiguration{}, errors.NewValidationFieldError("system_configuration_id", "system_configuration_id must be at least 1", errors.ErrCodeInvalidID)
	}
	return SystemConfiguration{ID: id, LogSettings: settings}, nil
}

func (c SystemConfiguration) Index() int64 {
	return int64(c.ID)
}

func (c SystemConfiguration) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("id", int64(c.ID)).
		AddBool("a", c.LogSettings.Audit).
		AddBool("w", c.LogSettings.Warn).
		AddBool("d", c.LogSettings.Debug).
		AddBool("t", c.LogSettings.Trace)
}

func DeserializeSystemConfiguration(text string) (SystemConfiguration, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return SystemConfiguration{}, err
	}
	id, err := r.Int("id")
	if err != nil {
		return SystemConfiguration{}, err
	}
	var flags [4]bool
	for i, key := range []string{"a", "w", "d", "t"} {
		if flags[i], err = r.Bool(key); err != nil {
			return SystemConfiguration{}, err
		}
	}
	return NewSystemConfiguration(ConfigurationID(id), LogSettings{
		Audit: flags[0],
		Warn:  flags[1],
		Debug: flags[2],
		Trace: flags[3],
	})
}
