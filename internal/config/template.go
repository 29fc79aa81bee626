package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TicketTemplateConfig is the file-backed default ticket template. Explicit
// template updates through the API are persisted separately; this only seeds
// the template when nothing has been saved yet.
type TicketTemplateConfig struct {
	Header         string  `mapstructure:"header"`
	Footer         string  `mapstructure:"footer"`
	DefaultVATRate float64 `mapstructure:"defaultVatRate"`
}

func DefaultTicketTemplateConfig() TicketTemplateConfig {
	return TicketTemplateConfig{
		Header:         "*** Punto de venta ***",
		Footer:         "¡Gracias por su compra!",
		DefaultVATRate: 21.0,
	}
}

func validateTicketTemplateConfig(cfg TicketTemplateConfig) error {
	if cfg.DefaultVATRate < 0 || cfg.DefaultVATRate > 100 {
		return ErrInvalidTemplateConfig
	}
	return nil
}

// TemplateHolder exposes the current ticket template config and hot-reloads
// it when the backing file changes.
type TemplateHolder struct {
	current atomic.Value // holds TicketTemplateConfig
}

func NewTemplateHolder() (*TemplateHolder, error) {
	v := viper.New()

	v.SetConfigName("caja")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/caja")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CAJA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTicketTemplateConfig()
	v.SetDefault("ticket.header", defaults.Header)
	v.SetDefault("ticket.footer", defaults.Footer)
	v.SetDefault("ticket.defaultVatRate", defaults.DefaultVATRate)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg TicketTemplateConfig
	if err := v.UnmarshalKey("ticket", &cfg); err != nil {
		return nil, err
	}
	if err := validateTicketTemplateConfig(cfg); err != nil {
		return nil, err
	}

	holder := &TemplateHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TicketTemplateConfig
		if err := v.UnmarshalKey("ticket", &updated); err != nil {
			log.Printf("[ticket-config] reload failed: %v", err)
			return
		}
		if err := validateTicketTemplateConfig(updated); err != nil {
			log.Printf("[ticket-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[ticket-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *TemplateHolder) Get() TicketTemplateConfig {
	return h.current.Load().(TicketTemplateConfig)
}
