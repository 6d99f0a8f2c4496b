package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/groundlink-io/groundlink/internal/engine"
	"github.com/groundlink-io/groundlink/pkg/log"
	"github.com/groundlink-io/groundlink/pkg/options"
)

// Options aggregates every configurable concern of the groundlink binary.
type Options struct {
	Engine *options.EngineOptions `json:"engine" mapstructure:"engine"`
	Mqtt   *options.MqttOptions   `json:"mqtt" mapstructure:"mqtt"`
	Http   *options.HttpOptions   `json:"http" mapstructure:"http"`
	Log    *log.Options           `json:"log" mapstructure:"log"`
}

func NewOptions() *Options {
	return &Options{
		Engine: options.NewEngineOptions(),
		Mqtt:   options.NewMqttOptions(),
		Http:   options.NewHttpOptions(),
		Log:    log.NewOptions(),
	}
}

// AddFlags registers the flags of every option group on the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Engine.AddFlags(fs)
	o.Mqtt.AddFlags(fs)
	o.Http.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Validate aggregates the validation errors of every option group.
func (o *Options) Validate() error {
	errs := []error{}
	errs = append(errs, o.Engine.Validate()...)
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.Http.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}

// Config builds the engine configuration from the validated options.
func (o *Options) Config() (*engine.Config, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &engine.Config{
		Engine: o.Engine,
		Mqtt:   o.Mqtt,
		Http:   o.Http,
	}, nil
}
