package config

import (
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// stringToDurationHookFunc returns a decode hook converting strings and
// numbers to config.Duration.
//
//nolint:ireturn // required by mapstructure.DecodeHookFunc interface
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		_ reflect.Type,
		t reflect.Type,
		data any,
	) (any, error) {
		if t != reflect.TypeFor[Duration]() {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}

			return Duration(d), nil

		case int64:
			return Duration(time.Duration(v)), nil

		case float64:
			return Duration(time.Duration(v)), nil

		default:
			return data, nil
		}
	}
}
