package config

import "errors"

var ErrInvalidTemplateConfig = errors.New("invalid_template_config")
