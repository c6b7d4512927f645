package providers

import (
	"errors"
	"pcsd/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}
	if c.conf.Graph.Enabled && (c.conf.Graph.Width < 0 || c.conf.Graph.Height < 0) {
		return errors.New("graph: width and height must not be negative")
	}
	if c.conf.Acquisition.URL != "" && (c.conf.Acquisition.Timeout < 0 || c.conf.Acquisition.Interval < 0) {
		return errors.New("acquisition: timeout and interval must not be negative")
	}
	if c.conf.Archive.SaveInterval > 0 && c.conf.Archive.FilePath == "" {
		return errors.New("archive: filePath is required when saveInterval is set")
	}
	return nil
}
