package main

import (
	"strings"
	"sync"

	"github.com/yisikawa/LyricSyncAI/internal/apiclient"
	"github.com/yisikawa/LyricSyncAI/internal/config"
)

type commandContext struct {
	addressFlag *string
	configFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(addressFlag, configFlag *string) *commandContext {
	return &commandContext{
		addressFlag: addressFlag,
		configFlag:  configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiAddress resolves the daemon base URL: the --address flag wins,
// then the configured base URL, then the configured bind address.
func (c *commandContext) apiAddress() string {
	if c.addressFlag != nil {
		if address := strings.TrimSpace(*c.addressFlag); address != "" {
			return address
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return "http://" + config.Default().Paths.APIBind
	}
	if base := strings.TrimSpace(cfg.Paths.BaseURL); base != "" {
		return base
	}
	return "http://" + cfg.Paths.APIBind
}

func (c *commandContext) client() *apiclient.Client {
	return apiclient.New(c.apiAddress())
}
