// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

// Config is a codec configuration: a profile/entrypoint pair validated by
// the driver. Contexts are created from a Config.
type Config struct {
	display    *Display
	id         ConfigID
	profile    Profile
	entrypoint Entrypoint
}

// ID returns the native configuration id.
func (c *Config) ID() ConfigID {
	return c.id
}

// Profile returns the profile this configuration was created with.
func (c *Config) Profile() Profile {
	return c.profile
}

// Entrypoint returns the entrypoint this configuration was created with.
func (c *Config) Entrypoint() Entrypoint {
	return c.entrypoint
}

// Destroy releases the configuration.
// Destroy is idempotent; multiple calls are safe.
func (c *Config) Destroy() error {
	if c.id == invalidID {
		return nil
	}
	st := c.display.driver.DestroyConfig(c.display.handle, c.id)
	c.id = invalidID
	return checkStatus("vaDestroyConfig", st)
}
