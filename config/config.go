/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads engine construction options: CID type, max
// contexts, enabled profiles, W-LSB window width and feature flags, from
// a YAML file, with an optional legacy ini-based profile-enable list for
// interop with pre-1.7.x deployments.
package config

import (
	"fmt"
	"os"

	"github.com/Knetic/govaluate"
	"github.com/go-ini/ini"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/facebook/rohc/rohc"
)

// Config is the on-disk, pre-evaluation representation of engine
// construction options. Field names are lower-cased by the yaml tags to
// match the teacher's convention of lower-snake keys in config files.
type Config struct {
	CIDType           string   `yaml:"cid_type"`
	MaxContexts       int      `yaml:"max_contexts"`
	WindowWidth       int      `yaml:"wlsb_window_width"`
	Mode              string   `yaml:"mode"`
	Profiles          []string `yaml:"enable_profiles"`
	Features          []string `yaml:"features"`
	IRRefreshInterval string   `yaml:"ir_refresh_interval"`

	// CompatFile, if set, points at an ini file carrying a legacy
	// profile-enable list and a COMPAT_1_6_x version gate, read in
	// addition to the YAML fields above.
	CompatFile string `yaml:"compat_file"`

	refreshExpr *govaluate.EvaluableExpression
}

// profileNames is the set of profile names config recognizes in
// enable_profiles; kept as names only (not profile.ID) so this package
// doesn't need to import profile's decision logic.
var profileNames = map[string]bool{
	"RTP":          true,
	"UDP":          true,
	"IP":           true,
	"UNCOMPRESSED": true,
	"UDP-LITE-1":   true,
	"UDP-LITE-2":   true,
}

// Load reads and parses a YAML config file at path, then evaluates and
// validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := c.EvalAndValidate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// EvalAndValidate makes sure the config is well-formed and compiles the
// IR refresh expression, if any, for later evaluation.
func (c *Config) EvalAndValidate() error {
	if c.MaxContexts <= 0 {
		return fmt.Errorf("bad config: 'max_contexts' must be > 0")
	}
	if !isPowerOfTwoInRange(c.WindowWidth) {
		return fmt.Errorf("bad config: 'wlsb_window_width' must be a power of two in 1..64, got %d", c.WindowWidth)
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("bad config: 'enable_profiles' must not be empty")
	}
	for _, p := range c.Profiles {
		if !profileNames[p] {
			return fmt.Errorf("bad config: unknown profile %q", p)
		}
	}
	switch c.Mode {
	case "", "U", "O", "R":
	default:
		return fmt.Errorf("bad config: unknown mode %q", c.Mode)
	}
	if c.IRRefreshInterval != "" {
		expr, err := prepareRefreshExpression(c.IRRefreshInterval)
		if err != nil {
			return fmt.Errorf("evaluating ir_refresh_interval: %w", err)
		}
		c.refreshExpr = expr
	}
	return nil
}

// ResolveIRRefreshInterval evaluates the configured expression (if any)
// against a jitter sample and returns a packet-count interval. A plain
// integer literal with no variables evaluates to itself regardless of
// jitter.
func (c *Config) ResolveIRRefreshInterval(jitter float64) (int, error) {
	if c.refreshExpr == nil {
		return 0, nil
	}
	res, err := c.refreshExpr.Evaluate(map[string]interface{}{"jitter": jitter})
	if err != nil {
		return 0, fmt.Errorf("evaluating ir_refresh_interval: %w", err)
	}
	f, ok := res.(float64)
	if !ok {
		return 0, fmt.Errorf("ir_refresh_interval did not evaluate to a number")
	}
	return int(f), nil
}

func prepareRefreshExpression(exprStr string) (*govaluate.EvaluableExpression, error) {
	expr, err := govaluate.NewEvaluableExpression(exprStr)
	if err != nil {
		return nil, err
	}
	for _, v := range expr.Vars() {
		if v != "jitter" {
			return nil, fmt.Errorf("unsupported variable %q", v)
		}
	}
	return expr, nil
}

func isPowerOfTwoInRange(w int) bool {
	if w < 1 || w > 64 {
		return false
	}
	return w&(w-1) == 0
}

// CIDTypeValue maps the config's string CID type onto rohc.CIDType.
func (c *Config) CIDTypeValue() (rohc.CIDType, error) {
	switch c.CIDType {
	case "", "small":
		return rohc.CIDTypeSmall, nil
	case "large":
		return rohc.CIDTypeLarge, nil
	default:
		return 0, fmt.Errorf("bad config: unknown cid_type %q", c.CIDType)
	}
}

// ModeValue maps the config's string mode onto rohc.Mode.
func (c *Config) ModeValue() (rohc.Mode, error) {
	switch c.Mode {
	case "", "U":
		return rohc.ModeU, nil
	case "O":
		return rohc.ModeO, nil
	case "R":
		return rohc.ModeR, nil
	default:
		return 0, fmt.Errorf("bad config: unknown mode %q", c.Mode)
	}
}

// FeatureSetValue maps the config's string feature list onto a
// rohc.FeatureSet bitset.
func (c *Config) FeatureSetValue() (rohc.FeatureSet, error) {
	var fs rohc.FeatureSet
	for _, name := range c.Features {
		switch name {
		case "TIME_BASED_REFRESHES":
			fs = fs.With(rohc.FeatureTimeBasedRefreshes)
		case "NO_IP_CHECKSUMS":
			fs = fs.With(rohc.FeatureNoIPChecksums)
		case "COMPAT_1_6_x":
			fs = fs.With(rohc.FeatureCompat16x)
		case "DUMP_PACKETS":
			fs = fs.With(rohc.FeatureDumpPackets)
		default:
			return 0, fmt.Errorf("bad config: unknown feature %q", name)
		}
	}
	return fs, nil
}

// CompatProfile is the legacy, ini-backed profile-enable list read from
// CompatFile, used for interop with pre-1.7.x deployments that predate
// the YAML config format.
type CompatProfile struct {
	EnabledProfiles []string
	// MinVersion is the lowest COMPAT_1_6_x peer version this process
	// will negotiate down to; below it, FeatureCompat16x is refused.
	MinVersion *version.Version
}

// LoadCompat reads the legacy ini-based compat file named by
// c.CompatFile, if set. Returns nil, nil when CompatFile is empty.
func (c *Config) LoadCompat() (*CompatProfile, error) {
	if c.CompatFile == "" {
		return nil, nil
	}
	f, err := ini.Load(c.CompatFile)
	if err != nil {
		return nil, fmt.Errorf("reading compat file %q: %w", c.CompatFile, err)
	}
	sec := f.Section("profiles")
	cp := &CompatProfile{
		EnabledProfiles: sec.Key("enable").Strings(","),
	}
	if v := f.Section("compat").Key("min_version").String(); v != "" {
		mv, err := version.NewVersion(v)
		if err != nil {
			return nil, fmt.Errorf("parsing compat min_version %q: %w", v, err)
		}
		cp.MinVersion = mv
	}
	return cp, nil
}

// SatisfiesCompat reports whether peerVersion is new enough to
// negotiate FeatureCompat16x per this compat profile's MinVersion.
func (cp *CompatProfile) SatisfiesCompat(peerVersion string) (bool, error) {
	if cp == nil || cp.MinVersion == nil {
		return true, nil
	}
	pv, err := version.NewVersion(peerVersion)
	if err != nil {
		return false, fmt.Errorf("parsing peer version %q: %w", peerVersion, err)
	}
	return pv.Compare(cp.MinVersion) >= 0, nil
}
