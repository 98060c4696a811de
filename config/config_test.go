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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/facebook/rohc/rohc"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "engine.yaml", `
cid_type: small
max_contexts: 16
wlsb_window_width: 16
mode: O
enable_profiles: [RTP, UDP, IP, UNCOMPRESSED]
features: [TIME_BASED_REFRESHES, DUMP_PACKETS]
ir_refresh_interval: "200 + jitter * 4"
`)
	c, err := Load(p)
	require.NoError(t, err)

	cid, err := c.CIDTypeValue()
	require.NoError(t, err)
	require.Equal(t, rohc.CIDTypeSmall, cid)

	mode, err := c.ModeValue()
	require.NoError(t, err)
	require.Equal(t, rohc.ModeO, mode)

	fs, err := c.FeatureSetValue()
	require.NoError(t, err)
	require.True(t, fs.Has(rohc.FeatureTimeBasedRefreshes))
	require.True(t, fs.Has(rohc.FeatureDumpPackets))
	require.False(t, fs.Has(rohc.FeatureNoIPChecksums))

	interval, err := c.ResolveIRRefreshInterval(10)
	require.NoError(t, err)
	require.Equal(t, 240, interval)
}

func TestLoadRejectsBadWindowWidth(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "engine.yaml", `
max_contexts: 16
wlsb_window_width: 3
enable_profiles: [RTP]
`)
	_, err := Load(p)
	require.Error(t, err)
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "engine.yaml", `
max_contexts: 16
wlsb_window_width: 8
enable_profiles: [NOT-A-PROFILE]
`)
	_, err := Load(p)
	require.Error(t, err)
}

func TestLoadRejectsBadRefreshExpression(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "engine.yaml", `
max_contexts: 16
wlsb_window_width: 8
enable_profiles: [RTP]
ir_refresh_interval: "200 + unsupported_var"
`)
	_, err := Load(p)
	require.Error(t, err)
}

func TestLoadCompatFile(t *testing.T) {
	dir := t.TempDir()
	compatPath := writeFile(t, dir, "compat.ini", `
[profiles]
enable = RTP,UDP

[compat]
min_version = 1.6.2
`)
	p := writeFile(t, dir, "engine.yaml", `
max_contexts: 16
wlsb_window_width: 8
enable_profiles: [RTP]
compat_file: `+compatPath+`
`)
	c, err := Load(p)
	require.NoError(t, err)

	cp, err := c.LoadCompat()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"RTP", "UDP"}, cp.EnabledProfiles)

	ok, err := cp.SatisfiesCompat("1.6.5")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cp.SatisfiesCompat("1.5.0")
	require.NoError(t, err)
	require.False(t, ok)
}
