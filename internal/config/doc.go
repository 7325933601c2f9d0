// Package config loads and merges krokidoc configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (KROKIDOC_SERVER_URL, KROKIDOC_HTTP_METHOD, etc.)
//  3. Config file ($XDG_CONFIG_HOME/krokidoc/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key. [Config.TransportConfig],
// [Config.RenderOptions] and [Config.StoreConfig] translate the file format
// into the typed settings of the engine packages.
package config
