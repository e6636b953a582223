package am

import (
	"strings"

	"github.com/spf13/viper"
)

// VersionPlaceholder is replaced in docs URLs by the runtime major version.
const VersionPlaceholder = "{version}"

const referenceRoot = "https://help.autodesk.com/cloudhelp/" + VersionPlaceholder + "/ENU/MOBU-PYTHON-API-REF/"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Module snapshot
	v.SetDefault("module.snapshot", "pyfbsdk.yaml")
	v.SetDefault("module.name", "")
	v.SetDefault("module.enum_base", "enum")

	// Vendor reference
	v.SetDefault("docs.enabled", true)
	v.SetDefault("docs.toc_url", referenceRoot+"toctree.json")
	v.SetDefault("docs.base_url", referenceRoot)
	v.SetDefault("docs.project_prefix", "FB")
	v.SetDefault("docs.module_page", "pyfbsdk")
	v.SetDefault("docs.timeout_seconds", 30)
	v.SetDefault("docs.requests_per_second", 8.0) // polite to the vendor CDN
	v.SetDefault("docs.concurrency", 4)

	// Page cache
	v.SetDefault("cache.backend", CacheBackendFS)
	v.SetDefault("cache.dir", "")

	// Output
	v.SetDefault("output.dir", "stubs")
	v.SetDefault("output.additions", "additions.py")
}

// ExpandURL substitutes version into a docs URL template.
func ExpandURL(template, version string) string {
	return strings.ReplaceAll(template, VersionPlaceholder, version)
}

// ForVersion returns a copy of d with every URL expanded for version.
func (d DocsConfig) ForVersion(version string) DocsConfig {
	d.TocURL = ExpandURL(d.TocURL, version)
	d.BaseURL = ExpandURL(d.BaseURL, version)
	d.ModulePage = ExpandURL(d.ModulePage, version)
	return d
}
