package reposync

import (
	"fmt"
	"time"
)

// Config drives a synchronization run.
type Config struct {
	// Org is the GitHub organization to mirror.
	Org string
	// Host is the SSH host used in clone URLs.
	Host string
	// Dir is the directory holding the checkouts.
	Dir string
	// Branch is checked out before updating an existing checkout.
	Branch string
	// CacheFile keeps the repository list between runs.
	CacheFile string
	CacheTTL  time.Duration
	// Refresh ignores a fresh cache.
	Refresh bool
	// Pages of PerPage repositories are requested from the API.
	Pages   int
	PerPage int
	// Ignore lists retired repositories which are never synchronized.
	Ignore []string
}

// DefaultConfig mirrors the YaST organization into the working directory.
func DefaultConfig() Config {
	return Config{
		Org:       "yast",
		Host:      "github.com",
		Dir:       ".",
		Branch:    "master",
		CacheFile: ".yast_repos_cache.json",
		CacheTTL:  14 * 24 * time.Hour,
		Pages:     2,
		PerPage:   100,
		Ignore:    append([]string(nil), DefaultIgnore...),
	}
}

// CloneURL is the SSH URL of repository name.
func (c Config) CloneURL(name string) string {
	return fmt.Sprintf("git@%s:%s/%s.git", c.Host, c.Org, name)
}

// DefaultIgnore are obsolete YaST repositories.
var DefaultIgnore = []string{
	"yast-backup",
	"yast-bluetooth",
	"yast-boot-server",
	"yast-cd-creator",
	"yast-certify",
	"yast-cim",
	"yast-databackup",
	"yast-dbus-client",
	"yast-debugger",
	"yast-dialup",
	"yast-dirinstall",
	"yast-fax-server",
	"yast-fingerprint-reader",
	"yast-heartbeat",
	"yast-hpc",
	"yast-ipsec",
	"yast-irda",
	"yast-liby2util",
	"yast-meta",
	"yast-mouse",
	"yast-mysql-server",
	"yast-ntsutils",
	"yast-oem-installation",
	"yast-online-update-test",
	"yast-openschool",
	"yast-openteam",
	"yast-openwsman-yast",
	"yast-packagemanager",
	"yast-packagemanager-test",
	"yast-phone-services",
	"yast-power-management",
	"yast-profile-manager",
	"yast-registration",
	"yast-repair",
	"yast-restore",
	"yast-squidguard",
	"yast-sshd",
	"yast-sudo",
	"yast-support",
	"yast-system-profile",
	"yast-system-update",
	"yast-ui-qt-tests",
	"yast-uml",
	"yast-you-server",
	"yast-yxmlconv",
	"yast-y2pmsh",
	"yast-y2r-tools",
}
