// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cfg is a hand-written analogue of gcsfuse's generated config
// package: a single Config struct bound to pflag/viper, covering the
// mount's S3 and filesystem knobs rather than being produced by a params
// generator.
package cfg

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of knobs a mount invocation accepts, whether from
// flags, a YAML file bound through viper, or defaults.
type Config struct {
	Bucket       string `mapstructure:"bucket" yaml:"bucket"`
	Prefix       string `mapstructure:"prefix" yaml:"prefix"`
	Region       string `mapstructure:"region" yaml:"region"`
	Endpoint     string `mapstructure:"endpoint" yaml:"endpoint"`
	StorageClass string `mapstructure:"storage-class" yaml:"storage-class"`

	FileSystem FileSystemConfig `mapstructure:"file-system" yaml:"file-system"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`

	ConnectionPoolSize int  `mapstructure:"connection-pool-size" yaml:"connection-pool-size"`
	Foreground         bool `mapstructure:"foreground" yaml:"foreground"`
}

// FileSystemConfig carries the §6.3 mount-point knobs.
type FileSystemConfig struct {
	FileMode Octal `mapstructure:"file-mode" yaml:"file-mode"`
	DirMode  Octal `mapstructure:"dir-mode" yaml:"dir-mode"`
	Uid      int   `mapstructure:"uid" yaml:"uid"`
	Gid      int   `mapstructure:"gid" yaml:"gid"`
}

// CacheConfig carries the §6.3 cache-policy knobs.
type CacheConfig struct {
	DirCacheTTL       time.Duration `mapstructure:"dir-cache-ttl" yaml:"dir-cache-ttl"`
	FileCacheTTL      time.Duration `mapstructure:"file-cache-ttl" yaml:"file-cache-ttl"`
	CheckEmptyFiles   bool          `mapstructure:"check-empty-files" yaml:"check-empty-files"`
	ForceHeadOnLookup bool          `mapstructure:"force-head-on-lookup" yaml:"force-head-on-lookup"`
}

// LoggingConfig carries the ambient logging knobs described in §D.3.
type LoggingConfig struct {
	Severity   LogSeverity `mapstructure:"severity" yaml:"severity"`
	FilePath   string      `mapstructure:"file" yaml:"file"`
	JSON       bool        `mapstructure:"json" yaml:"json"`
	MaxSizeMB  int         `mapstructure:"max-size-mb" yaml:"max-size-mb"`
	MaxBackups int         `mapstructure:"max-backups" yaml:"max-backups"`
	MaxAgeDays int         `mapstructure:"max-age-days" yaml:"max-age-days"`
}

// defaultFileMode and defaultDirMode select the compiled-in default when a
// mode flag is left at its -1 sentinel, per §6.3.
const (
	defaultFileMode Octal = 0644
	defaultDirMode  Octal = 0755
)

// BindFlags registers every mount flag on flagSet and binds it into viper
// under the dotted key the struct tags above expect, following
// cfg/config.go's existing BindFlags(flagSet *pflag.FlagSet) error shape.
func BindFlags(flagSet *pflag.FlagSet) error {
	bind := func(key, flag string) error {
		return viper.BindPFlag(key, flagSet.Lookup(flag))
	}

	flagSet.String("bucket", "", "Name of the S3-style bucket to mount.")
	if err := bind("bucket", "bucket"); err != nil {
		return err
	}

	flagSet.String("prefix", "", "Key prefix within the bucket to treat as the filesystem root.")
	if err := bind("prefix", "prefix"); err != nil {
		return err
	}

	flagSet.String("region", "", "AWS region of the endpoint.")
	if err := bind("region", "region"); err != nil {
		return err
	}

	flagSet.String("endpoint", "", "Custom S3-compatible endpoint URL; empty selects the AWS default resolver.")
	if err := bind("endpoint", "endpoint"); err != nil {
		return err
	}

	flagSet.String("storage-class", "", "Storage class applied to objects written by this mount.")
	if err := bind("storage-class", "storage-class"); err != nil {
		return err
	}

	flagSet.Int("file-mode", -1, "Permission bits for files, in octal; -1 selects the compiled-in default.")
	if err := bind("file-system.file-mode", "file-mode"); err != nil {
		return err
	}

	flagSet.Int("dir-mode", -1, "Permission bits for directories, in octal; -1 selects the compiled-in default.")
	if err := bind("file-system.dir-mode", "dir-mode"); err != nil {
		return err
	}

	flagSet.Int("uid", -1, "UID owner of all inodes; -1 uses the mounting process's UID.")
	if err := bind("file-system.uid", "uid"); err != nil {
		return err
	}

	flagSet.Int("gid", -1, "GID owner of all inodes; -1 uses the mounting process's GID.")
	if err := bind("file-system.gid", "gid"); err != nil {
		return err
	}

	flagSet.Duration("dir-cache-ttl", 0, "Directory listing and xattr cache max age.")
	if err := bind("cache.dir-cache-ttl", "dir-cache-ttl"); err != nil {
		return err
	}

	flagSet.Duration("file-cache-ttl", 0, "Negative-lookup cache max age; also the kernel attribute-cache expiry.")
	if err := bind("cache.file-cache-ttl", "file-cache-ttl"); err != nil {
		return err
	}

	flagSet.Bool("check-empty-files", false, "Re-probe zero-length files for directory-marker promotion on lookup.")
	if err := bind("cache.check-empty-files", "check-empty-files"); err != nil {
		return err
	}

	flagSet.Bool("force-head-on-lookup", false, "Re-probe zero-length files for directory-marker promotion on lookup (same effect as check-empty-files).")
	if err := bind("cache.force-head-on-lookup", "force-head-on-lookup"); err != nil {
		return err
	}

	flagSet.Int("connection-pool-size", 16, "Maximum number of concurrent in-flight store requests.")
	if err := bind("connection-pool-size", "connection-pool-size"); err != nil {
		return err
	}

	flagSet.Bool("foreground", false, "Run the mount in the foreground instead of daemonizing.")
	if err := bind("foreground", "foreground"); err != nil {
		return err
	}

	flagSet.String("log-level", string(InfoLogSeverity), "Logging severity: TRACE, DEBUG, INFO, WARNING, or ERROR.")
	if err := bind("logging.severity", "log-level"); err != nil {
		return err
	}

	flagSet.String("log-file", "", "Path to the log file; empty logs to stderr.")
	if err := bind("logging.file", "log-file"); err != nil {
		return err
	}

	flagSet.Bool("log-json", false, "Emit logs as JSON instead of slog's default text format.")
	return bind("logging.json", "log-json")
}

// Rationalize resolves the -1 mode sentinels to their compiled-in defaults,
// mirroring cfg/rationalize.go's role of turning raw flag/viper values into
// the values the rest of the program consumes.
func (c *Config) Rationalize() {
	if c.FileSystem.FileMode < 0 {
		c.FileSystem.FileMode = defaultFileMode
	}
	if c.FileSystem.DirMode < 0 {
		c.FileSystem.DirMode = defaultDirMode
	}
	if c.Cache.DirCacheTTL <= 0 {
		c.Cache.DirCacheTTL = time.Minute
	}
	if c.Cache.FileCacheTTL <= 0 {
		c.Cache.FileCacheTTL = time.Minute
	}
	if c.ConnectionPoolSize <= 0 {
		c.ConnectionPoolSize = 16
	}
	if c.Logging.Severity == "" {
		c.Logging.Severity = InfoLogSeverity
	}
}

// Validate rejects contradictory knobs, the way cfg/validate.go validates
// the teacher's config before a mount proceeds.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("cfg: bucket is required")
	}
	if _, ok := severityRanking[c.Logging.Severity]; !ok {
		return fmt.Errorf("cfg: invalid logging.severity %q", c.Logging.Severity)
	}
	if c.ConnectionPoolSize < 0 {
		return fmt.Errorf("cfg: connection-pool-size must be non-negative")
	}
	return nil
}
