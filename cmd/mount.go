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

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/jacobsa/fuse"

	"github.com/yarffs/s3tree/cfg"
	"github.com/yarffs/s3tree/clock"
	"github.com/yarffs/s3tree/fsadapter"
	"github.com/yarffs/s3tree/logger"
	"github.com/yarffs/s3tree/pipeline"
	"github.com/yarffs/s3tree/store"
	"github.com/yarffs/s3tree/tree"
)

// mount builds the S3 session, the directory-tree core, and the kernel
// adapter, then blocks serving the mount until it is unmounted.
func mount(ctx context.Context, mountPoint string, newConfig *cfg.Config) error {
	log := logger.New(logger.Config{
		// cfg.LogSeverity is upper-cased ("TRACE", "INFO", ...) while
		// logger.Severity matches lower-case names; without this the
		// cast would silently fall through to logger's INFO default for
		// every configured level.
		Severity:   logger.Severity(strings.ToLower(string(newConfig.Logging.Severity))),
		FilePath:   newConfig.Logging.FilePath,
		JSON:       newConfig.Logging.JSON,
		MaxSizeMB:  newConfig.Logging.MaxSizeMB,
		MaxBackups: newConfig.Logging.MaxBackups,
		MaxAgeDays: newConfig.Logging.MaxAgeDays,
	})

	awsConfig := aws.NewConfig().WithMaxRetries(3)
	if newConfig.Region != "" {
		awsConfig = awsConfig.WithRegion(newConfig.Region)
	}
	if newConfig.Endpoint != "" {
		awsConfig = awsConfig.WithEndpoint(newConfig.Endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsConfig,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return fmt.Errorf("session.NewSessionWithOptions: %w", err)
	}

	client := store.New(sess, newConfig.Bucket, newConfig.Prefix, newConfig.StorageClass)

	treeCfg := tree.Config{
		FileMode:                  os.FileMode(newConfig.FileSystem.FileMode),
		DirMode:                   os.FileMode(newConfig.FileSystem.DirMode),
		DirCacheMaxAge:            newConfig.Cache.DirCacheTTL,
		FileCacheMaxAge:           newConfig.Cache.FileCacheTTL,
		CheckEmptyFiles:           newConfig.Cache.CheckEmptyFiles,
		ForceHeadRequestsOnLookup: newConfig.Cache.ForceHeadOnLookup,
	}

	pool := pipeline.NewPool(newConfig.ConnectionPoolSize)
	cache := store.NewBlockCache()
	t := tree.New(treeCfg, clock.RealClock{}, client, cache, pool)

	uid, gid := resolveOwner(newConfig)
	server := fsadapter.New(t, fsadapter.Config{
		Uid:              uid,
		Gid:              gid,
		AttributesExpiry: newConfig.Cache.FileCacheTTL,
	}, log)

	log.Info("mounting", "bucket", newConfig.Bucket, "mount_point", mountPoint)

	mountCfg := &fuse.MountConfig{
		FSName:     "s3tree",
		Subtype:    "s3tree",
		VolumeName: newConfig.Bucket,
	}

	mfs, err := fuse.Mount(mountPoint, server, mountCfg)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	return mfs.Join(ctx)
}

// resolveOwner picks the UID/GID every inode is reported as owned by,
// falling back to the mounting process's own identity when the config
// leaves either at its -1 sentinel.
func resolveOwner(newConfig *cfg.Config) (uid, gid uint32) {
	uid, gid = uint32(os.Getuid()), uint32(os.Getgid())
	if newConfig.FileSystem.Uid >= 0 {
		uid = uint32(newConfig.FileSystem.Uid)
	}
	if newConfig.FileSystem.Gid >= 0 {
		gid = uint32(newConfig.FileSystem.Gid)
	}
	return uid, gid
}
