// Copyright 2026 The Cayley Authors. All rights reserved.
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

// Package s3 stores objects in an S3 compatible bucket.
//
// Files map to objects named after their path, below an optional key prefix.
// Directories are implied by the objects below them; CreateDir writes an
// empty marker object whose key ends with a slash.
package s3

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cayleygraph/rdfstore/clog"
	"github.com/cayleygraph/rdfstore/storage"
)

const Type = "s3"

const (
	metaVisibility = "Visibility"
	dirMimetype    = "application/x-directory"
)

func init() {
	storage.Register(Type, storage.Registration{
		Open: func(addr string, opts storage.Options) (storage.Backend, error) {
			cfg, err := ConfigFromOptions(addr, opts)
			if err != nil {
				return nil, err
			}
			return New(context.Background(), cfg)
		},
		Persistent: true,
	})
}

// Config describes the bucket to use.
type Config struct {
	Endpoint string
	Bucket   string
	// Prefix is prepended to all object keys.
	Prefix string
	// AccessKey and SecretKey are taken from AWS_* or MINIO_* environment
	// variables when empty.
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	PathStyle bool
}

// ConfigFromOptions builds a Config from backend options. The address is the
// bucket name, optionally followed by a key prefix: "bucket/some/prefix".
func ConfigFromOptions(addr string, opts storage.Options) (Config, error) {
	var (
		cfg Config
		err error
	)
	cfg.Bucket, cfg.Prefix, _ = strings.Cut(strings.Trim(addr, "/"), "/")
	for key, dst := range map[string]*string{
		"endpoint":   &cfg.Endpoint,
		"access_key": &cfg.AccessKey,
		"secret_key": &cfg.SecretKey,
		"region":     &cfg.Region,
	} {
		if *dst, err = opts.StringKey(key, ""); err != nil {
			return cfg, err
		}
	}
	if cfg.UseSSL, err = opts.BoolKey("use_ssl", true); err != nil {
		return cfg, err
	}
	if cfg.PathStyle, err = opts.BoolKey("path_style", false); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Store is a storage.Backend kept in an S3 bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ storage.Backend = (*Store)(nil)

// New connects to the bucket, creating it if it does not exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	if cfg.Endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
		})
	}
	opts := &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	client, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("s3: check bucket: %w", err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("s3: create bucket: %w", err)
		}
		clog.Infof("created bucket %q", cfg.Bucket)
	}
	clog.Infof("s3 storage at %s/%s", cfg.Endpoint, cfg.Bucket)
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// key returns the object key of a file.
func (s *Store) key(p string) string {
	p = storage.Clean(p)
	switch {
	case s.prefix == "":
		return p
	case p == "":
		return s.prefix
	}
	return s.prefix + "/" + p
}

// dirKey returns the key prefix shared by all objects in a directory. It is
// also the key of the directory marker.
func (s *Store) dirKey(p string) string {
	k := s.key(p)
	if k == "" {
		return ""
	}
	return k + "/"
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound {
		return true
	}
	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func convErr(err error) error {
	if isNotFound(err) {
		return storage.ErrNotFound
	}
	return err
}

func visibilityOf(info minio.ObjectInfo) storage.Visibility {
	for k, v := range info.UserMetadata {
		if strings.EqualFold(k, metaVisibility) && v == string(storage.Private) {
			return storage.Private
		}
	}
	return storage.Public
}

func visibility(v storage.Visibility) storage.Visibility {
	if v == "" {
		return storage.Public
	}
	return v
}

func fileMeta(p string, info minio.ObjectInfo) *storage.Metadata {
	return &storage.Metadata{
		Type:       storage.TypeFile,
		Path:       storage.Clean(p),
		Mimetype:   info.ContentType,
		Size:       info.Size,
		Timestamp:  info.LastModified,
		Visibility: visibilityOf(info),
	}
}

func (s *Store) stat(ctx context.Context, p string) (minio.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(p), minio.StatObjectOptions{})
	return info, convErr(err)
}

// isDir reports whether a marker or any object exists below p.
func (s *Store) isDir(ctx context.Context, p string) (bool, error) {
	if storage.Clean(p) == "" {
		return true, nil
	}
	// the listing goroutine stops when ctx is cancelled
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:  s.dirKey(p),
		MaxKeys: 1,
	}) {
		if obj.Err != nil {
			return false, obj.Err
		}
		return true, nil
	}
	return false, nil
}

// file stats a regular file, reporting ErrIsDir for directories.
func (s *Store) file(ctx context.Context, p string) (minio.ObjectInfo, error) {
	if storage.Clean(p) == "" {
		return minio.ObjectInfo{}, storage.ErrIsDir
	}
	info, err := s.stat(ctx, p)
	if !errors.Is(err, storage.ErrNotFound) {
		return info, err
	}
	if ok, derr := s.isDir(ctx, p); derr != nil {
		return info, derr
	} else if ok {
		return info, storage.ErrIsDir
	}
	return info, err
}

func (s *Store) put(ctx context.Context, p string, r io.Reader, size int64, cfg storage.Config, mustExist bool) (*storage.Metadata, error) {
	p = storage.Clean(p)
	info, err := s.file(ctx, p)
	exists := err == nil
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if mustExist {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	vis := cfg.Visibility
	if vis == "" && exists {
		vis = visibilityOf(info)
	}
	mt := cfg.Mimetype
	br := bufio.NewReaderSize(r, 512)
	if mt == "" {
		head, _ := br.Peek(512)
		mt = storage.DetectMimetype(p, head)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key(p), br, size, minio.PutObjectOptions{
		ContentType:  mt,
		UserMetadata: map[string]string{metaVisibility: string(visibility(vis))},
	})
	if err != nil {
		return nil, fmt.Errorf("s3: put %q: %w", p, err)
	}
	info, err = s.stat(ctx, p)
	if err != nil {
		return nil, err
	}
	return fileMeta(p, info), nil
}

func (s *Store) Write(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(ctx, p, bytes.NewReader(contents), int64(len(contents)), cfg, false)
}

func (s *Store) WriteStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(ctx, p, r, -1, cfg, false)
}

func (s *Store) Update(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(ctx, p, bytes.NewReader(contents), int64(len(contents)), cfg, true)
}

func (s *Store) UpdateStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(ctx, p, r, -1, cfg, true)
}

func (s *Store) Rename(ctx context.Context, p, newPath string) error {
	if err := s.Copy(ctx, p, newPath); err != nil {
		return err
	} else if s.key(p) == s.key(newPath) {
		return nil
	}
	return convErr(s.client.RemoveObject(ctx, s.bucket, s.key(p), minio.RemoveObjectOptions{}))
}

func (s *Store) Copy(ctx context.Context, p, newPath string) error {
	if _, err := s.file(ctx, p); err != nil {
		return err
	} else if s.key(p) == s.key(newPath) {
		// S3 refuses to copy an object onto itself without new metadata
		return nil
	}
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: s.key(newPath)},
		minio.CopySrcOptions{Bucket: s.bucket, Object: s.key(p)},
	)
	return convErr(err)
}

func (s *Store) Delete(ctx context.Context, p string) error {
	if _, err := s.file(ctx, p); err != nil {
		return err
	}
	return convErr(s.client.RemoveObject(ctx, s.bucket, s.key(p), minio.RemoveObjectOptions{}))
}

func (s *Store) DeleteDir(ctx context.Context, dir string) error {
	dir = storage.Clean(dir)
	ok, err := s.isDir(ctx, dir)
	if err != nil {
		return err
	} else if !ok {
		if _, err := s.stat(ctx, dir); err == nil {
			return storage.ErrNotDir
		}
		return storage.ErrNotFound
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	objs := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.dirKey(dir),
		Recursive: true,
	})
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objs, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil && !isNotFound(rerr.Err) {
			return fmt.Errorf("s3: delete %q: %w", rerr.ObjectName, rerr.Err)
		}
	}
	return nil
}

func (s *Store) putMarker(ctx context.Context, dir string, vis storage.Visibility) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.dirKey(dir), bytes.NewReader(nil), 0, minio.PutObjectOptions{
		ContentType:  dirMimetype,
		UserMetadata: map[string]string{metaVisibility: string(visibility(vis))},
	})
	return err
}

func (s *Store) CreateDir(ctx context.Context, dir string, cfg storage.Config) (*storage.Metadata, error) {
	dir = storage.Clean(dir)
	if dir == "" {
		return s.dirMeta(ctx, dir), nil
	}
	if _, err := s.stat(ctx, dir); err == nil {
		return nil, storage.ErrExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if err := s.putMarker(ctx, dir, cfg.Visibility); err != nil {
		return nil, fmt.Errorf("s3: create dir %q: %w", dir, err)
	}
	return s.dirMeta(ctx, dir), nil
}

func (s *Store) SetVisibility(ctx context.Context, p string, v storage.Visibility) (*storage.Metadata, error) {
	p = storage.Clean(p)
	info, err := s.file(ctx, p)
	switch {
	case errors.Is(err, storage.ErrIsDir):
		if err := s.putMarker(ctx, p, v); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		_, err = s.client.CopyObject(ctx,
			minio.CopyDestOptions{
				Bucket: s.bucket,
				Object: s.key(p),
				UserMetadata: map[string]string{
					metaVisibility: string(visibility(v)),
					"Content-Type": info.ContentType,
				},
				ReplaceMetadata: true,
			},
			minio.CopySrcOptions{Bucket: s.bucket, Object: s.key(p)},
		)
		if err != nil {
			return nil, convErr(err)
		}
	}
	return &storage.Metadata{Path: p, Visibility: visibility(v)}, nil
}

func (s *Store) Has(ctx context.Context, p string) (bool, error) {
	_, err := s.file(ctx, p)
	switch {
	case err == nil, errors.Is(err, storage.ErrIsDir):
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	}
	return false, err
}

func (s *Store) open(ctx context.Context, p string) (*storage.Metadata, *minio.Object, error) {
	info, err := s.file(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, convErr(err)
	}
	return fileMeta(p, info), obj, nil
}

func (s *Store) Read(ctx context.Context, p string) (*storage.Metadata, error) {
	m, obj, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	if m.Contents, err = io.ReadAll(obj); err != nil {
		return nil, convErr(err)
	}
	return m, nil
}

func (s *Store) ReadStream(ctx context.Context, p string) (*storage.Metadata, error) {
	m, obj, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	m.Stream = obj
	return m, nil
}

func (s *Store) ListContents(ctx context.Context, dir string, recursive bool) ([]storage.Metadata, error) {
	dir = storage.Clean(dir)
	prefix := s.dirKey(dir)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []storage.Metadata
	dirs := make(map[string]int)
	addDir := func(p string, info minio.ObjectInfo) {
		i, ok := dirs[p]
		if !ok {
			dirs[p] = len(out)
			out = append(out, storage.Metadata{Type: storage.TypeDir, Path: p, Visibility: storage.Public})
			i = len(out) - 1
		}
		if !info.LastModified.IsZero() {
			out[i].Timestamp = info.LastModified
		}
	}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		rel := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if rel == "" {
			continue
		}
		p := rel
		if dir != "" {
			p = dir + "/" + rel
		}
		for _, d := range storage.Parents(p) {
			if storage.InDir(dir, d, recursive) {
				addDir(d, minio.ObjectInfo{})
			}
		}
		if !storage.InDir(dir, p, recursive) {
			continue
		}
		if strings.HasSuffix(obj.Key, "/") {
			addDir(p, obj)
			continue
		}
		m := fileMeta(p, obj)
		if m.Mimetype == "" {
			m.Mimetype = storage.DetectMimetype(p, nil)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// dirMeta describes a directory, using its marker when there is one.
func (s *Store) dirMeta(ctx context.Context, dir string) *storage.Metadata {
	m := &storage.Metadata{Type: storage.TypeDir, Path: dir, Visibility: storage.Public}
	if dir == "" {
		return m
	}
	info, err := s.client.StatObject(ctx, s.bucket, s.dirKey(dir), minio.StatObjectOptions{})
	if err == nil {
		m.Timestamp = info.LastModified
		m.Visibility = visibilityOf(info)
	}
	return m
}

func (s *Store) GetMetadata(ctx context.Context, p string) (*storage.Metadata, error) {
	p = storage.Clean(p)
	info, err := s.file(ctx, p)
	switch {
	case errors.Is(err, storage.ErrIsDir):
		return s.dirMeta(ctx, p), nil
	case err != nil:
		return nil, err
	}
	return fileMeta(p, info), nil
}

func (s *Store) GetSize(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}

func (s *Store) GetMimetype(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}

func (s *Store) GetTimestamp(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}

func (s *Store) GetVisibility(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}
