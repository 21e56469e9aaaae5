/*
Copyright © 2018 the InMAP authors.
This file is part of rconvergence.

rconvergence is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

rconvergence is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with rconvergence.  If not, see <http://www.gnu.org/licenses/>.
*/

package convutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maxDownloadTime is the longest time spent retrying a failed HTTP download.
var maxDownloadTime = 2 * time.Minute

// maybeDownload checks if path is an existing local file. If not, and path
// is an http(s) URL or a blob location, the file is downloaded to a
// temporary directory and the path to the downloaded file is returned.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		return downloadHTTP(ctx, path, log)
	case IsBlob(path):
		return downloadBlob(ctx, path, log)
	}
	return path, nil
}

// downloadDest creates a file in a new temporary directory with the same
// base name as path.
func downloadDest(path string) (*os.File, error) {
	dir, err := ioutil.TempDir("", "rconvergence")
	if err != nil {
		return nil, fmt.Errorf("convutil: creating temporary download directory: %v", err)
	}
	w, err := os.Create(filepath.Join(dir, filepath.Base(path)))
	if err != nil {
		return nil, fmt.Errorf("convutil: creating file for download: %v", err)
	}
	return w, nil
}

// downloadHTTP downloads a file from the specified URL, retrying with an
// exponential backoff, and returns the path to the downloaded file.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return path, fmt.Errorf("convutil: parsing download URL: %v", err)
	}
	w, err := downloadDest(u.Path)
	if err != nil {
		return path, err
	}
	defer w.Close()

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxDownloadTime
	err = backoff.RetryNotify(
		func() error {
			if err := w.Truncate(0); err != nil {
				return err
			}
			if _, err := w.Seek(0, io.SeekStart); err != nil {
				return err
			}
			req, err := http.NewRequest(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req.WithContext(ctx))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("convutil: downloading %s: %s", path, resp.Status)
			}
			_, err = io.Copy(w, resp.Body)
			return err
		},
		backoff.WithContext(b, ctx),
		func(err error, d time.Duration) {
			log.WithError(err).Warnf("download failed; retrying in %v", d)
		},
	)
	if err != nil {
		return path, fmt.Errorf("convutil: downloading %s: %v", path, err)
	}
	log.WithField("url", path).WithField("file", w.Name()).Info("downloaded input")
	return w.Name(), nil
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local
// filesystem, "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("convutil: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Host)
	case "gs":
		return gsBucket(ctx, u.Host)
	case "s3":
		return s3Bucket(ctx, u.Host)
	default:
		return nil, fmt.Errorf("convutil: invalid storage provider %q", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// blobKey splits a blob location into its bucket and key.
func blobKey(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	bucketName, key, err := blobKey(path)
	if err != nil {
		return path, fmt.Errorf("convutil: parsing blob location: %v", err)
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return path, err
	}
	r, err := bucket.NewReader(ctx, key)
	if err != nil {
		return path, fmt.Errorf("convutil: opening %s: %v", path, err)
	}
	defer r.Close()
	w, err := downloadDest(key)
	if err != nil {
		return path, err
	}
	defer w.Close()
	if _, err = io.Copy(w, r); err != nil {
		return path, fmt.Errorf("convutil: downloading %s: %v", path, err)
	}
	log.WithField("blob", path).WithField("file", w.Name()).Info("downloaded input")
	return w.Name(), nil
}
