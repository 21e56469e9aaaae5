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
	"os"
	"path/filepath"

	"github.com/google/go-cloud/blob"
)

// uploader stages outputs that are destined for blob storage in a
// temporary directory and uploads them once they are complete.
type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will be uploaded to blob storage when
// uploadOutput is run.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil || !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir("", "rconvergence")
		if u.err != nil {
			return path
		}
	}
	local := filepath.Join(u.dir, filepath.Base(path))
	u.files = append(u.files, [2]string{local, path})
	return local
}

// uploadOutput copies every staged file to its blob location. Files that
// were never created are skipped.
func (u *uploader) uploadOutput(ctx context.Context) error {
	if u.err != nil {
		return fmt.Errorf("convutil: preparing upload: %v", u.err)
	}
	for _, files := range u.files {
		if err := upload(ctx, files[0], files[1]); err != nil {
			return err
		}
	}
	return nil
}

func upload(ctx context.Context, local, dst string) error {
	r, err := os.Open(local)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("convutil: opening file '%s' for upload: %v", local, err)
	}
	defer r.Close()
	bucketName, key, err := blobKey(dst)
	if err != nil {
		return fmt.Errorf("convutil: parsing url '%s' for upload: %v", dst, err)
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("convutil: opening bucket to upload file '%s': %v", dst, err)
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("convutil: opening writer to upload file '%s': %v", dst, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("convutil: uploading file '%s' to '%s': %v", local, dst, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("convutil: uploading file '%s' to '%s': %v", local, dst, err)
	}
	return nil
}
