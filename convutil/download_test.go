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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestMaybeDownloadLocal(t *testing.T) {
	log, _ := test.NewNullLogger()
	if k, err := maybeDownload(context.Background(), "/dev/null", log); err != nil || k != "/dev/null" {
		t.Errorf("expected /dev/null, got %s (%v)", k, err)
	}
}

func TestMaybeDownloadLocal2(t *testing.T) {
	log, _ := test.NewNullLogger()
	if k, err := maybeDownload(context.Background(), "/blah/test/", log); err != nil || k != "/blah/test/" {
		t.Errorf("expected /blah/test/, got %s (%v)", k, err)
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	dir, err := ioutil.TempDir("", "convutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	if err := ioutil.WriteFile(filepath.Join(dir, "dem.nc"), []byte("elevations"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	log, hook := test.NewNullLogger()
	k, err := maybeDownload(context.Background(), srv.URL+"/dem.nc", log)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(k, "dem.nc") || k == srv.URL+"/dem.nc" {
		t.Errorf("expected tempDir/dem.nc, got %s", k)
	}
	b, err := ioutil.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "elevations" {
		t.Errorf("downloaded %q", b)
	}
	if e := hook.LastEntry(); e == nil || e.Message != "downloaded input" {
		t.Errorf("download was not logged: %+v", e)
	}
}

func TestMaybeDownloadRemoteFail(t *testing.T) {
	old := maxDownloadTime
	maxDownloadTime = 100 * time.Millisecond
	defer func() { maxDownloadTime = old }()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	log, hook := test.NewNullLogger()
	if _, err := maybeDownload(context.Background(), srv.URL+"/missing.nc", log); err == nil {
		t.Error("expected an error")
	}
	if len(hook.Entries) == 0 {
		t.Error("retries were not logged")
	}
}

// blobDir creates a directory in the working directory that can be used
// as a file:// bucket.
func blobDir(t *testing.T) string {
	dir, err := ioutil.TempDir(".", "blob")
	if err != nil {
		t.Fatal(err)
	}
	return filepath.Base(dir)
}

func TestBlob(t *testing.T) {
	dir := blobDir(t)
	defer os.RemoveAll(dir)
	ctx := context.Background()
	loc := "file://" + dir + "/convergence.nc"

	if !IsBlob(loc) {
		t.Fatalf("%s should be a blob", loc)
	}
	if IsBlob(filepath.Join(dir, "convergence.nc")) {
		t.Error("local files are not blobs")
	}

	up := new(uploader)
	local := up.maybeUpload(loc)
	if local == loc {
		t.Fatal("blob output should be staged locally")
	}
	if k := up.maybeUpload("local.nc"); k != "local.nc" {
		t.Errorf("local output should not be staged, got %s", k)
	}
	if err := ioutil.WriteFile(local, []byte("convergence"), 0644); err != nil {
		t.Fatal(err)
	}
	// A staged file that was never written is skipped.
	up.maybeUpload("file://" + dir + "/preview.png")
	if err := up.uploadOutput(ctx); err != nil {
		t.Fatal(err)
	}

	log, _ := test.NewNullLogger()
	k, err := maybeDownload(ctx, loc, log)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "convergence" {
		t.Errorf("round trip through the bucket gave %q", b)
	}
	if _, err := maybeDownload(ctx, "file://"+dir+"/preview.png", log); err == nil {
		t.Error("expected an error for a missing blob")
	}
}

func TestOpenBucketInvalid(t *testing.T) {
	if _, err := OpenBucket(context.Background(), "ftp://bucket"); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}
