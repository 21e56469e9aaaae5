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
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/convergence"
)

func testConfig(dir string) *viper.Viper {
	cfg := viper.New()
	cfg.Set("input", filepath.Join(dir, "dem.nc"))
	cfg.Set("variable", "elevation")
	cfg.Set("output", filepath.Join(dir, "convergence.nc"))
	cfg.Set("window", 5)
	cfg.Set("weights", "Inverse")
	cfg.Set("circular", true)
	cfg.Set("slope", false)
	cfg.Set("colors", true)
	return cfg
}

func TestNewRunConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "convutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	t.Run("valid", func(t *testing.T) {
		rc, err := NewRunConfig(testConfig(dir))
		if err != nil {
			t.Fatal(err)
		}
		want := convergence.Config{
			WindowSize: 5,
			Circular:   true,
			Weights:    convergence.WeightInverse,
			EWRes:      1,
			NSRes:      1,
		}
		if rc.Engine != want {
			t.Errorf("engine config %+v != %+v", rc.Engine, want)
		}
		if rc.LogFile != filepath.Join(dir, "convergence.log") {
			t.Errorf("log file %s", rc.LogFile)
		}
		if !rc.Colors || rc.Preview != "" {
			t.Errorf("colors %v, preview %q", rc.Colors, rc.Preview)
		}
	})
	t.Run("window from string", func(t *testing.T) {
		cfg := testConfig(dir)
		cfg.Set("window", "7")
		rc, err := NewRunConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if rc.Engine.WindowSize != 7 {
			t.Errorf("window %d", rc.Engine.WindowSize)
		}
	})
	for _, bad := range []struct {
		name, key string
		val       interface{}
		invalid   bool
	}{
		{name: "even window", key: "window", val: 4, invalid: true},
		{name: "small window", key: "window", val: 1, invalid: true},
		{name: "weights", key: "weights", val: "heavy", invalid: true},
		{name: "window type", key: "window", val: "three"},
		{name: "no input", key: "input", val: ""},
		{name: "no variable", key: "variable", val: ""},
		{name: "no output", key: "output", val: ""},
		{name: "output dir", key: "output", val: filepath.Join(dir, "missing", "convergence.nc")},
	} {
		t.Run(bad.name, func(t *testing.T) {
			cfg := testConfig(dir)
			cfg.Set(bad.key, bad.val)
			_, err := NewRunConfig(cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if bad.invalid != errors.Is(err, convergence.ErrInvalidConfig) {
				t.Errorf("errors.Is(%v, ErrInvalidConfig) = %v", err, !bad.invalid)
			}
		})
	}
}

func TestCheckLogFile(t *testing.T) {
	if f := checkLogFile("", "out/convergence.nc"); f != "out/convergence.log" {
		t.Errorf("default log file %s", f)
	}
	if f := checkLogFile("run.log", "out/convergence.nc"); f != "run.log" {
		t.Errorf("log file %s", f)
	}
	if f := sidecar("s3://bucket/convergence.nc", ".colors"); f != "s3://bucket/convergence.colors" {
		t.Errorf("sidecar %s", f)
	}
}

func TestCheckProjection(t *testing.T) {
	sr, err := checkProjection("")
	if err != nil || sr != nil {
		t.Errorf("empty projection gave %v, %v", sr, err)
	}
	sr, err = checkProjection(DemoProj4)
	if err != nil {
		t.Fatal(err)
	}
	if sr.Name != "lcc" {
		t.Errorf("projection name %q", sr.Name)
	}
}
