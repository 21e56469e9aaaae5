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
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// WebAddress is where StartWebServer listens.
const WebAddress = "localhost:7171"

// configHandler reads the configuration file given in the "config" form
// value and responds with the resulting value of every option as JSON.
func configHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := Root.PersistentFlags().Set("config", r.Form.Get("config")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := setConfig(); err != nil {
		// The front-end marks the config field red on 204.
		http.Error(w, err.Error(), http.StatusNoContent)
		return
	}
	config := make(map[string]interface{})
	for _, option := range options {
		config[option.name] = Cfg.Get(option.name)
	}
	if err := json.NewEncoder(w).Encode(config); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StartWebServer starts a browser interface for the commands on
// WebAddress and opens it. It does not return.
func StartWebServer(log logrus.FieldLogger) {
	if err := setConfig(); err != nil {
		log.WithError(err).Warn("ignoring configuration file")
	}

	http.HandleFunc("/setConfig", configHandler)

	log.Info("Loading front-end...")

	for _, cmd := range []*cobra.Command{Root, versionCmd, runCmd, demoCmd} {
		cmd.SilenceUsage = true // We don't want the usage messages in the GUI.
	}

	output := template.Must(template.New("").Parse(webTemplate))
	server := gobra.Server{Root: Root, ServerAddress: WebAddress, AllowCORS: false, HTML: output}
	log.Info("Server starting... ")
	if err := open.Run("http://" + WebAddress); err != nil {
		log.Infof("If not opened automatically, please visit http://%s", WebAddress)
	}
	server.Start()
}

const webTemplate = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>rconvergence</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
		.red-border{ border: 1px solid #c35; }
		.green-border{ border: 1px solid #3c5; }
		.blue-border{ border: 1px solid #35c; }
	</style>
</head>
<body>
<div class="container">
	<h1>rconvergence</h1>
	<p>Choose an elevation raster and window settings below, then run.</p>
	<p>
		Color key: black=default;
		<font color="red">red</font>=error;
		<font color="green">green</font>=value from config file;
		<font color="blue">blue</font>=user entered
	</p>
	<div>
		{{.}}
	</div>
</div>

<script>
let allFlags = [...document.querySelectorAll('[data-name]')];
allFlags.forEach(x => {
	let inputField = x.children[0];
	inputField.addEventListener("input", e => {
		inputField.classList.remove("green-border");
		inputField.classList.add("blue-border");
	})
})

let configInput = allFlags.filter(x => x.dataset.name == "config")[0].children[0];
configInput.addEventListener("input", e => {
	fetch("http://` + WebAddress + `/setConfig?config="+configInput.value)
		.then(res => {
			if (res.status == 204) {
				configInput.classList.remove("blue-border", "green-border");
				configInput.classList.add("red-border");
				return;
			}
			if (res.status !== 200) {
				res.text().then(t => console.log("Error fetching /setConfig: ", t));
				return;
			}
			res.json().then(data => {
				configInput.classList.remove("red-border");
				for (let key in data)
					for (let f of allFlags)
						if (f.dataset.name == key) {
							let input = f.children[0];
							let newValue = JSON.stringify(data[key]).replace(/^"+|"+$/g, '');
							if (input.value != newValue) {
								input.value = newValue;
								input.classList.remove("blue-border");
								input.classList.add("green-border");
							}
						}
			})
		})
		.catch(err => console.log("Error fetching /setConfig", err))
})
</script>
</body>
</html>`
