// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/go-kivik/couchdoc"
	"github.com/go-kivik/couchdoc/cmd/couchdoc/output"
	v "github.com/go-kivik/couchdoc/cmd/couchdoc/version"
)

type version struct {
	server bool
	*root
}

func versionCmd(r *root) *cobra.Command {
	c := &version{
		root: r,
	}
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"ver"},
		Short:   "Print client and server version information",
		Long:    "Print the client version, and with --server, the version of the server in the current context",
		Args:    cobra.NoArgs,
		RunE:    c.RunE,
	}
	cmd.Flags().BoolVar(&c.server, "server", false, "Also query the server version")
	return cmd
}

func (c *version) RunE(cmd *cobra.Command, _ []string) error {
	data := struct {
		Version   string                  `json:"version"`
		GoVersion string                  `json:"goVersion"`
		GOARCH    string                  `json:"GOARCH"`
		GOOS      string                  `json:"GOOS"`
		Server    *couchdoc.ServerVersion `json:"server,omitempty"`
	}{
		Version:   v.Version,
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
	}
	if !c.server {
		return c.fmt.Output(output.JSONReader(data))
	}
	client, err := c.client()
	if err != nil {
		return err
	}
	return c.retry(cmd.Context(), func() error {
		ver, err := client.Version(cmd.Context())
		if err != nil {
			return err
		}
		data.Server = ver
		return c.fmt.Output(output.JSONReader(data))
	})
}
