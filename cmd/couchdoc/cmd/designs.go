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
	"github.com/spf13/cobra"

	"github.com/go-kivik/couchdoc/cmd/couchdoc/config"
	"github.com/go-kivik/couchdoc/cmd/couchdoc/errors"
	"github.com/go-kivik/couchdoc/cmd/couchdoc/output"
)

func designsCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "designs [command]",
		Aliases: []string{"design"},
		Short:   "Manage design documents",
	}

	cmd.AddCommand(designsSyncCmd(r))

	return cmd
}

type designsSync struct {
	file string
	*root
}

func designsSyncCmd(r *root) *cobra.Command {
	c := &designsSync{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "sync [database]",
		Short: "Create or update design documents from a YAML declaration",
		Long: `Upsert every design document declared in --file. Documents already on the
server are replaced with the declared views, keeping their revision history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.RunE,
	}
	cmd.Flags().StringVar(&c.file, "file", "", "YAML file declaring the design documents")
	return cmd
}

type syncResult struct {
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

func (c *designsSync) RunE(cmd *cobra.Command, args []string) error {
	if c.file == "" {
		return errors.Code(errors.ErrUsage, "--file required")
	}
	reg, err := config.ReadDesigns(c.file)
	if err != nil {
		return err
	}
	db, _, err := c.db(args, 1)
	if err != nil {
		return err
	}
	c.log.Debugf("[designs] Will sync %v to: %s", reg.Names(), db.Name())
	return c.retry(cmd.Context(), func() error {
		synced, err := db.SyncDesigns(cmd.Context(), reg)
		if err != nil {
			return err
		}
		results := make([]syncResult, 0, len(synced))
		for _, dd := range synced {
			results = append(results, syncResult{ID: dd.DocID(), Rev: dd.DocRev()})
		}
		return c.fmt.Output(output.JSONReader(results))
	})
}
