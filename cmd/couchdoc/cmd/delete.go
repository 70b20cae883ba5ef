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
)

func deleteCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete [command]",
		Aliases: []string{"del"},
		Short:   "Delete a resource",
	}

	cmd.AddCommand(deleteDBCmd(r))

	return cmd
}

type deleteDB struct {
	ifExists bool
	*root
}

func deleteDBCmd(r *root) *cobra.Command {
	c := &deleteDB{
		root: r,
	}
	cmd := &cobra.Command{
		Use:     "database [database]",
		Aliases: []string{"db"},
		Short:   "Delete a database",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.RunE,
	}
	cmd.Flags().BoolVar(&c.ifExists, "if-exists", false, "Succeed if the database does not exist")
	return cmd
}

func (c *deleteDB) RunE(cmd *cobra.Command, args []string) error {
	db, _, err := c.db(args, 1)
	if err != nil {
		return err
	}
	c.log.Debugf("[delete] Will delete database: %s", db.Name())
	return c.retry(cmd.Context(), func() error {
		var err error
		if c.ifExists {
			err = db.Client().EnsureDBDestroyed(cmd.Context(), db.Name())
		} else {
			err = db.Client().DestroyDB(cmd.Context(), db.Name())
		}
		if err != nil {
			return err
		}
		return c.fmt.OK()
	})
}
