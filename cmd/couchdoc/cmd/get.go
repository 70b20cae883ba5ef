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
	"bytes"

	"github.com/spf13/cobra"

	"github.com/go-kivik/couchdoc/cmd/couchdoc/output"
)

func getCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [command]",
		Short: "Get a resource",
		Long:  `Fetch a database, document or view`,
	}

	cmd.AddCommand(getDBCmd(r))
	cmd.AddCommand(getDocCmd(r))
	cmd.AddCommand(getViewCmd(r))

	return cmd
}

type getDB struct {
	*root
}

func getDBCmd(r *root) *cobra.Command {
	c := &getDB{
		root: r,
	}
	return &cobra.Command{
		Use:     "database [database]",
		Aliases: []string{"db"},
		Short:   "Get database metadata",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.RunE,
	}
}

func (c *getDB) RunE(cmd *cobra.Command, args []string) error {
	db, _, err := c.db(args, 1)
	if err != nil {
		return err
	}
	c.log.Debugf("[get] Will fetch database: %s", db.Name())
	return c.retry(cmd.Context(), func() error {
		info, err := db.Info(cmd.Context())
		if err != nil {
			return err
		}
		return c.fmt.Output(output.JSONReader(info))
	})
}

type getDoc struct {
	*root
}

func getDocCmd(r *root) *cobra.Command {
	c := &getDoc{
		root: r,
	}
	return &cobra.Command{
		Use:     "document [database] [document]",
		Aliases: []string{"doc"},
		Short:   "Get a document",
		Long:    `Fetch a document with the HTTP GET verb`,
		Args:    cobra.RangeArgs(1, 2), //nolint:gomnd
		RunE:    c.RunE,
	}
}

func (c *getDoc) RunE(cmd *cobra.Command, args []string) error {
	db, args, err := c.db(args, 2) //nolint:gomnd
	if err != nil {
		return err
	}
	docID := args[0]
	c.log.Debugf("[get] Will fetch document: %s", db.DocumentURL(docID))
	return c.retry(cmd.Context(), func() error {
		doc, err := db.GetRaw(cmd.Context(), docID)
		if err != nil {
			return err
		}
		return c.fmt.Output(bytes.NewReader(doc))
	})
}

type getView struct {
	includeDocs bool
	*root
}

func getViewCmd(r *root) *cobra.Command {
	c := &getView{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "view [database] [design] [view]",
		Short: "Query a view",
		Long:  `Query a view of a design document, with default parameters`,
		Args:  cobra.RangeArgs(2, 3), //nolint:gomnd
		RunE:  c.RunE,
	}
	cmd.Flags().BoolVar(&c.includeDocs, "include-docs", false, "Include the full document in each row")
	return cmd
}

func (c *getView) RunE(cmd *cobra.Command, args []string) error {
	db, args, err := c.db(args, 3) //nolint:gomnd
	if err != nil {
		return err
	}
	ddoc, view := args[0], args[1]
	c.log.Debugf("[get] Will query view: %s", db.ViewURL(ddoc, view))
	return c.retry(cmd.Context(), func() error {
		result, err := db.ViewRaw(cmd.Context(), ddoc, view, c.includeDocs)
		if err != nil {
			return err
		}
		return c.fmt.Output(bytes.NewReader(result))
	})
}
