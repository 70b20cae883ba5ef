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

func createCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [command]",
		Short: "Create a resource",
	}

	cmd.AddCommand(createDBCmd(r))
	cmd.AddCommand(createDocCmd(r))

	return cmd
}

type createDB struct {
	*root
}

func createDBCmd(r *root) *cobra.Command {
	c := &createDB{
		root: r,
	}
	return &cobra.Command{
		Use:     "database [database]",
		Aliases: []string{"db"},
		Short:   "Create a database",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.RunE,
	}
}

func (c *createDB) RunE(cmd *cobra.Command, args []string) error {
	db, _, err := c.db(args, 1)
	if err != nil {
		return err
	}
	c.log.Debugf("[create] Will create database: %s", db.Name())
	return c.retry(cmd.Context(), func() error {
		if err := db.Client().CreateDB(cmd.Context(), db.Name()); err != nil {
			return err
		}
		return c.fmt.OK()
	})
}

type createDoc struct {
	id string
	*root
}

func createDocCmd(r *root) *cobra.Command {
	c := &createDoc{
		root: r,
	}
	cmd := &cobra.Command{
		Use:     "document [database]",
		Aliases: []string{"doc"},
		Short:   "Create a new document",
		Long: `Create a new document. The document must not carry a revision. Without
an id, from --id or the _id member, the server assigns one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.RunE,
	}
	cmd.Flags().StringVar(&c.id, "id", "", "Document ID. Overrides any _id in the document data.")
	c.input.ConfigFlags(cmd.Flags())
	return cmd
}

func (c *createDoc) RunE(cmd *cobra.Command, args []string) error {
	doc, err := c.input.Document()
	if err != nil {
		return err
	}
	if c.id != "" {
		doc.SetDocID(c.id)
	}
	db, _, err := c.db(args, 1)
	if err != nil {
		return err
	}
	c.log.Debugf("[create] Will create document in: %s", db.Name())
	create := func() error {
		return db.Create(cmd.Context(), doc)
	}
	if doc.DocID() == "" {
		// A lost response to a POST may still have stored the document.
		c.log.Debug("[create] No document ID, will not retry")
		err = create()
	} else {
		err = c.retry(cmd.Context(), create)
	}
	if err != nil {
		return err
	}
	return c.fmt.UpdateResult(doc.DocID(), doc.DocRev())
}
