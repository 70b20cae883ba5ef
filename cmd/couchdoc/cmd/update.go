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

func updateCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [command]",
		Short: "Update a resource",
	}

	cmd.AddCommand(updateDocCmd(r))

	return cmd
}

type updateDoc struct {
	*root
}

func updateDocCmd(r *root) *cobra.Command {
	c := &updateDoc{
		root: r,
	}
	cmd := &cobra.Command{
		Use:     "document [database] [document]",
		Aliases: []string{"doc"},
		Short:   "Update an existing document",
		Long: `Update an existing document. The document data must carry the current
_rev. The document ID is read from the _id member, unless given as an argument.`,
		Args: cobra.MaximumNArgs(2), //nolint:gomnd
		RunE: c.RunE,
	}
	c.input.ConfigFlags(cmd.Flags())
	return cmd
}

func (c *updateDoc) RunE(cmd *cobra.Command, args []string) error {
	doc, err := c.input.Document()
	if err != nil {
		return err
	}
	if len(args) == 2 { //nolint:gomnd
		doc.SetDocID(args[1])
		args = args[:1]
	}
	db, _, err := c.db(args, 1)
	if err != nil {
		return err
	}
	c.log.Debugf("[update] Will update document: %s", db.DocumentURL(doc.DocID()))
	return c.retry(cmd.Context(), func() error {
		if err := db.Update(cmd.Context(), doc); err != nil {
			return err
		}
		return c.fmt.UpdateResult(doc.DocID(), doc.DocRev())
	})
}
