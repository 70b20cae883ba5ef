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

package couchdoc

import (
	"bytes"
	"encoding/json"
)

// ServerVersion is the server's welcome message.
type ServerVersion struct {
	CouchDB string `json:"couchdb"`
	Version string `json:"version"`
	Vendor  Vendor `json:"vendor"`
}

// Vendor identifies the server's distributor.
type Vendor struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// DocumentResult is the envelope returned by document writes.
type DocumentResult struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// Sequence is an update sequence. CouchDB 1.x reports sequences as numbers,
// later versions as opaque strings; both are held as a string.
type Sequence string

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (s *Sequence) UnmarshalJSON(p []byte) error {
	if bytes.HasPrefix(p, []byte(`"`)) {
		var str string
		if err := json.Unmarshal(p, &str); err != nil {
			return err
		}
		*s = Sequence(str)
		return nil
	}
	if bytes.Equal(p, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(p, &n); err != nil {
		return err
	}
	*s = Sequence(n)
	return nil
}

// Sizes reports database sizes in bytes.
type Sizes struct {
	File     int64 `json:"file"`
	External int64 `json:"external"`
	Active   int64 `json:"active"`
}

// DBInfo is the metadata returned for a database.
type DBInfo struct {
	Name               string   `json:"db_name"`
	DocCount           int64    `json:"doc_count"`
	DeletedCount       int64    `json:"doc_del_count"`
	UpdateSeq          Sequence `json:"update_seq"`
	PurgeSeq           Sequence `json:"purge_seq"`
	CompactRunning     bool     `json:"compact_running"`
	DiskSize           int64    `json:"disk_size,omitempty"`
	DataSize           int64    `json:"data_size,omitempty"`
	Sizes              Sizes    `json:"sizes"`
	DiskFormatVersion  int      `json:"disk_format_version"`
	CommittedUpdateSeq Sequence `json:"committed_update_seq,omitempty"`
}
