// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/pkg/engine"
)

// LoadSpec reads a declarative batch spec file (spec.md §4.9/§6): JSON or
// YAML, auto-detected by extension with a tolerant fallback that tries
// the other parser if the expected one fails (spec.md §6's "the reader
// auto-detects by file extension, falling back to tolerant re-parsing").
func LoadSpec(path string) (*engine.BatchSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wErrors.NewConfigError(
			"Cannot read batch spec",
			fmt.Sprintf("Failed to read %s", path),
			"Check the path passed to 'weld batch'",
			err,
		)
	}

	ext := strings.ToLower(filepath.Ext(path))
	primary, fallback := unmarshalYAML, unmarshalJSON
	if ext == ".json" {
		primary, fallback = unmarshalJSON, unmarshalYAML
	}

	spec, err := primary(data)
	if err != nil {
		spec, err = fallback(data)
		if err != nil {
			return nil, wErrors.NewConfigError(
				"Invalid batch spec",
				fmt.Sprintf("%s parses as neither JSON nor YAML: %v", path, err),
				"Check the file for syntax errors against the documented batch spec schema",
				err,
			)
		}
	}

	for i := range spec.Operations {
		if err := spec.Operations[i].Normalize(); err != nil {
			return nil, wErrors.NewConfigError(
				"Invalid operation in batch spec",
				fmt.Sprintf("operation %d: %v", i, err),
				"Check the \"position\", \"edit_mode\", \"doc_style\" and \"action\" fields of each operation",
				err,
			)
		}
	}
	return spec, nil
}

func unmarshalJSON(data []byte) (*engine.BatchSpec, error) {
	var spec engine.BatchSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func unmarshalYAML(data []byte) (*engine.BatchSpec, error) {
	var spec engine.BatchSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}
