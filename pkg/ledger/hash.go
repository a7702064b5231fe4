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

package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// HashFile returns the hex SHA-256 of a file's current content, used both
// to record a file's pre/post-apply state and to detect edits made since a
// run was applied before allowing revert.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var runIDCounter uint64

// GenerateRunID returns a 7-hex-character run identifier. The original
// tool derives this from a blake3 hash of a timestamp; weld has no other
// use for blake3 anywhere else in its dependency graph, so this hashes a
// timestamp plus a per-process counter (guarding against two runs firing
// within the same nanosecond) with crypto/sha256 instead, already pulled in
// for file hashing.
func GenerateRunID() string {
	n := atomic.AddUint64(&runIDCounter, 1)
	seed := fmt.Sprintf("%d:%d", time.Now().UnixNano(), n)
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:7]
}
