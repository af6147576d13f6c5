// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/poiesic/semkey/core"
)

// MarshalKey serializes a RecordKey to bytes.
func MarshalKey(key core.RecordKey) []byte {
	buf := make([]byte, core.KeyMUS.Size(key))
	core.KeyMUS.Marshal(key, buf)
	return buf
}

// UnmarshalKey deserializes a RecordKey from bytes.
func UnmarshalKey(data []byte) (core.RecordKey, error) {
	key, _, err := core.KeyMUS.Unmarshal(data)
	if err != nil {
		return core.RecordKey{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return key, nil
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, core.IndexEntryMUS.Size(*entry))
	core.IndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*core.IndexEntry, error) {
	entry, _, err := core.IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
